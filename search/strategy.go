// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import "fmt"

// Strategy identifies how a query was answered.
type Strategy int

const (
	// StrategyAuto lets the planner choose.
	StrategyAuto Strategy = iota
	// StrategyNone means no index was consulted: the catalog was empty or
	// no course passed the filters.
	StrategyNone
	// StrategyFullIndex searches the whole index without filtering.
	StrategyFullIndex
	// StrategySubIndex builds an exact index over the filtered rows.
	StrategySubIndex
	// StrategyOverFetch searches the whole index for extra hits and drops
	// the ones that fail the filters.
	StrategyOverFetch
)

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyNone:
		return "none"
	case StrategyFullIndex:
		return "full_index"
	case StrategySubIndex:
		return "sub_index"
	case StrategyOverFetch:
		return "over_fetch"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy parses a plan name a caller may force: auto, sub_index or
// over_fetch.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "auto":
		return StrategyAuto, nil
	case "sub_index":
		return StrategySubIndex, nil
	case "over_fetch":
		return StrategyOverFetch, nil
	default:
		return StrategyAuto, fmt.Errorf("unknown strategy %q: must be one of auto, sub_index, over_fetch", name)
	}
}

// Planner defaults.
const (
	DefaultSelectivity     = 0.8
	DefaultOverFetchFactor = 3
	DefaultFilterCacheSize = 100
)

// ChooseStrategy picks the plan for a filtered query. A sub-index is used
// only when the filtered set is below selectivity of the catalog and every
// catalog course has an embedding row.
func ChooseStrategy(filtered, total int, complete bool, selectivity float64) Strategy {
	if complete && float64(filtered) < selectivity*float64(total) {
		return StrategySubIndex
	}
	return StrategyOverFetch
}
