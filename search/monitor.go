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

import (
	"github.com/poiesic/coursefind/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
// Hooks run on the querying goroutine and must be safe for concurrent use.
type SearchMonitor interface {
	Start(query string, filters core.Filters)
	AfterFilter(matched, catalog int)
	StrategyChosen(strategy Strategy)
	AfterIndexSearch(candidates int)
	Finish(result *Result)
	Failed(err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Filters) {}
func (n *noopMonitor) AfterFilter(_, _ int)           {}
func (n *noopMonitor) StrategyChosen(_ Strategy)      {}
func (n *noopMonitor) AfterIndexSearch(_ int)         {}
func (n *noopMonitor) Finish(_ *Result)               {}
func (n *noopMonitor) Failed(_ error)                 {}
