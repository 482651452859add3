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

package core

import (
	"fmt"
	"slices"
)

// FilterField names a course attribute that can be constrained.
type FilterField string

const (
	FilterConcentration FilterField = "concentration"
	FilterGenEds        FilterField = "gen_eds"
	FilterTerm          FilterField = "term"
	FilterClassTimes    FilterField = "class_times"
	FilterDifficulty    FilterField = "difficulty"
	FilterProfessor     FilterField = "professor"
)

// FilterFields lists every supported field in evaluation order.
var FilterFields = []FilterField{
	FilterConcentration,
	FilterGenEds,
	FilterTerm,
	FilterClassTimes,
	FilterDifficulty,
	FilterProfessor,
}

// Filters maps a field to the values it accepts. A field that is missing or
// has no values imposes no constraint.
type Filters map[FilterField][]string

// IsEmpty reports whether the filters constrain nothing.
func (f Filters) IsEmpty() bool {
	for _, values := range f {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Validate rejects field names outside FilterFields.
func (f Filters) Validate() error {
	for field := range f {
		if !slices.Contains(FilterFields, field) {
			return fmt.Errorf("%w: %q", ErrUnknownFilter, field)
		}
	}
	return nil
}

// With returns a copy of f with field set to values.
func (f Filters) With(field FilterField, values ...string) Filters {
	out := make(Filters, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[field] = values
	return out
}
