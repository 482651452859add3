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

// Package filter narrows a course catalog by structured metadata.
//
// Matches is the per-course predicate. Engine applies it over a catalog and
// memoizes results in a FIFO cache keyed by the exact course set and filters.
package filter

import (
	"slices"
	"strings"

	"github.com/poiesic/coursefind/core"
)

// Matches reports whether course satisfies every constraint in filters.
//
// A field constraint is skipped when the filter has no values for it or the
// course has no value for it. Set fields (concentration, gen_eds,
// class_times) pass on any shared value. Scalar fields (term, difficulty)
// pass when the course value is listed. Professor passes when any filter name
// is a case-insensitive substring of the course's professor.
func Matches(course *core.Course, filters core.Filters) bool {
	for field, values := range filters {
		if len(values) == 0 {
			continue
		}
		switch field {
		case core.FilterConcentration:
			if !intersects(course.Concentrations, values) {
				return false
			}
		case core.FilterGenEds:
			if !intersects(course.GenEds, values) {
				return false
			}
		case core.FilterClassTimes:
			if !intersects(course.ClassTimes, values) {
				return false
			}
		case core.FilterTerm:
			if !member(course.Term, values) {
				return false
			}
		case core.FilterDifficulty:
			if !member(course.Difficulty, values) {
				return false
			}
		case core.FilterProfessor:
			if !professorMatches(course.Professor, values) {
				return false
			}
		}
	}
	return true
}

func intersects(have, want []string) bool {
	if len(have) == 0 {
		return true
	}
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

func member(have string, want []string) bool {
	if have == "" {
		return true
	}
	return slices.Contains(want, have)
}

func professorMatches(professor string, names []string) bool {
	if professor == "" {
		return true
	}
	professor = strings.ToLower(professor)
	for _, name := range names {
		if strings.Contains(professor, strings.ToLower(name)) {
			return true
		}
	}
	return false
}
