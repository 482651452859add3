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

import "github.com/poiesic/coursefind/core"

// NoMatchesMessage is reported when filters exclude every course.
const NoMatchesMessage = "No courses match the selected filters."

// Result is the outcome of one query.
type Result struct {
	// Hits are ordered by descending score.
	Hits []*core.SearchResult

	// TotalMatches is the filtered set size for sub-index plans and the
	// number of passing hits in the fetch window for over-fetch plans.
	TotalMatches int

	FilterApplied bool
	FilterMessage string
	Strategy      Strategy
}

// Ids returns the course ids of the hits in rank order.
func (r *Result) Ids() []string {
	ids := make([]string, len(r.Hits))
	for i, hit := range r.Hits {
		ids[i] = hit.Course.Id
	}
	return ids
}

func emptyResult(strategy Strategy) *Result {
	return &Result{
		Hits:     []*core.SearchResult{},
		Strategy: strategy,
	}
}
