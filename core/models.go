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

//go:generate go run ../cmd/musgen

// Course is a single catalog entry.
//
// Slice-valued fields hold sets; a catalog source that stores a single value
// for one of them is loaded as a one-element set. Empty strings and empty
// slices mean the field is absent for filtering purposes.
type Course struct {
	Id             string
	Title          string
	Professor      string
	Description    string
	Term           string
	Concentrations []string
	GenEds         []string
	ClassTimes     []string
	Difficulty     string
	Workload       string
	QRating        float64  // 0 means not rated
	Comments       []string // Student comments, in source order
	Summary        string   // Precomputed comment summary (populated by the summarization batch)
}

// SearchResult pairs a course with its similarity to the query.
type SearchResult struct {
	Course *Course
	Score  float32
}

// EmbeddingInfo describes the embeddings persisted for a catalog.
type EmbeddingInfo struct {
	Model     string
	Dimension int
	Count     int
}
