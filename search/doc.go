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

// Package search answers free-text course queries, optionally narrowed by
// metadata filters.
//
// A Searcher holds one immutable catalog snapshot: courses in id order, the
// vector index over their embeddings, and a filter cache scoped to that load.
// Rebuilding installs a new snapshot under a write lock, so concurrent queries
// see either the old catalog or the new one.
//
// Filtered queries pick one of two plans. When the filters keep a small share
// of a fully embedded catalog, an exact sub-index is built over just the
// matching rows. Otherwise the full index is over-fetched and its hits are
// filtered, which can return fewer than k results.
package search
