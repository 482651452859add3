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

// Package coursefind is a hybrid search engine for course catalogs.
//
// An Engine stores the catalog and its embeddings in BadgerDB, keeps an
// in-memory vector index over them, and answers natural-language queries
// optionally narrowed by metadata filters. Results are returned as display
// cards.
//
//	engine, err := coursefind.Open("/var/lib/coursefind")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//	if err := engine.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := engine.HybridSearch(ctx, "intro programming",
//	    core.Filters{}.With(core.FilterTerm, "Fall 2025"), 5)
package coursefind

import "errors"

var (
	// ErrNoEmbeddings is returned by Load when the catalog has courses but
	// none of them has a stored vector.
	ErrNoEmbeddings = errors.New("no embeddings stored for catalog")

	// ErrCourseNotFound is returned when a course id is not in the catalog.
	ErrCourseNotFound = errors.New("course not found")
)
