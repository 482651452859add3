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

// Package storage provides the persistence layer for coursefind.
//
// Repository interfaces decouple the catalog, its embeddings, and the trained
// index from the BadgerDB implementation in the badger subpackage.
//
// # Architecture
//
//   - CatalogRepository: courses keyed by course id
//   - EmbeddingRepository: one vector per course plus the model metadata
//     they were produced with, and the latest index snapshot
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	catalog := badger.NewCatalogRepository(backend)
//	embeddings := badger.NewEmbeddingRepository(backend)
//
// Use in tests with in-memory storage:
//
//	catalog, embeddings, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
package storage
