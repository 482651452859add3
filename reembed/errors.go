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

package reembed

import "errors"

var (
	// ErrCatalogRepositoryRequired is returned when no catalog repository is supplied.
	ErrCatalogRepositoryRequired = errors.New("catalog repository is required")

	// ErrEmbeddingRepositoryRequired is returned when no embedding repository is supplied.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository is required")

	// ErrEmbedderRequired is returned when no embedder is supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrModelRequired is returned when the config does not name the embedding model.
	ErrModelRequired = errors.New("embedding model name is required")

	// ErrEmbeddingCountMismatch is returned when the embedder returns a
	// different number of vectors than texts it was given.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
