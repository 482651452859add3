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

package storage

import (
	"context"

	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/index"
)

// CatalogRepository stores courses keyed by id.
type CatalogRepository interface {
	// PutCourses inserts or replaces courses.
	PutCourses(ctx context.Context, courses ...*core.Course) error

	// GetCourse retrieves a course by id.
	// Returns ErrNotFound if the course doesn't exist.
	GetCourse(ctx context.Context, id string) (*core.Course, error)

	// Courses returns every stored course ordered by id.
	Courses(ctx context.Context) ([]*core.Course, error)

	// DeleteCourses removes courses by id. Missing ids are ignored.
	DeleteCourses(ctx context.Context, ids ...string) error

	// Count returns the number of stored courses.
	Count(ctx context.Context) (int, error)
}

// EmbeddingRepository stores course vectors and the index trained on them.
type EmbeddingRepository interface {
	// PutEmbeddings stores vectors keyed by course id and records the model
	// that produced them. All vectors must share one dimension, which must
	// match any vectors already stored for the same model. Storing vectors
	// from a different model discards the existing ones. Any write discards
	// the persisted index snapshot.
	PutEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error

	// GetEmbeddings returns the vectors stored for ids. With no ids, every
	// stored vector is returned. Missing ids are omitted.
	GetEmbeddings(ctx context.Context, ids ...string) (map[string][]float32, error)

	// DeleteEmbeddings removes vectors by course id and discards the
	// persisted index snapshot.
	DeleteEmbeddings(ctx context.Context, ids ...string) error

	// Ids returns the ids of all stored vectors in ascending order.
	Ids(ctx context.Context) ([]string, error)

	// Info describes the stored embeddings. Returns nil, nil when none exist.
	Info(ctx context.Context) (*core.EmbeddingInfo, error)

	// SaveIndex persists an index snapshot, replacing any previous one.
	SaveIndex(ctx context.Context, snapshot *index.Snapshot) error

	// LoadIndex returns the persisted snapshot, or nil, nil if none exists.
	LoadIndex(ctx context.Context) (*index.Snapshot, error)
}
