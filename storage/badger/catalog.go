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

package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) *CatalogRepository {
	return &CatalogRepository{
		backend: backend,
	}
}

// PutCourses validates and stores courses, replacing any with the same id.
// Nothing is written if any course is invalid.
func (r *CatalogRepository) PutCourses(ctx context.Context, courses ...*core.Course) error {
	for _, course := range courses {
		if err := core.ValidateCourse(course); err != nil {
			return err
		}
	}
	return r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, course := range courses {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := wb.Set(makeCourseKey(course.Id), storage.MarshalCourse(course)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetCourse retrieves a course by id.
func (r *CatalogRepository) GetCourse(ctx context.Context, id string) (*core.Course, error) {
	var result *core.Course
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		val, err := getValue(tx, makeCourseKey(id))
		if err != nil {
			return err
		}
		if val == nil {
			return storage.ErrNotFound
		}
		result, err = storage.UnmarshalCourse(val)
		return err
	}, false)
	return result, err
}

// Courses returns every stored course ordered by id.
func (r *CatalogRepository) Courses(ctx context.Context) ([]*core.Course, error) {
	var result []*core.Course
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(coursePrefix), false, func(id string, val []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			course, err := storage.UnmarshalCourse(val)
			if err != nil {
				return fmt.Errorf("course %s: %w", id, err)
			}
			result = append(result, course)
			return nil
		})
	}, false)
	return result, err
}

// DeleteCourses removes courses by id.
func (r *CatalogRepository) DeleteCourses(ctx context.Context, ids ...string) error {
	return r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, id := range ids {
			if err := wb.Delete(makeCourseKey(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of stored courses.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(coursePrefix), true, func(string, []byte) error {
			count++
			return nil
		})
	}, false)
	return count, err
}
