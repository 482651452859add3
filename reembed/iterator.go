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

import (
	"context"

	"github.com/poiesic/coursefind/core"
)

const (
	// DefaultBatchSize is the default number of courses embedded per request
	DefaultBatchSize = 100
)

// CourseIterator walks a list of courses in fixed-size batches.
type CourseIterator struct {
	courses   []*core.Course
	batchSize int
}

// NewCourseIterator creates a new course iterator.
// batchSize: number of courses per batch; non-positive values use DefaultBatchSize
func NewCourseIterator(courses []*core.Course, batchSize int) *CourseIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &CourseIterator{
		courses:   courses,
		batchSize: batchSize,
	}
}

// Batches returns the number of batches ForEach will produce.
func (it *CourseIterator) Batches() int {
	return (len(it.courses) + it.batchSize - 1) / it.batchSize
}

// ForEach calls fn for each batch in order.
// Iteration stops on first error from fn or when the context is done.
func (it *CourseIterator) ForEach(ctx context.Context, fn func([]*core.Course) error) error {
	for i := 0; i < len(it.courses); i += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+it.batchSize, len(it.courses))
		if err := fn(it.courses[i:end]); err != nil {
			return err
		}
	}
	return nil
}
