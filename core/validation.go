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

import (
	"fmt"
	"math"
)

// MaxQRating is the top of the Q rating scale.
const MaxQRating = 5.0

// ValidateCourse validates a Course according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - QRating must be within [0, MaxQRating] (0 means not rated)
//
// NOT validated (optional in catalog sources):
//   - Title, Professor and the other descriptive fields
//   - Summary (populated by the summarization batch)
func ValidateCourse(course *Course) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", ErrInvalidCourse)
	}

	if course.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCourse, ErrEmptyCourseID)
	}

	if math.IsNaN(course.QRating) || course.QRating < 0 || course.QRating > MaxQRating {
		return fmt.Errorf("%w: %w (%v)", ErrInvalidCourse, ErrInvalidQRating, course.QRating)
	}

	return nil
}

// CourseIDs returns the ids of courses in order.
func CourseIDs(courses []*Course) []string {
	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.Id
	}
	return ids
}
