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
	"errors"
	"math"
	"testing"
)

func TestValidateCourse(t *testing.T) {
	tests := []struct {
		name    string
		course  *Course
		wantErr error
	}{
		{
			name:    "valid course",
			course:  &Course{Id: "CS50", Title: "Intro to CS", QRating: 4.2},
			wantErr: nil,
		},
		{
			name:    "valid course without descriptive fields",
			course:  &Course{Id: "MATH55"},
			wantErr: nil,
		},
		{
			name:    "unrated course",
			course:  &Course{Id: "EC10", QRating: 0},
			wantErr: nil,
		},
		{
			name:    "nil course",
			course:  nil,
			wantErr: ErrInvalidCourse,
		},
		{
			name:    "empty id",
			course:  &Course{Title: "No id"},
			wantErr: ErrEmptyCourseID,
		},
		{
			name:    "negative rating",
			course:  &Course{Id: "X", QRating: -1},
			wantErr: ErrInvalidQRating,
		},
		{
			name:    "rating above scale",
			course:  &Course{Id: "X", QRating: 5.5},
			wantErr: ErrInvalidQRating,
		},
		{
			name:    "NaN rating",
			course:  &Course{Id: "X", QRating: math.NaN()},
			wantErr: ErrInvalidQRating,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCourse(tt.course)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCourse() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateCourse() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCourse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCourseIDs(t *testing.T) {
	courses := []*Course{{Id: "b"}, {Id: "a"}, {Id: "c"}}
	got := CourseIDs(courses)
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("CourseIDs() returned %d ids, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CourseIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
