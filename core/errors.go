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

import "errors"

var (
	// ErrInvalidCourse indicates a Course failed validation.
	ErrInvalidCourse = errors.New("invalid course")

	// ErrEmptyCourseID indicates the Id field is empty.
	ErrEmptyCourseID = errors.New("course id cannot be empty")

	// ErrInvalidQRating indicates a Q rating outside [0, 5].
	ErrInvalidQRating = errors.New("q rating must be between 0 and 5")

	// ErrUnknownFilter indicates a filter field that is not supported.
	ErrUnknownFilter = errors.New("unknown filter field")
)
