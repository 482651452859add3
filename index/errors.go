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

package index

import "errors"

var (
	// ErrIndexBuild is returned when an index cannot be built from its input:
	// no vectors, mismatched id and vector counts, or vectors whose length
	// differs from the configured dimension.
	ErrIndexBuild = errors.New("index build failed")

	// ErrDimensionMismatch is returned when a query vector's length differs
	// from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidSnapshot is returned when a persisted snapshot is inconsistent.
	ErrInvalidSnapshot = errors.New("invalid index snapshot")
)
