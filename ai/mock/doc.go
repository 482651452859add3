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

// Package mock provides test double implementations of AI service interfaces.
//
// # Usage in Tests
//
//	// Deterministic vectors of a chosen dimension
//	embedder := mock.NewMockEmbedderWithDimension(8)
//
//	// Custom behavior injection
//	embedder.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, ai.RetryableError(errors.New("503"))
//	})
//
//	// Assertions
//	assert.Equal(t, 3, embedder.CallCount())
//
// Mock embedders are safe for concurrent use.
package mock
