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

package ai

import (
	"context"
	"errors"
)

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is less than or equal to zero.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be positive")

	// ErrEmptyEmbedding is returned when the service answers without vectors.
	ErrEmptyEmbedding = errors.New("embedding service returned no vectors")
)

// EmbeddingServiceError reports a failed call to the embedding service.
// Retryable failures (transport errors, rate limits, server errors) may
// succeed when repeated; the rest are returned without further attempts.
type EmbeddingServiceError struct {
	Retryable bool
	Err       error
}

func (e *EmbeddingServiceError) Error() string {
	return "embedding service: " + e.Err.Error()
}

func (e *EmbeddingServiceError) Unwrap() error {
	return e.Err
}

// RetryableError wraps err as a transient service failure.
func RetryableError(err error) error {
	return &EmbeddingServiceError{Retryable: true, Err: err}
}

// TerminalError wraps err as a service failure that retrying cannot fix.
func TerminalError(err error) error {
	return &EmbeddingServiceError{Retryable: false, Err: err}
}

// IsRetryable reports whether err is worth another attempt. Context errors
// never are. Errors that are not EmbeddingServiceErrors are treated as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var svcErr *EmbeddingServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	return true
}
