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
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/poiesic/coursefind/ai"
	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/index"
)

// BatchProcessor embeds batches of courses.
type BatchProcessor struct {
	embedder       ai.Embedder
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// limiter: shared request limiter, or nil for no limit
// maxRetries: maximum number of attempts for each embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embedder ai.Embedder, limiter *rate.Limiter, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		limiter:        limiter,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds a batch of courses and returns their normalized vectors
// keyed by course id.
func (bp *BatchProcessor) Process(ctx context.Context, courses []*core.Course) (map[string][]float32, error) {
	if len(courses) == 0 {
		return map[string][]float32{}, nil
	}

	texts := make([]string, len(courses))
	for i, course := range courses {
		texts[i] = CourseText(course)
	}

	var embeddings [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		if bp.limiter != nil {
			if err := bp.limiter.Wait(ctx); err != nil {
				return ai.TerminalError(err)
			}
		}
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(courses) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(courses), len(embeddings))
	}

	vectors := make(map[string][]float32, len(courses))
	for i, course := range courses {
		if len(embeddings[i]) == 0 {
			return nil, fmt.Errorf("%w: course %s", ai.ErrEmptyEmbedding, course.Id)
		}
		vectors[course.Id] = index.NormalizeVector(embeddings[i])
	}
	return vectors, nil
}
