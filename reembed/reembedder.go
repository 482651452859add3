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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/poiesic/coursefind/ai"
	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// Model names the embedding model; stored vectors from another model are replaced
	Model string `yaml:"-"`

	// BatchSize is the number of courses sent in each embedding request
	BatchSize int `yaml:"batch_size"`

	// Workers is the number of batches embedded concurrently
	Workers int `yaml:"workers"`

	// RequestsPerSecond caps embedding requests across all workers; 0 means no limit
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// ReportInterval is how often to report progress (number of courses)
	ReportInterval int `yaml:"report_interval"`

	// MaxRetries is the maximum number of attempts for each embedding request
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration `yaml:"retry_delay"`

	// All re-embeds every course, not only those missing a vector
	All bool `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		Workers:        max(1, runtime.NumCPU()/2),
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Result summarizes a reembedding run.
type Result struct {
	Total    int // courses in the catalog
	Embedded int // courses embedded by this run
	Skipped  int // courses that already had a vector
	Elapsed  time.Duration
}

// Reembedder orchestrates the embedding of every course in a catalog.
type Reembedder struct {
	catalog    storage.CatalogRepository
	embeddings storage.EmbeddingRepository
	config     *Config
	progress   io.Writer
	processor  *BatchProcessor
	logger     *slog.Logger

	// serializes writes so the stored count stays consistent
	storeMu sync.Mutex
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr); nil discards it
func NewReembedder(catalog storage.CatalogRepository, embeddings storage.EmbeddingRepository,
	embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if catalog == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	if config.Model == "" {
		return nil, ErrModelRequired
	}
	if config.MaxRetries <= 0 {
		return nil, ai.ErrInvalidMaxAttempts
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &Reembedder{
		catalog:    catalog,
		embeddings: embeddings,
		config:     config,
		progress:   progress,
		processor:  NewBatchProcessor(embedder, limiter, config.MaxRetries, config.RetryDelay),
		logger:     slog.Default().With("component", "reembed"),
	}, nil
}

// WithLogger replaces the reembedder's logger.
func (r *Reembedder) WithLogger(logger *slog.Logger) *Reembedder {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Run embeds the catalog and stores the vectors. Batches that complete
// before a failure stay stored, so a rerun resumes where this one stopped.
func (r *Reembedder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	courses, err := r.catalog.Courses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	result := &Result{Total: len(courses)}
	if len(courses) == 0 {
		fmt.Fprintf(r.progress, "No courses found in catalog (0 courses)\n")
		return result, nil
	}

	pending, err := r.pending(ctx, courses)
	if err != nil {
		return nil, err
	}
	result.Skipped = len(courses) - len(pending)
	if len(pending) == 0 {
		fmt.Fprintf(r.progress, "All %d courses already embedded with %s\n", len(courses), r.config.Model)
		result.Elapsed = time.Since(start)
		return result, nil
	}

	fmt.Fprintf(r.progress, "Embedding %d of %d courses (batch size: %d, workers: %d)\n",
		len(pending), len(courses), r.batchSize(), r.workers())

	pool, err := ants.NewPool(r.workers())
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracker := NewProgressTracker(r.progress, len(pending), r.config.ReportInterval).WithLogger(r.logger)
	tracker.Start()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
		embedded int
	)
	fail := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	iterator := NewCourseIterator(pending, r.batchSize())
	iterErr := iterator.ForEach(ctx, func(batch []*core.Course) error {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			vectors, err := r.processor.Process(ctx, batch)
			if err != nil {
				fail(fmt.Errorf("failed to process batch starting at %s: %w", batch[0].Id, err))
				return
			}
			if err := r.store(ctx, vectors); err != nil {
				fail(fmt.Errorf("failed to store embeddings: %w", err))
				return
			}
			errMu.Lock()
			embedded += len(vectors)
			errMu.Unlock()
			tracker.Increment(len(vectors))
		})
		if submitErr != nil {
			wg.Done()
			return submitErr
		}
		return nil
	})
	wg.Wait()

	result.Embedded = embedded
	result.Elapsed = time.Since(start)
	if firstErr != nil {
		return result, firstErr
	}
	if iterErr != nil && !errors.Is(iterErr, context.Canceled) {
		return result, iterErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	tracker.Finish()
	fmt.Fprintf(r.progress, "Embedding complete. Embedded %d courses in %v (%.1f courses/sec)\n",
		embedded, result.Elapsed.Round(time.Second), float64(embedded)/result.Elapsed.Seconds())
	r.logger.Info("catalog embedded", "model", r.config.Model, "embedded", embedded, "skipped", result.Skipped)
	return result, nil
}

// pending returns the courses that need a vector.
func (r *Reembedder) pending(ctx context.Context, courses []*core.Course) ([]*core.Course, error) {
	if r.config.All {
		return courses, nil
	}
	info, err := r.embeddings.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding info: %w", err)
	}
	if info == nil || info.Model != r.config.Model {
		return courses, nil
	}

	stored, err := r.embeddings.GetEmbeddings(ctx, core.CourseIDs(courses)...)
	if err != nil {
		return nil, fmt.Errorf("failed to read embeddings: %w", err)
	}
	var pending []*core.Course
	for _, course := range courses {
		if _, ok := stored[course.Id]; !ok {
			pending = append(pending, course)
		}
	}
	return pending, nil
}

func (r *Reembedder) store(ctx context.Context, vectors map[string][]float32) error {
	r.storeMu.Lock()
	defer r.storeMu.Unlock()
	return r.embeddings.PutEmbeddings(ctx, r.config.Model, vectors)
}

func (r *Reembedder) batchSize() int {
	if r.config.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return r.config.BatchSize
}

func (r *Reembedder) workers() int {
	return max(1, r.config.Workers)
}
