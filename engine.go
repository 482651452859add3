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

package coursefind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/poiesic/coursefind/ai"
	"github.com/poiesic/coursefind/ai/openai"
	"github.com/poiesic/coursefind/card"
	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/index"
	"github.com/poiesic/coursefind/reembed"
	"github.com/poiesic/coursefind/search"
	"github.com/poiesic/coursefind/storage"
	"github.com/poiesic/coursefind/storage/badger"
)

// Engine ties the persisted catalog, the embedding provider and the
// searcher together.
type Engine struct {
	backend    *badger.Backend
	catalog    storage.CatalogRepository
	embeddings storage.EmbeddingRepository
	provider   ai.AIProvider
	embedder   *ai.CachedEmbedder
	searcher   *search.Searcher
	reembed    *reembed.Config
	logger     *slog.Logger
}

// Response is the outcome of a hybrid query.
type Response struct {
	Cards         []card.Card `json:"cards"`
	CourseIds     []string    `json:"course_ids"`
	TotalMatches  int         `json:"total_matches"`
	FilterApplied bool        `json:"filter_applied"`
	FilterMessage string      `json:"filter_message,omitempty"`
	Strategy      string      `json:"strategy"`
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	inMemory   bool
	logger     *slog.Logger
	registerer prometheus.Registerer
	search     []search.Option
	reembed    *reembed.Config
}

// WithAIConfig sets the configuration used to create the OpenAI provider.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithAIProvider supplies the embedding provider directly. The engine
// closes it on Close.
func WithAIProvider(provider ai.AIProvider) Option {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory; the path passed to Open is ignored.
func WithInMemory() Option {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegisterer registers search and cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *engineOptions) {
		o.registerer = reg
	}
}

// WithSearchOptions passes options through to the searcher.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *engineOptions) {
		o.search = append(o.search, opts...)
	}
}

// WithReembedConfig sets the defaults used by Reembed.
func WithReembedConfig(cfg *reembed.Config) Option {
	return func(o *engineOptions) {
		o.reembed = cfg
	}
}

// Open opens the catalog database at dbPath. The searcher has no index
// until Load succeeds.
func Open(dbPath string, opts ...Option) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	backend, err := badger.OpenBackend(dbPath, options.inMemory, badger.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		if provider, err = openai.NewProvider(options.aiConfig, openai.WithLogger(logger)); err != nil {
			backend.Close()
			return nil, err
		}
	}

	embedder := ai.NewCachedEmbedderFromConfig(provider.Embedder(), provider.Config(),
		ai.WithCacheLogger(logger.With("component", "embedding-cache")))

	searchOpts := []search.Option{search.WithLogger(logger.With("component", "searcher"))}
	if options.registerer != nil {
		searchOpts = append(searchOpts, search.WithMonitor(search.NewPrometheusMonitor(options.registerer)))
	}
	searcher, err := search.NewSearcher(embedder, append(searchOpts, options.search...)...)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}
	if options.registerer != nil {
		search.RegisterCacheMetrics(options.registerer, embedder.Stats, searcher.FilterStats)
	}

	reembedConfig := options.reembed
	if reembedConfig == nil {
		reembedConfig = reembed.DefaultConfig()
	}

	return &Engine{
		backend:    backend,
		catalog:    badger.NewCatalogRepository(backend),
		embeddings: badger.NewEmbeddingRepository(backend),
		provider:   provider,
		embedder:   embedder,
		searcher:   searcher,
		reembed:    reembedConfig,
		logger:     logger,
	}, nil
}

// Close releases the provider and the database.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Catalog returns the catalog repository.
func (e *Engine) Catalog() storage.CatalogRepository {
	return e.catalog
}

// Embeddings returns the embedding repository.
func (e *Engine) Embeddings() storage.EmbeddingRepository {
	return e.embeddings
}

// Searcher returns the underlying searcher.
func (e *Engine) Searcher() *search.Searcher {
	return e.searcher
}

// EmbedderStats reports query embedding cache counters.
func (e *Engine) EmbedderStats() ai.CacheStats {
	return e.embedder.Stats()
}

// ImportCourses stores courses, replacing any with the same id. When replace
// is true, stored courses absent from courses are deleted along with their
// vectors. The searcher keeps serving the previous catalog until Load.
func (e *Engine) ImportCourses(ctx context.Context, courses []*core.Course, replace bool) error {
	if err := e.catalog.PutCourses(ctx, courses...); err != nil {
		return err
	}
	if !replace {
		e.logger.Info("imported courses", "count", len(courses))
		return nil
	}

	stored, err := e.catalog.Courses(ctx)
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		keep[c.Id] = struct{}{}
	}
	var stale []string
	for _, c := range stored {
		if _, ok := keep[c.Id]; !ok {
			stale = append(stale, c.Id)
		}
	}
	if len(stale) > 0 {
		if err := e.catalog.DeleteCourses(ctx, stale...); err != nil {
			return err
		}
		if err := e.embeddings.DeleteEmbeddings(ctx, stale...); err != nil {
			return err
		}
	}
	e.logger.Info("imported courses", "count", len(courses), "removed", len(stale))
	return nil
}

// Load reads the catalog and its vectors and installs a searchable snapshot.
// A persisted index is reused when it covers exactly the catalog courses
// that have vectors; otherwise the index is rebuilt and persisted.
func (e *Engine) Load(ctx context.Context) error {
	courses, err := e.catalog.Courses(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(courses) == 0 {
		return e.searcher.Build(ctx, nil, nil, 0)
	}

	info, err := e.embeddings.Info(ctx)
	if err != nil {
		return err
	}
	if info == nil || info.Count == 0 {
		return fmt.Errorf("%w: %d courses", ErrNoEmbeddings, len(courses))
	}
	if model := e.provider.Config().EmbeddingModel; info.Model != model {
		e.logger.Warn("stored embeddings come from a different model than queries",
			"stored", info.Model, "query", model)
	}

	embedded, err := e.embeddedIds(ctx, courses)
	if err != nil {
		return err
	}
	if len(embedded) == 0 {
		return fmt.Errorf("%w: %d courses", ErrNoEmbeddings, len(courses))
	}

	snapshot, err := e.embeddings.LoadIndex(ctx)
	if err != nil {
		return err
	}
	if snapshot.SameIds(embedded) {
		idx, err := index.Restore(snapshot)
		if err == nil {
			return e.searcher.Restore(courses, idx)
		}
		e.logger.Warn("discarding persisted index", "err", err)
	}

	vectors, err := e.embeddings.GetEmbeddings(ctx, embedded...)
	if err != nil {
		return err
	}
	if err := e.searcher.Build(ctx, courses, vectors, info.Dimension); err != nil {
		return err
	}
	if err := e.embeddings.SaveIndex(ctx, e.searcher.Index().Snapshot()); err != nil {
		e.logger.Warn("failed to persist index", "err", err)
	}
	return nil
}

// embeddedIds returns the ids of courses with stored vectors, in id order.
func (e *Engine) embeddedIds(ctx context.Context, courses []*core.Course) ([]string, error) {
	stored, err := e.embeddings.Ids(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, c := range courses {
		if _, found := slices.BinarySearch(stored, c.Id); found {
			ids = append(ids, c.Id)
		}
	}
	return ids, nil
}

// Reembed computes missing vectors (or all of them, per cfg.All) and reloads
// the searcher. A nil cfg uses the engine's defaults. An empty model name
// means the provider's embedding model.
func (e *Engine) Reembed(ctx context.Context, cfg *reembed.Config, progress io.Writer) (*reembed.Result, error) {
	if cfg == nil {
		cfg = e.reembed
	}
	run := *cfg
	if run.Model == "" {
		run.Model = e.provider.Config().EmbeddingModel
	}

	r, err := reembed.NewReembedder(e.catalog, e.embeddings, e.provider.Embedder(), &run, progress)
	if err != nil {
		return nil, err
	}
	result, err := r.WithLogger(e.logger.With("component", "reembed")).Run(ctx)
	if err != nil {
		return result, err
	}
	if result.Total == 0 {
		return result, nil
	}
	return result, e.Load(ctx)
}

// Search returns cards for the k courses most similar to query.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]card.Card, error) {
	result, err := e.searcher.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return card.FromResults(result.Hits), nil
}

// HybridSearch answers query within the courses matching filters.
func (e *Engine) HybridSearch(ctx context.Context, query string, filters core.Filters, k int) (*Response, error) {
	return e.HybridSearchWith(ctx, query, filters, k, search.StrategyAuto)
}

// HybridSearchWith is HybridSearch with the filtered plan forced to strategy.
func (e *Engine) HybridSearchWith(ctx context.Context, query string, filters core.Filters, k int, strategy search.Strategy) (*Response, error) {
	result, err := e.searcher.HybridSearchWith(ctx, query, filters, k, strategy)
	if err != nil {
		return nil, err
	}
	return &Response{
		Cards:         card.FromResults(result.Hits),
		CourseIds:     result.Ids(),
		TotalMatches:  result.TotalMatches,
		FilterApplied: result.FilterApplied,
		FilterMessage: result.FilterMessage,
		Strategy:      result.Strategy.String(),
	}, nil
}

// Course returns the card for one course with a zero similarity score.
// The loaded catalog is consulted first, then the database.
func (e *Engine) Course(ctx context.Context, id string) (*card.Card, error) {
	if course, ok := e.searcher.Course(id); ok {
		c := card.FromCourse(course, 0)
		return &c, nil
	}
	course, err := e.catalog.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
		}
		return nil, err
	}
	c := card.FromCourse(course, 0)
	return &c, nil
}

// Status describes what is stored and loaded.
type Status struct {
	Courses   int
	Embedded  int
	Model     string
	Dimension int
	Ready     bool
	IndexKind string
}

// Status reports catalog and index state.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	count, err := e.catalog.Count(ctx)
	if err != nil {
		return nil, err
	}
	status := &Status{Courses: count, Ready: e.searcher.Ready()}
	info, err := e.embeddings.Info(ctx)
	if err != nil {
		return nil, err
	}
	if info != nil {
		status.Embedded = info.Count
		status.Model = info.Model
		status.Dimension = info.Dimension
	}
	if idx := e.searcher.Index(); idx != nil {
		status.IndexKind = idx.Kind().String()
	}
	return status, nil
}
