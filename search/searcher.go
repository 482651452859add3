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

package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/coursefind/ai"
	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/filter"
	"github.com/poiesic/coursefind/index"
)

// snapshot is one installed catalog. It is never modified after install.
type snapshot struct {
	courses  []*core.Course
	byId     map[string]*core.Course
	rowOf    map[string]int
	index    index.Index
	complete bool
	filters  *filter.Engine
}

// Searcher provides hybrid semantic and metadata search over a course catalog.
type Searcher struct {
	embedder        ai.Embedder
	monitor         SearchMonitor
	logger          *slog.Logger
	selectivity     float64
	overFetchFactor int
	filterCacheSize int
	queryTimeout    time.Duration

	mu      sync.RWMutex
	snap    *snapshot
	retired filter.Stats
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMonitor sets the monitor notified on every query.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithSelectivity sets the filtered share of the catalog below which the
// sub-index plan is used. Default is 0.8.
func WithSelectivity(selectivity float64) Option {
	return func(s *Searcher) error {
		if selectivity < 0 || selectivity > 1 {
			return fmt.Errorf("selectivity must be within [0,1], got %v", selectivity)
		}
		s.selectivity = selectivity
		return nil
	}
}

// WithOverFetchFactor sets how many multiples of k the over-fetch plan
// requests from the index. Default is 3.
func WithOverFetchFactor(factor int) Option {
	return func(s *Searcher) error {
		if factor < 1 {
			return fmt.Errorf("over-fetch factor must be at least 1, got %d", factor)
		}
		s.overFetchFactor = factor
		return nil
	}
}

// WithFilterCacheSize sets the per-catalog filter cache capacity. Default is 100.
func WithFilterCacheSize(size int) Option {
	return func(s *Searcher) error {
		s.filterCacheSize = size
		return nil
	}
}

// WithQueryTimeout bounds each query embedding call. Zero means no bound
// beyond the caller's context.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		s.queryTimeout = timeout
		return nil
	}
}

// NewSearcher creates a searcher that embeds queries with embedder.
// No catalog is installed until Build or Restore succeeds.
func NewSearcher(embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		embedder:        embedder,
		monitor:         &noopMonitor{},
		logger:          slog.Default(),
		selectivity:     DefaultSelectivity,
		overFetchFactor: DefaultOverFetchFactor,
		filterCacheSize: DefaultFilterCacheSize,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Build indexes the catalog and installs it. vectors maps course id to its
// embedding; courses without one stay in the catalog but are never ranked.
// A non-empty catalog with no vectors at all fails with index.ErrIndexBuild.
func (s *Searcher) Build(ctx context.Context, courses []*core.Course, vectors map[string][]float32, dim int) error {
	sorted := sortedCourses(courses)

	ids := make([]string, 0, len(sorted))
	rows := make([][]float32, 0, len(sorted))
	for _, c := range sorted {
		if v, ok := vectors[c.Id]; ok {
			ids = append(ids, c.Id)
			rows = append(rows, v)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var idx index.Index
	if len(sorted) > 0 {
		start := time.Now()
		built, err := index.Build(ids, rows, dim)
		if err != nil {
			s.logger.Error("failed to build index", "courses", len(sorted), "vectors", len(rows), "err", err)
			return err
		}
		idx = built
		s.logger.Info("built index", "kind", idx.Kind(), "rows", idx.Len(), "courses", len(sorted), "elapsed", time.Since(start))
	}

	s.install(sorted, idx)
	return nil
}

// Restore installs the catalog with a previously built index. Index ids that
// are not in the catalog are rejected.
func (s *Searcher) Restore(courses []*core.Course, idx index.Index) error {
	sorted := sortedCourses(courses)
	if len(sorted) > 0 && idx == nil {
		return fmt.Errorf("%w: no index for %d courses", index.ErrIndexBuild, len(sorted))
	}
	if idx != nil {
		known := make(map[string]struct{}, len(sorted))
		for _, c := range sorted {
			known[c.Id] = struct{}{}
		}
		for _, id := range idx.Ids() {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("%w: index row %q has no catalog course", index.ErrIndexBuild, id)
			}
		}
	}
	s.install(sorted, idx)
	s.logger.Info("restored index", "courses", len(sorted))
	return nil
}

func (s *Searcher) install(courses []*core.Course, idx index.Index) {
	snap := &snapshot{
		courses: courses,
		byId:    make(map[string]*core.Course, len(courses)),
		rowOf:   make(map[string]int),
		index:   idx,
		filters: filter.NewEngine(s.filterCacheSize, filter.WithLogger(s.logger)),
	}
	for _, c := range courses {
		snap.byId[c.Id] = c
	}
	if idx != nil {
		for row, id := range idx.Ids() {
			snap.rowOf[id] = row
		}
	}
	snap.complete = len(snap.rowOf) == len(courses)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil {
		old := s.snap.filters.Stats()
		s.retired.Hits += old.Hits
		s.retired.Misses += old.Misses
	}
	s.snap = snap
}

func (s *Searcher) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Index returns the installed index, or nil if none is installed or the
// catalog is empty.
func (s *Searcher) Index() index.Index {
	if snap := s.current(); snap != nil {
		return snap.index
	}
	return nil
}

// Ready reports whether a catalog is installed.
func (s *Searcher) Ready() bool {
	return s.current() != nil
}

// Course returns the catalog course with the given id.
func (s *Searcher) Course(id string) (*core.Course, bool) {
	snap := s.current()
	if snap == nil {
		return nil, false
	}
	c, ok := snap.byId[id]
	return c, ok
}

// FilterStats returns filter cache counters accumulated across catalog loads.
func (s *Searcher) FilterStats() (hits, misses int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hits, misses = s.retired.Hits, s.retired.Misses
	if s.snap != nil {
		st := s.snap.filters.Stats()
		hits += st.Hits
		misses += st.Misses
	}
	return hits, misses
}

// Search returns the k courses most similar to query.
func (s *Searcher) Search(ctx context.Context, query string, k int) (*Result, error) {
	return s.HybridSearchWith(ctx, query, nil, k, StrategyAuto)
}

// HybridSearch returns the k courses most similar to query among those
// matching filters.
func (s *Searcher) HybridSearch(ctx context.Context, query string, filters core.Filters, k int) (*Result, error) {
	return s.HybridSearchWith(ctx, query, filters, k, StrategyAuto)
}

// HybridSearchWith is HybridSearch with the filtered plan forced to strategy.
// StrategyAuto lets the planner choose. The strategy is ignored when filters
// are empty.
func (s *Searcher) HybridSearchWith(ctx context.Context, query string, filters core.Filters, k int, strategy Strategy) (*Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopK, k)
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	s.monitor.Start(query, filters)
	result, err := s.plan(ctx, query, filters, k, strategy)
	if err != nil {
		s.monitor.Failed(err)
		return nil, err
	}
	s.monitor.Finish(result)
	return result, nil
}

func (s *Searcher) plan(ctx context.Context, query string, filters core.Filters, k int, strategy Strategy) (*Result, error) {
	snap := s.current()
	if snap == nil {
		return nil, ErrIndexNotBuilt
	}
	if len(snap.courses) == 0 {
		return emptyResult(StrategyNone), nil
	}

	if filters.IsEmpty() {
		s.monitor.StrategyChosen(StrategyFullIndex)
		return s.searchFull(ctx, snap, query, k)
	}

	filtered := snap.filters.Filter(snap.courses, filters)
	s.monitor.AfterFilter(len(filtered), len(snap.courses))
	if len(filtered) == 0 {
		s.logger.Debug("no courses match filters", "filters", filters)
		result := emptyResult(StrategyNone)
		result.FilterApplied = true
		result.FilterMessage = NoMatchesMessage
		return result, nil
	}

	if strategy == StrategyAuto {
		strategy = ChooseStrategy(len(filtered), len(snap.courses), snap.complete, s.selectivity)
	}
	s.monitor.StrategyChosen(strategy)
	s.logger.Debug("planned filtered search", "strategy", strategy, "filtered", len(filtered), "catalog", len(snap.courses))

	var (
		result *Result
		err    error
	)
	switch strategy {
	case StrategySubIndex:
		result, err = s.searchSubIndex(ctx, snap, query, filtered, k)
	case StrategyOverFetch:
		result, err = s.searchOverFetch(ctx, snap, query, filters, k)
	default:
		return nil, fmt.Errorf("unsupported filtered strategy %v", strategy)
	}
	if err != nil {
		return nil, err
	}
	result.FilterApplied = true
	return result, nil
}

func (s *Searcher) searchFull(ctx context.Context, snap *snapshot, query string, k int) (*Result, error) {
	q, err := s.embedQuery(ctx, snap, query)
	if err != nil {
		return nil, err
	}
	hits, err := snap.index.Search(q, k)
	if err != nil {
		return nil, err
	}
	s.monitor.AfterIndexSearch(len(hits))

	result := s.toResult(snap, hits, StrategyFullIndex)
	result.TotalMatches = len(result.Hits)
	return result, nil
}

func (s *Searcher) searchSubIndex(ctx context.Context, snap *snapshot, query string, filtered []*core.Course, k int) (*Result, error) {
	rows := make([]int, 0, len(filtered))
	for _, c := range filtered {
		if row, ok := snap.rowOf[c.Id]; ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		result := emptyResult(StrategySubIndex)
		result.TotalMatches = len(filtered)
		return result, nil
	}

	q, err := s.embedQuery(ctx, snap, query)
	if err != nil {
		return nil, err
	}
	sub, err := snap.index.Subset(rows)
	if err != nil {
		return nil, err
	}
	hits, err := sub.Search(q, min(k, len(rows)))
	if err != nil {
		return nil, err
	}
	s.monitor.AfterIndexSearch(len(hits))

	result := s.toResult(snap, hits, StrategySubIndex)
	result.TotalMatches = len(filtered)
	return result, nil
}

func (s *Searcher) searchOverFetch(ctx context.Context, snap *snapshot, query string, filters core.Filters, k int) (*Result, error) {
	q, err := s.embedQuery(ctx, snap, query)
	if err != nil {
		return nil, err
	}
	fetch := min(k*s.overFetchFactor, snap.index.Len())
	hits, err := snap.index.Search(q, fetch)
	if err != nil {
		return nil, err
	}
	s.monitor.AfterIndexSearch(len(hits))

	kept := make([]index.Hit, 0, len(hits))
	for _, hit := range hits {
		if filter.Matches(snap.byId[hit.Id], filters) {
			kept = append(kept, hit)
		}
	}
	total := len(kept)
	if len(kept) > k {
		kept = kept[:k]
	}

	result := s.toResult(snap, kept, StrategyOverFetch)
	result.TotalMatches = total
	return result, nil
}

// embedQuery returns the normalized query vector.
func (s *Searcher) embedQuery(ctx context.Context, snap *snapshot, query string) ([]float32, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	if len(vector) != snap.index.Dim() {
		return nil, fmt.Errorf("%w: query embedding has dimension %d, index has %d",
			index.ErrDimensionMismatch, len(vector), snap.index.Dim())
	}
	return index.NormalizeVector(vector), nil
}

func (s *Searcher) toResult(snap *snapshot, hits []index.Hit, strategy Strategy) *Result {
	results := make([]*core.SearchResult, 0, len(hits))
	for _, hit := range hits {
		course, ok := snap.byId[hit.Id]
		if !ok {
			continue
		}
		results = append(results, &core.SearchResult{Course: course, Score: hit.Score})
	}
	return &Result{Hits: results, Strategy: strategy}
}

func sortedCourses(courses []*core.Course) []*core.Course {
	sorted := slices.Clone(courses)
	slices.SortFunc(sorted, func(a, b *core.Course) int {
		return cmp.Compare(a.Id, b.Id)
	})
	return slices.CompactFunc(sorted, func(a, b *core.Course) bool {
		return a.Id == b.Id
	})
}
