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

package filter

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/coursefind/cache"
	"github.com/poiesic/coursefind/core"
)

// Stats reports filter cache activity.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// Engine filters catalogs and memoizes the results.
//
// Cached slices are returned as-is to every caller with the same inputs and
// must not be modified. An Engine must not outlive the catalog load it serves,
// since course content changes under an unchanged id set are not detected.
type Engine struct {
	cache  *cache.FIFO[string, []*core.Course]
	hits   atomic.Int64
	misses atomic.Int64
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine caching up to capacity filter results.
func NewEngine(capacity int, opts ...EngineOption) *Engine {
	e := &Engine{
		cache:  cache.NewFIFO[string, []*core.Course](capacity),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "filter-engine")
	return e
}

// Filter returns the courses matching filters, in input order. Empty filters
// return courses itself. The input is never modified.
func (e *Engine) Filter(courses []*core.Course, filters core.Filters) []*core.Course {
	if filters.IsEmpty() {
		return courses
	}

	key := cacheKey(courses, filters)
	if cached, ok := e.cache.Get(key); ok {
		e.hits.Add(1)
		return cached
	}
	e.misses.Add(1)

	filtered := make([]*core.Course, 0)
	for _, course := range courses {
		if Matches(course, filters) {
			filtered = append(filtered, course)
		}
	}

	if e.cache.Put(key, filtered) {
		e.logger.Debug("evicted oldest filter result")
	}
	e.logger.Debug("filtered catalog", "courses", len(courses), "matched", len(filtered))
	return filtered
}

// Stats returns cache counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Hits:   e.hits.Load(),
		Misses: e.misses.Load(),
		Size:   e.cache.Len(),
	}
}

// cacheKey digests the sorted course ids and the sorted filter items. Values
// within a field are sorted too, so value order never splits the cache. Every
// component is length-prefixed, so no id or value can forge a boundary.
func cacheKey(courses []*core.Course, filters core.Filters) string {
	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.Id
	}
	slices.Sort(ids)

	fields := make([]core.FilterField, 0, len(filters))
	for field, values := range filters {
		if len(values) > 0 {
			fields = append(fields, field)
		}
	}
	slices.Sort(fields)

	h, _ := blake2b.New(32, nil)
	writeCount(h, len(ids))
	for _, id := range ids {
		writeString(h, id)
	}
	writeCount(h, len(fields))
	for _, field := range fields {
		values := slices.Clone(filters[field])
		slices.Sort(values)
		writeString(h, string(field))
		writeCount(h, len(values))
		for _, v := range values {
			writeString(h, v)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeCount(w io.Writer, n int) {
	w.Write(binary.AppendUvarint(nil, uint64(n)))
}

func writeString(w io.Writer, s string) {
	writeCount(w, len(s))
	io.WriteString(w, s)
}
