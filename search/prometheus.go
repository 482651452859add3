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
	"errors"

	"github.com/poiesic/coursefind/ai"
	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/index"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMonitor records search activity as Prometheus metrics.
type PrometheusMonitor struct {
	searches    *prometheus.CounterVec
	failures    *prometheus.CounterVec
	selectivity prometheus.Histogram
	candidates  prometheus.Histogram
	results     prometheus.Histogram
}

var _ SearchMonitor = (*PrometheusMonitor)(nil)

// NewPrometheusMonitor registers search metrics with reg.
func NewPrometheusMonitor(reg prometheus.Registerer) *PrometheusMonitor {
	factory := promauto.With(reg)
	return &PrometheusMonitor{
		searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coursefind",
				Name:      "searches_total",
				Help:      "Completed searches by plan",
			},
			[]string{"strategy"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coursefind",
				Name:      "search_failures_total",
				Help:      "Failed searches by cause",
			},
			[]string{"cause"},
		),
		selectivity: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coursefind",
			Name:      "filter_selectivity_ratio",
			Help:      "Share of the catalog kept by filters",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 0.8, 1},
		}),
		candidates: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coursefind",
			Name:      "index_candidates",
			Help:      "Hits returned by the index before filtering",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		results: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coursefind",
			Name:      "search_results",
			Help:      "Hits returned to the caller",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
	}
}

func (m *PrometheusMonitor) Start(_ string, _ core.Filters) {}

func (m *PrometheusMonitor) AfterFilter(matched, catalog int) {
	if catalog > 0 {
		m.selectivity.Observe(float64(matched) / float64(catalog))
	}
}

func (m *PrometheusMonitor) StrategyChosen(_ Strategy) {}

func (m *PrometheusMonitor) AfterIndexSearch(candidates int) {
	m.candidates.Observe(float64(candidates))
}

func (m *PrometheusMonitor) Finish(result *Result) {
	m.searches.WithLabelValues(result.Strategy.String()).Inc()
	m.results.Observe(float64(len(result.Hits)))
}

func (m *PrometheusMonitor) Failed(err error) {
	m.failures.WithLabelValues(failureCause(err)).Inc()
}

func failureCause(err error) string {
	var svcErr *ai.EmbeddingServiceError
	switch {
	case errors.As(err, &svcErr):
		return "embedding"
	case errors.Is(err, ErrIndexNotBuilt):
		return "not_built"
	case errors.Is(err, index.ErrDimensionMismatch):
		return "dimension"
	default:
		return "other"
	}
}

// RegisterCacheMetrics exposes embedding and filter cache counters read
// from the given stats functions at scrape time.
func RegisterCacheMetrics(reg prometheus.Registerer, embedStats func() ai.CacheStats, filterStats func() (hits, misses int64)) {
	factory := promauto.With(reg)
	if embedStats != nil {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "coursefind",
			Name:      "embedding_cache_hits_total",
			Help:      "Query embeddings served from cache",
		}, func() float64 { return float64(embedStats().Hits) })
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "coursefind",
			Name:      "embedding_cache_misses_total",
			Help:      "Query embeddings computed by the service",
		}, func() float64 { return float64(embedStats().Misses) })
	}
	if filterStats != nil {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "coursefind",
			Name:      "filter_cache_hits_total",
			Help:      "Filter results served from cache",
		}, func() float64 { hits, _ := filterStats(); return float64(hits) })
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "coursefind",
			Name:      "filter_cache_misses_total",
			Help:      "Filter results computed",
		}, func() float64 { _, misses := filterStats(); return float64(misses) })
	}
}
