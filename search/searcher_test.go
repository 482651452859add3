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
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/coursefind/ai"
	"github.com/poiesic/coursefind/ai/mock"
	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/filter"
	"github.com/poiesic/coursefind/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDim = 16

// setupSearcher builds a searcher over courses whose vectors are the mock
// embedding of their titles, behind a caching embedder like production.
func setupSearcher(t *testing.T, courses []*core.Course, opts ...Option) (*Searcher, *mock.MockEmbedder) {
	t.Helper()

	inner := mock.NewMockEmbedderWithDimension(testDim)
	embedder := ai.NewCachedEmbedder(inner, ai.WithRetryPolicy(1, 0))

	s, err := NewSearcher(embedder, opts...)
	require.NoError(t, err)

	vectors := make(map[string][]float32, len(courses))
	for _, c := range courses {
		vectors[c.Id] = mock.Vector(c.Title, testDim)
	}
	require.NoError(t, s.Build(context.Background(), courses, vectors, testDim))
	return s, inner
}

func catalog(n int) []*core.Course {
	concentrations := []string{"Computer Science", "Mathematics", "History", "Economics", "Physics"}
	terms := []string{"Fall 2024", "Spring 2025"}
	courses := make([]*core.Course, n)
	for i := range courses {
		courses[i] = &core.Course{
			Id:             fmt.Sprintf("C%04d", i),
			Title:          fmt.Sprintf("Course title %d", i),
			Professor:      fmt.Sprintf("Professor %d", i%7),
			Term:           terms[i%len(terms)],
			Concentrations: []string{concentrations[i%len(concentrations)]},
			Difficulty:     []string{"Easy", "Medium", "Hard"}[i%3],
		}
	}
	return courses
}

func TestNewSearcher(t *testing.T) {
	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewSearcher(nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("rejects bad options", func(t *testing.T) {
		_, err := NewSearcher(mock.NewMockEmbedder(), WithSelectivity(1.5))
		assert.Error(t, err)

		_, err = NewSearcher(mock.NewMockEmbedder(), WithOverFetchFactor(0))
		assert.Error(t, err)
	})
}

func TestSearch_BeforeBuild(t *testing.T) {
	s, err := NewSearcher(mock.NewMockEmbedderWithDimension(testDim))
	require.NoError(t, err)
	assert.False(t, s.Ready())

	_, err = s.Search(context.Background(), "algorithms", 5)
	assert.ErrorIs(t, err, ErrIndexNotBuilt)
}

func TestSearch_EmptyCatalog(t *testing.T) {
	s, inner := setupSearcher(t, nil)
	assert.True(t, s.Ready())
	assert.Nil(t, s.Index())

	result, err := s.Search(context.Background(), "algorithms", 5)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
	assert.Equal(t, 0, result.TotalMatches)
	assert.Equal(t, 0, inner.CallCount(), "empty catalog never embeds the query")
}

func TestSearch_InvalidInput(t *testing.T) {
	s, _ := setupSearcher(t, catalog(5))
	ctx := context.Background()

	_, err := s.Search(ctx, "algorithms", 0)
	assert.ErrorIs(t, err, ErrInvalidTopK)

	_, err = s.Search(ctx, "   ", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = s.HybridSearch(ctx, "algorithms", core.Filters{"room": {"101"}}, 3)
	assert.ErrorIs(t, err, core.ErrUnknownFilter)
}

func TestSearch_BoundedAndSorted(t *testing.T) {
	courses := catalog(40)
	s, _ := setupSearcher(t, courses)
	ctx := context.Background()

	for _, k := range []int{1, 5, 40, 100} {
		result, err := s.Search(ctx, "statistics and probability", k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(result.Hits), k)
		assert.LessOrEqual(t, len(result.Hits), len(courses))
		assert.Equal(t, StrategyFullIndex, result.Strategy)
		assert.False(t, result.FilterApplied)

		for i, hit := range result.Hits {
			_, ok := s.Course(hit.Course.Id)
			assert.True(t, ok, "hit must be a catalog course")
			if i > 0 {
				assert.GreaterOrEqual(t, result.Hits[i-1].Score, hit.Score)
			}
		}
	}
}

func TestSearch_ExactTitleRanksFirst(t *testing.T) {
	courses := catalog(30)
	s, _ := setupSearcher(t, courses)

	result, err := s.Search(context.Background(), courses[12].Title, 3)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, courses[12].Id, result.Hits[0].Course.Id)
	assert.InDelta(t, 1.0, result.Hits[0].Score, 1e-5)
}

func TestHybridSearch_EmptyFiltersEqualsSearch(t *testing.T) {
	s, _ := setupSearcher(t, catalog(25))
	ctx := context.Background()

	plain, err := s.Search(ctx, "european history", 5)
	require.NoError(t, err)

	for _, filters := range []core.Filters{nil, {}, {core.FilterTerm: {}}} {
		hybrid, err := s.HybridSearch(ctx, "european history", filters, 5)
		require.NoError(t, err)
		assert.Equal(t, plain, hybrid)
	}
}

func TestHybridSearch_NoMatches(t *testing.T) {
	s, inner := setupSearcher(t, catalog(10))

	result, err := s.HybridSearch(context.Background(), "anything", core.Filters{core.FilterTerm: {"Summer 1999"}}, 5)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
	assert.Equal(t, 0, result.TotalMatches)
	assert.True(t, result.FilterApplied)
	assert.Equal(t, NoMatchesMessage, result.FilterMessage)
	assert.Equal(t, StrategyNone, result.Strategy)
	assert.Equal(t, 0, inner.CallCount(), "query is not embedded when nothing can match")
}

func TestHybridSearch_ThreeCourseScenario(t *testing.T) {
	courses := []*core.Course{
		{Id: "A", Title: "Data Structures", Concentrations: []string{"CS"}},
		{Id: "B", Title: "Real Analysis", Concentrations: []string{"Math"}},
		{Id: "C", Title: "Algorithms", Concentrations: []string{"CS"}},
	}
	s, _ := setupSearcher(t, courses)

	result, err := s.HybridSearch(context.Background(), "algorithms", core.Filters{core.FilterConcentration: {"CS"}}, 5)
	require.NoError(t, err)

	assert.Equal(t, StrategySubIndex, result.Strategy)
	assert.LessOrEqual(t, result.TotalMatches, 2)
	assert.Subset(t, []string{"A", "C"}, result.Ids())
	assert.NotEmpty(t, result.Hits)
}

func TestHybridSearch_FilterCorrectnessBothStrategies(t *testing.T) {
	courses := catalog(60)
	s, _ := setupSearcher(t, courses)
	ctx := context.Background()

	filterSets := []core.Filters{
		{core.FilterConcentration: {"History"}},
		{core.FilterTerm: {"Fall 2024"}, core.FilterDifficulty: {"Hard", "Easy"}},
		{core.FilterProfessor: {"professor 3"}},
		{core.FilterConcentration: {"Physics", "Economics"}, core.FilterTerm: {"Spring 2025"}},
	}

	for _, strategy := range []Strategy{StrategySubIndex, StrategyOverFetch} {
		for i, filters := range filterSets {
			t.Run(fmt.Sprintf("%s/%d", strategy, i), func(t *testing.T) {
				result, err := s.HybridSearchWith(ctx, "quantitative reasoning", filters, 5, strategy)
				require.NoError(t, err)
				assert.Equal(t, strategy, result.Strategy)
				assert.True(t, result.FilterApplied)
				assert.LessOrEqual(t, len(result.Hits), 5)
				for j, hit := range result.Hits {
					assert.True(t, filter.Matches(hit.Course, filters), "hit %s fails filters", hit.Course.Id)
					if j > 0 {
						assert.GreaterOrEqual(t, result.Hits[j-1].Score, hit.Score)
					}
				}
			})
		}
	}
}

func TestHybridSearch_SubIndexFindsAllMatches(t *testing.T) {
	courses := catalog(50)
	s, _ := setupSearcher(t, courses)
	filters := core.Filters{core.FilterConcentration: {"History"}}

	result, err := s.HybridSearchWith(context.Background(), "anything", filters, 100, StrategySubIndex)
	require.NoError(t, err)

	// Every fifth course is History.
	assert.Equal(t, 10, result.TotalMatches)
	assert.Len(t, result.Hits, 10)
}

func TestHybridSearch_OverFetchBoundedRecall(t *testing.T) {
	courses := catalog(50)
	s, _ := setupSearcher(t, courses)
	filters := core.Filters{core.FilterConcentration: {"History"}}

	result, err := s.HybridSearchWith(context.Background(), "anything", filters, 2, StrategyOverFetch)
	require.NoError(t, err)

	// The window holds min(3k, catalog) = 6 hits; only those are considered.
	assert.LessOrEqual(t, result.TotalMatches, 6)
	assert.LessOrEqual(t, len(result.Hits), 2)
	assert.LessOrEqual(t, len(result.Hits), result.TotalMatches)
}

func TestHybridSearch_AutoStrategy(t *testing.T) {
	courses := catalog(20)
	s, _ := setupSearcher(t, courses)
	ctx := context.Background()

	selective, err := s.HybridSearch(ctx, "q", core.Filters{core.FilterConcentration: {"History"}}, 3)
	require.NoError(t, err)
	assert.Equal(t, StrategySubIndex, selective.Strategy)

	broad, err := s.HybridSearch(ctx, "q", core.Filters{core.FilterConcentration: {"History", "Physics", "Economics", "Mathematics", "Computer Science"}}, 3)
	require.NoError(t, err)
	assert.Equal(t, StrategyOverFetch, broad.Strategy)
}

func TestHybridSearch_IncompleteEmbeddingsUseOverFetch(t *testing.T) {
	courses := catalog(20)
	inner := mock.NewMockEmbedderWithDimension(testDim)
	s, err := NewSearcher(inner)
	require.NoError(t, err)

	vectors := make(map[string][]float32)
	for _, c := range courses[:15] {
		vectors[c.Id] = mock.Vector(c.Title, testDim)
	}
	require.NoError(t, s.Build(context.Background(), courses, vectors, testDim))
	assert.Equal(t, 15, s.Index().Len())

	result, err := s.HybridSearch(context.Background(), "q", core.Filters{core.FilterConcentration: {"History"}}, 3)
	require.NoError(t, err)
	assert.Equal(t, StrategyOverFetch, result.Strategy)

	_, ok := s.Course(courses[19].Id)
	assert.True(t, ok, "unembedded courses remain in the catalog")
}

func TestSearch_IdempotentAndCached(t *testing.T) {
	s, inner := setupSearcher(t, catalog(30))
	ctx := context.Background()
	filters := core.Filters{core.FilterTerm: {"Fall 2024"}}

	first, err := s.HybridSearch(ctx, "machine learning", filters, 5)
	require.NoError(t, err)
	second, err := s.HybridSearch(ctx, "machine learning", filters, 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount(), "second query must be served by the embedding cache")

	hits, misses := s.FilterStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestSearch_EmbeddingFailureIsTerminal(t *testing.T) {
	s, inner := setupSearcher(t, catalog(10))
	inner.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, ai.RetryableError(errors.New("503 service unavailable"))
	})

	result, err := s.Search(context.Background(), "anything", 5)
	assert.Nil(t, result)
	var svcErr *ai.EmbeddingServiceError
	assert.ErrorAs(t, err, &svcErr)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	s, inner := setupSearcher(t, catalog(10))
	inner.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	})

	_, err := s.Search(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, index.ErrDimensionMismatch)
}

func TestSearch_CancelledContext(t *testing.T) {
	s, _ := setupSearcher(t, catalog(10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, "anything", 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Errors(t *testing.T) {
	s, err := NewSearcher(mock.NewMockEmbedderWithDimension(testDim))
	require.NoError(t, err)

	err = s.Build(context.Background(), catalog(3), nil, testDim)
	assert.ErrorIs(t, err, index.ErrIndexBuild)
	assert.False(t, s.Ready(), "failed builds leave no snapshot")

	bad := map[string][]float32{"C0000": {1, 2}}
	err = s.Build(context.Background(), catalog(3), bad, testDim)
	assert.ErrorIs(t, err, index.ErrIndexBuild)
}

func TestRestore(t *testing.T) {
	courses := catalog(12)
	original, _ := setupSearcher(t, courses)
	snap := original.Index().Snapshot()

	idx, err := index.Restore(snap)
	require.NoError(t, err)

	restored, err := NewSearcher(mock.NewMockEmbedderWithDimension(testDim))
	require.NoError(t, err)
	require.NoError(t, restored.Restore(courses, idx))

	ctx := context.Background()
	want, err := original.Search(ctx, "seminar", 4)
	require.NoError(t, err)
	got, err := restored.Search(ctx, "seminar", 4)
	require.NoError(t, err)
	assert.Equal(t, want.Ids(), got.Ids())

	err = restored.Restore(courses[:5], idx)
	assert.ErrorIs(t, err, index.ErrIndexBuild, "index rows must exist in the catalog")
}

func TestSearch_ConcurrentWithRebuild(t *testing.T) {
	courses := catalog(40)
	s, _ := setupSearcher(t, courses)
	ctx := context.Background()

	vectors := make(map[string][]float32, len(courses))
	for _, c := range courses {
		vectors[c.Id] = mock.Vector(c.Title, testDim)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				filters := core.Filters{core.FilterTerm: {"Fall 2024"}}
				result, err := s.HybridSearch(ctx, fmt.Sprintf("query %d", (w+i)%5), filters, 5)
				if assert.NoError(t, err) {
					for _, hit := range result.Hits {
						assert.True(t, filter.Matches(hit.Course, filters))
					}
				}
			}
		}(w)
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Build(ctx, courses, vectors, testDim))
	}
	wg.Wait()
}

type recordingMonitor struct {
	noopMonitor
	mu         sync.Mutex
	strategies []Strategy
	failures   int
}

func (m *recordingMonitor) StrategyChosen(s Strategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies = append(m.strategies, s)
}

func (m *recordingMonitor) Failed(_ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func TestSearch_Monitor(t *testing.T) {
	monitor := &recordingMonitor{}
	s, inner := setupSearcher(t, catalog(20), WithMonitor(monitor))
	ctx := context.Background()

	_, err := s.Search(ctx, "a", 3)
	require.NoError(t, err)
	_, err = s.HybridSearch(ctx, "b", core.Filters{core.FilterConcentration: {"History"}}, 3)
	require.NoError(t, err)

	inner.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, ai.TerminalError(errors.New("400"))
	})
	_, err = s.Search(ctx, "c", 3)
	require.Error(t, err)

	assert.Equal(t, []Strategy{StrategyFullIndex, StrategySubIndex, StrategyFullIndex}, monitor.strategies)
	assert.Equal(t, 1, monitor.failures)
}

func TestChooseStrategy(t *testing.T) {
	tests := []struct {
		name     string
		filtered int
		total    int
		complete bool
		want     Strategy
	}{
		{"selective and complete", 2, 3, true, StrategySubIndex},
		{"exactly at threshold", 8, 10, true, StrategyOverFetch},
		{"broad", 9, 10, true, StrategyOverFetch},
		{"selective but incomplete", 1, 10, false, StrategyOverFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseStrategy(tt.filtered, tt.total, tt.complete, DefaultSelectivity))
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"", "auto", "sub_index", "over_fetch"} {
		s, err := ParseStrategy(name)
		require.NoError(t, err, name)
		if name != "" {
			assert.Equal(t, name, s.String())
		}
	}
	_, err := ParseStrategy("full_index")
	assert.Error(t, err)
}
