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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/poiesic/coursefind/ai"
	"github.com/poiesic/coursefind/ai/mock"
	"github.com/poiesic/coursefind/core"
)

func makeCourses(n int) []*core.Course {
	courses := make([]*core.Course, n)
	for i := range courses {
		courses[i] = &core.Course{
			Id:          fmt.Sprintf("C%03d", i),
			Title:       fmt.Sprintf("Course %d", i),
			Professor:   "Staff",
			Description: fmt.Sprintf("Description of course %d", i),
		}
	}
	return courses
}

func TestCourseText(t *testing.T) {
	tests := []struct {
		name   string
		course *core.Course
		want   string
	}{
		{
			name: "all fields",
			course: &core.Course{
				Title:       "Intro to CS",
				Professor:   "David Malan",
				Description: "Programming basics.",
				GenEds:      []string{"STS", "QR"},
			},
			want: "Intro to CS David Malan Programming basics. STS QR",
		},
		{
			name:   "no gen eds",
			course: &core.Course{Title: "Calculus", Professor: "Knill", Description: "Limits."},
			want:   "Calculus Knill Limits.",
		},
		{
			name:   "title only",
			course: &core.Course{Title: "Seminar"},
			want:   "Seminar",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CourseText(tt.course))
		})
	}
}

func TestCourseIterator_ForEach(t *testing.T) {
	courses := makeCourses(7)
	it := NewCourseIterator(courses, 3)
	assert.Equal(t, 3, it.Batches())

	var sizes []int
	err := it.ForEach(context.Background(), func(batch []*core.Course) error {
		sizes = append(sizes, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
}

func TestCourseIterator_DefaultsAndErrors(t *testing.T) {
	it := NewCourseIterator(makeCourses(5), 0)
	assert.Equal(t, 1, it.Batches())

	boom := errors.New("boom")
	err := NewCourseIterator(makeCourses(5), 2).ForEach(context.Background(), func([]*core.Course) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewCourseIterator(makeCourses(5), 2).ForEach(ctx, func([]*core.Course) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchProcessor_Process(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(3).WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 2, 2}
		}
		return out, nil
	})
	processor := NewBatchProcessor(embedder, nil, 3, time.Millisecond)

	courses := makeCourses(2)
	vectors, err := processor.Process(context.Background(), courses)
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	for _, id := range core.CourseIDs(courses) {
		v := vectors[id]
		require.Len(t, v, 3)
		assert.InDelta(t, 1.0/3, v[0], 1e-6)
		assert.InDelta(t, 2.0/3, v[1], 1e-6)
	}
	assert.Equal(t, []string{CourseText(courses[0]), CourseText(courses[1])}, embedder.Texts())
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(mock.NewMockEmbedder(), nil, 1, 0)
	vectors, err := processor.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestBatchProcessor_RetriesTransientFailure(t *testing.T) {
	calls := 0
	embedder := mock.NewMockEmbedderWithDimension(4).WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls < 3 {
			return nil, ai.RetryableError(errors.New("503"))
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.Vector(text, 4)
		}
		return out, nil
	})
	processor := NewBatchProcessor(embedder, nil, 3, time.Millisecond)

	vectors, err := processor.Process(context.Background(), makeCourses(2))
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, 3, calls)
}

func TestBatchProcessor_GivesUp(t *testing.T) {
	calls := 0
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		return nil, ai.RetryableError(errors.New("503"))
	})
	processor := NewBatchProcessor(embedder, nil, 2, time.Millisecond)

	_, err := processor.Process(context.Background(), makeCourses(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	processor := NewBatchProcessor(embedder, nil, 1, 0)

	_, err := processor.Process(context.Background(), makeCourses(3))
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

func TestBatchProcessor_RateLimited(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(2)
	limiter := rate.NewLimiter(rate.Every(20*time.Millisecond), 1)
	processor := NewBatchProcessor(embedder, limiter, 1, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := processor.Process(context.Background(), makeCourses(1))
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}
