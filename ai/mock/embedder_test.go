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

package mock

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_DeterministicUnitLength(t *testing.T) {
	a := Vector("intro to economics", 16)
	b := Vector("intro to economics", 16)
	c := Vector("organic chemistry", 16)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var sum float64
	for _, x := range a {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockEmbedder(t *testing.T) {
	m := NewMockEmbedderWithDimension(8)
	ctx := context.Background()

	v, err := m.EmbedText(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, v, 8)

	vs, err := m.EmbedTexts(ctx, []string{"b", "c"})
	require.NoError(t, err)
	assert.Len(t, vs, 2)

	assert.Equal(t, 2, m.CallCount())
	assert.Equal(t, []string{"a", "b", "c"}, m.Texts())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Empty(t, m.Texts())
}

func TestMockEmbedder_Concurrent(t *testing.T) {
	m := NewMockEmbedder()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.EmbedText(context.Background(), "q")
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, m.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProviderWithEmbedder(NewMockEmbedderWithDimension(12))
	assert.Equal(t, 12, p.Config().Dimension)
	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	assert.NoError(t, p.Close())
}
