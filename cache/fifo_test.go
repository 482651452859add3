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

package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFIFO(t *testing.T) {
	t.Run("positive capacity", func(t *testing.T) {
		c := NewFIFO[string, int](3)
		assert.Equal(t, 3, c.Capacity())
		assert.Equal(t, 0, c.Len())
	})

	t.Run("non-positive capacity uses default", func(t *testing.T) {
		c := NewFIFO[string, int](0)
		assert.Equal(t, DefaultCapacity, c.Capacity())
	})
}

func TestFIFO_GetPut(t *testing.T) {
	c := NewFIFO[string, int](2)

	_, ok := c.Get("a")
	assert.False(t, ok)

	assert.False(t, c.Put("a", 1))
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestFIFO_EvictsOldestInserted(t *testing.T) {
	c := NewFIFO[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Reading "a" must not protect it: eviction is by insertion, not access.
	_, ok := c.Get("a")
	require.True(t, ok)

	assert.True(t, c.Put("d", 4))
	_, ok = c.Get("a")
	assert.False(t, ok, "oldest inserted entry should be evicted")
	assert.Equal(t, []string{"b", "c", "d"}, c.Keys())
}

func TestFIFO_ReplaceKeepsPosition(t *testing.T) {
	c := NewFIFO[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	assert.False(t, c.Put("a", 10), "replacing a key must not evict")
	v, _ := c.Get("a")
	assert.Equal(t, 10, v)

	c.Put("c", 3)
	_, ok := c.Get("a")
	assert.False(t, ok, "replaced key keeps its original insertion slot")
	assert.Equal(t, []string{"b", "c"}, c.Keys())
}

func TestFIFO_NeverExceedsCapacity(t *testing.T) {
	const capacity = 10
	c := NewFIFO[int, int](capacity)

	for i := 0; i < 3*capacity; i++ {
		c.Put(i, i)
		assert.LessOrEqual(t, c.Len(), capacity)
	}

	expected := make([]int, 0, capacity)
	for i := 2 * capacity; i < 3*capacity; i++ {
		expected = append(expected, i)
	}
	assert.Equal(t, expected, c.Keys())
}

func TestFIFO_EvictionCallback(t *testing.T) {
	var evicted []string
	c := NewFIFO[string, int](1, WithEvictionCallback(func(key string, _ int) {
		evicted = append(evicted, key)
	}))

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	assert.Equal(t, []string{"a", "b"}, evicted)
}

func TestFIFO_ConcurrentAccess(t *testing.T) {
	const capacity = 16
	c := NewFIFO[string, int](capacity)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("%d-%d", w, i)
				c.Put(key, i)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, capacity, c.Len())
	assert.Len(t, c.Keys(), capacity)
}
