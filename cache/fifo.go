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

// Package cache provides a bounded, insertion-ordered memo table.
//
// FIFO evicts the oldest inserted entry once its capacity is reached. Reads
// never change eviction order, so it is not an LRU, and entries carry no TTL.
// There are no invalidation hooks: callers that cache values derived from a
// catalog must not let a FIFO outlive the catalog load it was filled from.
package cache

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 100

// FIFO is a fixed-capacity map that evicts in insertion order.
// It is safe for concurrent use; all operations serialize on one mutex.
type FIFO[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	entries  *orderedmap.OrderedMap[K, V]
	onEvict  func(key K, value V)
}

// Option configures a FIFO.
type Option[K comparable, V any] func(*FIFO[K, V])

// WithEvictionCallback registers fn to run, under the cache lock, for every
// evicted entry. fn must not call back into the cache.
func WithEvictionCallback[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(f *FIFO[K, V]) {
		f.onEvict = fn
	}
}

// NewFIFO creates a cache holding at most capacity entries.
func NewFIFO[K comparable, V any](capacity int, opts ...Option[K, V]) *FIFO[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	f := &FIFO[K, V]{
		capacity: capacity,
		entries:  orderedmap.New[K, V](),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get returns the value stored for key.
func (f *FIFO[K, V]) Get(key K) (V, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries.Get(key)
}

// Put stores value under key. Replacing an existing key keeps its original
// insertion position. Inserting a new key into a full cache first evicts the
// single oldest entry. Put reports whether an eviction happened.
func (f *FIFO[K, V]) Put(key K, value V) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, present := f.entries.Get(key); present {
		f.entries.Set(key, value)
		return false
	}

	evicted := false
	if f.entries.Len() >= f.capacity {
		if oldest := f.entries.Oldest(); oldest != nil {
			f.entries.Delete(oldest.Key)
			if f.onEvict != nil {
				f.onEvict(oldest.Key, oldest.Value)
			}
			evicted = true
		}
	}
	f.entries.Set(key, value)
	return evicted
}

// Len returns the number of cached entries.
func (f *FIFO[K, V]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries.Len()
}

// Capacity returns the maximum number of entries.
func (f *FIFO[K, V]) Capacity() int {
	return f.capacity
}

// Keys returns the cached keys, oldest first.
func (f *FIFO[K, V]) Keys() []K {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]K, 0, f.entries.Len())
	for pair := f.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
