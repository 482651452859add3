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

package badger

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/index"
	"github.com/poiesic/coursefind/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{
		backend: backend,
	}
}

// PutEmbeddings stores vectors for model. Switching models discards every
// previously stored vector.
func (r *EmbeddingRepository) PutEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	dim := -1
	for id, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty vector for %s", storage.ErrInvalidEmbedding, id)
		}
		if dim >= 0 && len(v) != dim {
			return fmt.Errorf("%w: %s has dimension %d, expected %d", storage.ErrInvalidEmbedding, id, len(v), dim)
		}
		dim = len(v)
	}

	info, err := r.Info(ctx)
	if err != nil {
		return err
	}
	var existing []string
	if info != nil {
		if info.Model == model && info.Dimension != dim {
			return fmt.Errorf("%w: dimension %d does not match stored dimension %d for %s",
				storage.ErrInvalidEmbedding, dim, info.Dimension, model)
		}
		if existing, err = r.Ids(ctx); err != nil {
			return err
		}
	}
	replacing := info != nil && info.Model != model

	count := len(vectors)
	if !replacing {
		for _, id := range existing {
			if _, ok := vectors[id]; !ok {
				count++
			}
		}
	}
	meta := &core.EmbeddingInfo{Model: model, Dimension: dim, Count: count}

	return r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		if replacing {
			for _, id := range existing {
				if err := wb.Delete(makeEmbeddingKey(id)); err != nil {
					return err
				}
			}
		}
		if err := wb.Delete([]byte(indexSnapshot)); err != nil {
			return err
		}
		for _, id := range slices.Sorted(maps.Keys(vectors)) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := wb.Set(makeEmbeddingKey(id), storage.MarshalVector(vectors[id])); err != nil {
				return err
			}
		}
		return wb.Set([]byte(embeddingMeta), storage.MarshalEmbeddingInfo(meta))
	})
}

// GetEmbeddings returns stored vectors for ids, or all of them when ids is empty.
func (r *EmbeddingRepository) GetEmbeddings(ctx context.Context, ids ...string) (map[string][]float32, error) {
	result := make(map[string][]float32)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		decode := func(id string, val []byte) error {
			v, err := storage.UnmarshalVector(val)
			if err != nil {
				return fmt.Errorf("embedding %s: %w", id, err)
			}
			result[id] = v
			return nil
		}
		if len(ids) == 0 {
			return scanPrefix(tx, []byte(embeddingPrefix), false, decode)
		}
		for _, id := range ids {
			val, err := getValue(tx, makeEmbeddingKey(id))
			if err != nil {
				return err
			}
			if val == nil {
				continue
			}
			if err := decode(id, val); err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteEmbeddings removes vectors and keeps the stored count in step.
func (r *EmbeddingRepository) DeleteEmbeddings(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	info, err := r.Info(ctx)
	if err != nil || info == nil {
		return err
	}
	present, err := r.GetEmbeddings(ctx, ids...)
	if err != nil {
		return err
	}
	info.Count = max(0, info.Count-len(present))

	return r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for id := range present {
			if err := wb.Delete(makeEmbeddingKey(id)); err != nil {
				return err
			}
		}
		if err := wb.Delete([]byte(indexSnapshot)); err != nil {
			return err
		}
		return wb.Set([]byte(embeddingMeta), storage.MarshalEmbeddingInfo(info))
	})
}

// Info returns the embedding metadata, or nil if nothing has been stored.
func (r *EmbeddingRepository) Info(ctx context.Context) (*core.EmbeddingInfo, error) {
	var info *core.EmbeddingInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		val, err := getValue(tx, []byte(embeddingMeta))
		if err != nil || val == nil {
			return err
		}
		info, err = storage.UnmarshalEmbeddingInfo(val)
		return err
	}, false)
	return info, err
}

// SaveIndex persists an index snapshot.
func (r *EmbeddingRepository) SaveIndex(ctx context.Context, snapshot *index.Snapshot) error {
	return r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		return wb.Set([]byte(indexSnapshot), storage.MarshalSnapshot(snapshot))
	})
}

// LoadIndex returns the persisted snapshot.
// Returns nil, nil if no snapshot exists.
func (r *EmbeddingRepository) LoadIndex(ctx context.Context) (*index.Snapshot, error) {
	var snapshot *index.Snapshot
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		val, err := getValue(tx, []byte(indexSnapshot))
		if err != nil || val == nil {
			return err
		}
		snapshot, err = storage.UnmarshalSnapshot(val)
		return err
	}, false)
	return snapshot, err
}

// Ids returns the ids of all stored vectors in ascending order.
func (r *EmbeddingRepository) Ids(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(embeddingPrefix), true, func(id string, _ []byte) error {
			ids = append(ids, id)
			return nil
		})
	}, false)
	return ids, err
}
