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

package index

import (
	"fmt"
	"slices"
)

// Snapshot is the persisted form of an index. Vectors and centroids are
// stored already normalized, so Restore does not retrain or renormalize.
// Slices in a snapshot taken from a live index are shared with it.
type Snapshot struct {
	Kind      Kind
	Dim       int
	Probes    int
	Ids       []string
	Vectors   [][]float32
	Centroids [][]float32
	Lists     [][]int
}

// Restore rebuilds an index from a snapshot after checking its consistency.
func Restore(s *Snapshot) (Index, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if err := checkRows(s.Ids, s.Vectors, s.Dim); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	m := matrix{dim: s.Dim, ids: s.Ids, vectors: s.Vectors}

	switch s.Kind {
	case KindFlat:
		return &Flat{matrix: m}, nil
	case KindIVF:
		if err := checkLists(s, m.Len()); err != nil {
			return nil, err
		}
		probes := s.Probes
		if probes < 1 || probes > len(s.Centroids) {
			probes = ProbeCount(len(s.Centroids))
		}
		return &IVF{
			matrix:    m,
			centroids: s.Centroids,
			lists:     s.Lists,
			probes:    probes,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %v", ErrInvalidSnapshot, s.Kind)
	}
}

// checkLists verifies that every row appears in exactly one inverted list.
func checkLists(s *Snapshot, rows int) error {
	if len(s.Centroids) == 0 || len(s.Centroids) != len(s.Lists) {
		return fmt.Errorf("%w: %d centroids for %d lists", ErrInvalidSnapshot, len(s.Centroids), len(s.Lists))
	}
	for c, centroid := range s.Centroids {
		if len(centroid) != s.Dim {
			return fmt.Errorf("%w: centroid %d has dimension %d, expected %d", ErrInvalidSnapshot, c, len(centroid), s.Dim)
		}
	}
	seen := make([]bool, rows)
	total := 0
	for _, list := range s.Lists {
		for _, row := range list {
			if row < 0 || row >= rows || seen[row] {
				return fmt.Errorf("%w: list row %d out of range or repeated", ErrInvalidSnapshot, row)
			}
			seen[row] = true
			total++
		}
	}
	if total != rows {
		return fmt.Errorf("%w: lists cover %d of %d rows", ErrInvalidSnapshot, total, rows)
	}
	return nil
}

// SameIds reports whether the snapshot indexes exactly ids, in order.
func (s *Snapshot) SameIds(ids []string) bool {
	return s != nil && slices.Equal(s.Ids, ids)
}
