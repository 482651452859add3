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
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Design constants. They are fixed rules of thumb, not tuned per deployment.
const (
	// FlatThreshold is the corpus size at which search switches from exact
	// to approximate.
	FlatThreshold = 1000

	// MaxClusters caps the number of IVF inverted lists.
	MaxClusters = 256

	// MaxProbes caps how many inverted lists a query scans.
	MaxProbes = 32
)

// Kind identifies the index variant.
type Kind int

const (
	// KindFlat is exact, exhaustive inner-product search.
	KindFlat Kind = iota + 1
	// KindIVF is approximate search over k-means inverted lists.
	KindIVF
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindIVF:
		return "ivf"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SelectKind picks the index variant for a corpus of n vectors.
func SelectKind(n int) Kind {
	if n < FlatThreshold {
		return KindFlat
	}
	return KindIVF
}

// ClusterCount returns the IVF list count for n vectors: 4·sqrt(n) rounded,
// capped at MaxClusters and never more than n.
func ClusterCount(n int) int {
	if n <= 0 {
		return 0
	}
	clusters := int(math.Round(4 * math.Sqrt(float64(n))))
	return max(1, min(clusters, MaxClusters, n))
}

// ProbeCount returns how many lists a query scans for the given cluster count.
func ProbeCount(clusters int) int {
	return max(1, min(clusters/4, MaxProbes))
}

// Hit is one search result. Row is the position in the index that produced it.
type Hit struct {
	Row   int
	Id    string
	Score float32
}

// Index answers top-k inner-product queries over unit vectors.
//
// Implementations are immutable after construction and safe for concurrent
// readers. Queries must already be normalized; indexes never re-normalize them.
type Index interface {
	// Kind reports the variant.
	Kind() Kind

	// Len returns the number of indexed vectors.
	Len() int

	// Dim returns the vector dimension.
	Dim() int

	// Ids returns the row to identifier mapping. Callers must not modify it.
	Ids() []string

	// Search returns up to k hits ordered by descending score.
	Search(query []float32, k int) ([]Hit, error)

	// Subset builds a throwaway exact index over the given rows. Hit rows
	// from the subset refer to positions within the subset.
	Subset(rows []int) (*Flat, error)

	// Snapshot returns a serializable form of the index.
	Snapshot() *Snapshot
}

// Build indexes vectors under ids, choosing the variant by corpus size.
// Vectors are copied and normalized.
func Build(ids []string, vectors [][]float32, dim int) (Index, error) {
	switch SelectKind(len(vectors)) {
	case KindFlat:
		return NewFlat(ids, vectors, dim)
	default:
		return NewIVF(ids, vectors, dim, ClusterCount(len(vectors)))
	}
}

// matrix is the row storage shared by both variants.
type matrix struct {
	dim     int
	ids     []string
	vectors [][]float32
}

func newMatrix(ids []string, vectors [][]float32, dim int) (matrix, error) {
	if err := checkRows(ids, vectors, dim); err != nil {
		return matrix{}, err
	}
	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		normalized[i] = NormalizeVector(v)
	}
	return matrix{
		dim:     dim,
		ids:     slices.Clone(ids),
		vectors: normalized,
	}, nil
}

func checkRows(ids []string, vectors [][]float32, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrIndexBuild, dim)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("%w: no vectors", ErrIndexBuild)
	}
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", ErrIndexBuild, len(ids), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d (%s) has dimension %d, expected %d", ErrIndexBuild, i, ids[i], len(v), dim)
		}
	}
	return nil
}

func (m *matrix) Len() int {
	return len(m.vectors)
}

func (m *matrix) Dim() int {
	return m.dim
}

func (m *matrix) Ids() []string {
	return m.ids
}

func (m *matrix) checkQuery(query []float32) error {
	if len(query) != m.dim {
		return fmt.Errorf("%w: query has dimension %d, index has %d", ErrDimensionMismatch, len(query), m.dim)
	}
	return nil
}

func (m *matrix) Subset(rows []int) (*Flat, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty subset", ErrIndexBuild)
	}
	ids := make([]string, len(rows))
	vectors := make([][]float32, len(rows))
	for i, row := range rows {
		if row < 0 || row >= len(m.vectors) {
			return nil, fmt.Errorf("%w: row %d out of range [0,%d)", ErrIndexBuild, row, len(m.vectors))
		}
		ids[i] = m.ids[row]
		// Rows are immutable and already normalized, so they are shared.
		vectors[i] = m.vectors[row]
	}
	return &Flat{matrix: matrix{dim: m.dim, ids: ids, vectors: vectors}}, nil
}

// topK sorts hits by descending score, breaking ties by row, and truncates.
func topK(hits []Hit, k int) []Hit {
	slices.SortFunc(hits, func(a, b Hit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return cmp.Compare(a.Row, b.Row)
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
