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
)

// IVF partitions rows into inverted lists around k-means centroids and
// scans only the lists whose centroids score highest against the query.
// Recall is approximate: a true neighbor stored in an unprobed list is missed.
type IVF struct {
	matrix
	centroids [][]float32
	lists     [][]int
	probes    int
}

var _ Index = (*IVF)(nil)

// NewIVF trains an inverted-file index with the given number of lists.
// The list count is clamped to the number of vectors.
func NewIVF(ids []string, vectors [][]float32, dim, clusters int) (*IVF, error) {
	m, err := newMatrix(ids, vectors, dim)
	if err != nil {
		return nil, err
	}
	if clusters < 1 {
		return nil, fmt.Errorf("%w: cluster count must be positive, got %d", ErrIndexBuild, clusters)
	}
	clusters = min(clusters, m.Len())

	centroids := trainKMeans(m.vectors, clusters, kmeansIterations)
	lists := make([][]int, clusters)
	for row, v := range m.vectors {
		c := nearest(v, centroids)
		lists[c] = append(lists[c], row)
	}

	return &IVF{
		matrix:    m,
		centroids: centroids,
		lists:     lists,
		probes:    ProbeCount(clusters),
	}, nil
}

func (ix *IVF) Kind() Kind {
	return KindIVF
}

// Clusters returns the number of inverted lists.
func (ix *IVF) Clusters() int {
	return len(ix.centroids)
}

// Probes returns the number of lists scanned per query.
func (ix *IVF) Probes() int {
	return ix.probes
}

func (ix *IVF) Search(query []float32, k int) ([]Hit, error) {
	if err := ix.checkQuery(query); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	// Rank lists by centroid score, reusing Hit with Row as the list number.
	ranked := make([]Hit, len(ix.centroids))
	for c, centroid := range ix.centroids {
		ranked[c] = Hit{Row: c, Score: Dot(query, centroid)}
	}
	ranked = topK(ranked, ix.probes)

	var size int
	for _, list := range ranked {
		size += len(ix.lists[list.Row])
	}
	candidates := make([]Hit, 0, size)
	for _, list := range ranked {
		for _, row := range ix.lists[list.Row] {
			candidates = append(candidates, Hit{Row: row, Id: ix.ids[row], Score: Dot(query, ix.vectors[row])})
		}
	}
	return topK(candidates, k), nil
}

func (ix *IVF) Snapshot() *Snapshot {
	return &Snapshot{
		Kind:      KindIVF,
		Dim:       ix.dim,
		Probes:    ix.probes,
		Ids:       ix.ids,
		Vectors:   ix.vectors,
		Centroids: ix.centroids,
		Lists:     ix.lists,
	}
}
