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

// Flat scores every row against the query. Results are exact.
type Flat struct {
	matrix
}

var _ Index = (*Flat)(nil)

// NewFlat builds an exact index. Vectors are copied and normalized.
func NewFlat(ids []string, vectors [][]float32, dim int) (*Flat, error) {
	m, err := newMatrix(ids, vectors, dim)
	if err != nil {
		return nil, err
	}
	return &Flat{matrix: m}, nil
}

func (f *Flat) Kind() Kind {
	return KindFlat
}

func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if err := f.checkQuery(query); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Hit{}, nil
	}
	hits := make([]Hit, len(f.vectors))
	for row, v := range f.vectors {
		hits[row] = Hit{Row: row, Id: f.ids[row], Score: Dot(query, v)}
	}
	return topK(hits, k), nil
}

func (f *Flat) Snapshot() *Snapshot {
	return &Snapshot{
		Kind:    KindFlat,
		Dim:     f.dim,
		Ids:     f.ids,
		Vectors: f.vectors,
	}
}
