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
	"math/rand/v2"
	"slices"
)

const (
	kmeansIterations = 25
	kmeansSeed       = 0x636f75727365
)

// trainKMeans runs spherical k-means over unit vectors and returns k unit
// centroids. The seed is fixed so the same corpus always trains the same lists.
func trainKMeans(vectors [][]float32, k, iterations int) [][]float32 {
	n := len(vectors)
	dim := len(vectors[0])
	rng := rand.New(rand.NewPCG(kmeansSeed, uint64(n)))

	centroids := make([][]float32, k)
	for i, row := range rng.Perm(n)[:k] {
		centroids[i] = slices.Clone(vectors[row])
	}

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < iterations; iter++ {
		changed := 0
		for i, v := range vectors {
			best := nearest(v, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed++
			}
		}
		if changed == 0 {
			break
		}

		sums := make([][]float32, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float32, dim)
		}
		for i, v := range vectors {
			c := assignments[i]
			counts[c]++
			for d, x := range v {
				sums[c][d] += x
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				// Reseed an empty list from a random row.
				centroids[c] = slices.Clone(vectors[rng.IntN(n)])
				continue
			}
			centroids[c] = NormalizeVector(sums[c])
		}
	}
	return centroids
}

// nearest returns the centroid with the highest inner product with v.
func nearest(v []float32, centroids [][]float32) int {
	best := 0
	bestScore := Dot(v, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if s := Dot(v, centroids[c]); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}
