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

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/index"
)

func TestMarshalUnmarshalCourse(t *testing.T) {
	course := &core.Course{
		Id:             "CS50",
		Title:          "Introduction to Computer Science",
		Professor:      "David Malan",
		Description:    "An introduction to the intellectual enterprises of computer science.",
		Term:           "Fall 2025",
		Concentrations: []string{"Computer Science"},
		GenEds:         []string{"Science & Technology in Society"},
		ClassTimes:     []string{"Mon 10:30", "Wed 10:30"},
		Difficulty:     "Moderate",
		Workload:       "10-12 hours",
		QRating:        4.2,
		Comments:       []string{"Great course", "Lots of work"},
		Summary:        "Students found it rewarding.",
	}

	data := MarshalCourse(course)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCourse(data)
	require.NoError(t, err)
	assert.Equal(t, course, decoded)
}

func TestUnmarshalCourse_Invalid(t *testing.T) {
	_, err := UnmarshalCourse([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalVector(t *testing.T) {
	vector := []float32{0.25, -0.5, 1, 0}

	decoded, err := UnmarshalVector(MarshalVector(vector))
	require.NoError(t, err)
	assert.Equal(t, vector, decoded)
}

func TestMarshalUnmarshalEmbeddingInfo(t *testing.T) {
	info := &core.EmbeddingInfo{Model: "text-embedding-ada-002", Dimension: 1536, Count: 812}

	decoded, err := UnmarshalEmbeddingInfo(MarshalEmbeddingInfo(info))
	require.NoError(t, err)
	assert.Equal(t, info, decoded)
}

func TestMarshalUnmarshalSnapshot(t *testing.T) {
	ids := make([]string, 40)
	vectors := make([][]float32, 40)
	for i := range ids {
		ids[i] = string(rune('A'+i%26)) + string(rune('a'+i/26))
		vectors[i] = []float32{float32(i%5) + 1, float32(i%3) - 1, float32(i%7) * 0.5}
	}
	ivf, err := index.NewIVF(ids, vectors, 3, 6)
	require.NoError(t, err)

	snapshot := ivf.Snapshot()
	decoded, err := UnmarshalSnapshot(MarshalSnapshot(snapshot))
	require.NoError(t, err)
	assert.Equal(t, snapshot.Kind, decoded.Kind)
	assert.Equal(t, snapshot.Dim, decoded.Dim)
	assert.Equal(t, snapshot.Probes, decoded.Probes)
	assert.Equal(t, snapshot.Ids, decoded.Ids)
	assert.Equal(t, snapshot.Vectors, decoded.Vectors)
	assert.Equal(t, snapshot.Centroids, decoded.Centroids)
	require.Len(t, decoded.Lists, len(snapshot.Lists))
	for i, list := range snapshot.Lists {
		assert.ElementsMatch(t, list, decoded.Lists[i])
	}

	restored, err := index.Restore(decoded)
	require.NoError(t, err)
	query := index.NormalizeVector(vectors[7])
	want, err := ivf.Search(query, 5)
	require.NoError(t, err)
	got, err := restored.Search(query, 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUnmarshalSnapshot_Truncated(t *testing.T) {
	flat, err := index.NewFlat([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}}, 2)
	require.NoError(t, err)
	data := MarshalSnapshot(flat.Snapshot())

	_, err = UnmarshalSnapshot(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
