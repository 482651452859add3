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
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/index"
)

var (
	vectorMUS  = ord.NewSliceSer[float32](raw.Float32)
	matrixMUS  = ord.NewSliceSer[[]float32](vectorMUS)
	stringsMUS = ord.NewSliceSer[string](ord.String)
	listsMUS   = ord.NewSliceSer[[]int](ord.NewSliceSer[int](varint.Int))
)

// MarshalCourse serializes a Course to bytes.
func MarshalCourse(course *core.Course) []byte {
	buf := make([]byte, core.CourseMUS.Size(*course))
	core.CourseMUS.Marshal(*course, buf)
	return buf
}

// UnmarshalCourse deserializes a Course from bytes.
func UnmarshalCourse(data []byte) (*core.Course, error) {
	course, _, err := core.CourseMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: course: %w", ErrSerializationFailed, err)
	}
	return &course, nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vector []float32) []byte {
	buf := make([]byte, vectorMUS.Size(vector))
	vectorMUS.Marshal(vector, buf)
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	vector, _, err := vectorMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %w", ErrSerializationFailed, err)
	}
	return vector, nil
}

// MarshalEmbeddingInfo serializes EmbeddingInfo to bytes.
func MarshalEmbeddingInfo(info *core.EmbeddingInfo) []byte {
	buf := make([]byte, core.EmbeddingInfoMUS.Size(*info))
	core.EmbeddingInfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalEmbeddingInfo deserializes EmbeddingInfo from bytes.
func UnmarshalEmbeddingInfo(data []byte) (*core.EmbeddingInfo, error) {
	info, _, err := core.EmbeddingInfoMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding info: %w", ErrSerializationFailed, err)
	}
	return &info, nil
}

// MarshalSnapshot serializes an index snapshot to bytes.
func MarshalSnapshot(s *index.Snapshot) []byte {
	size := varint.Int.Size(int(s.Kind)) +
		varint.Int.Size(s.Dim) +
		varint.Int.Size(s.Probes) +
		stringsMUS.Size(s.Ids) +
		matrixMUS.Size(s.Vectors) +
		matrixMUS.Size(s.Centroids) +
		listsMUS.Size(s.Lists)
	buf := make([]byte, size)
	n := varint.Int.Marshal(int(s.Kind), buf)
	n += varint.Int.Marshal(s.Dim, buf[n:])
	n += varint.Int.Marshal(s.Probes, buf[n:])
	n += stringsMUS.Marshal(s.Ids, buf[n:])
	n += matrixMUS.Marshal(s.Vectors, buf[n:])
	n += matrixMUS.Marshal(s.Centroids, buf[n:])
	listsMUS.Marshal(s.Lists, buf[n:])
	return buf
}

// UnmarshalSnapshot deserializes an index snapshot from bytes. The result is
// not validated; index.Restore does that.
func UnmarshalSnapshot(data []byte) (*index.Snapshot, error) {
	var (
		s        index.Snapshot
		kind     int
		n, total int
		err      error
	)
	wrap := func(field string, err error) error {
		return fmt.Errorf("%w: snapshot %s: %w", ErrSerializationFailed, field, err)
	}

	if kind, n, err = varint.Int.Unmarshal(data); err != nil {
		return nil, wrap("kind", err)
	}
	s.Kind = index.Kind(kind)
	total += n
	if s.Dim, n, err = varint.Int.Unmarshal(data[total:]); err != nil {
		return nil, wrap("dim", err)
	}
	total += n
	if s.Probes, n, err = varint.Int.Unmarshal(data[total:]); err != nil {
		return nil, wrap("probes", err)
	}
	total += n
	if s.Ids, n, err = stringsMUS.Unmarshal(data[total:]); err != nil {
		return nil, wrap("ids", err)
	}
	total += n
	if s.Vectors, n, err = matrixMUS.Unmarshal(data[total:]); err != nil {
		return nil, wrap("vectors", err)
	}
	total += n
	if s.Centroids, n, err = matrixMUS.Unmarshal(data[total:]); err != nil {
		return nil, wrap("centroids", err)
	}
	total += n
	if s.Lists, _, err = listsMUS.Unmarshal(data[total:]); err != nil {
		return nil, wrap("lists", err)
	}
	return &s, nil
}
