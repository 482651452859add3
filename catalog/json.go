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

package catalog

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/poiesic/coursefind/core"
)

// stringList accepts null, a string, or an array of scalars.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] != '[' {
		var s flexString
		if err := s.UnmarshalJSON(data); err != nil {
			return err
		}
		if s == "" {
			*l = nil
		} else {
			*l = stringList{string(s)}
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(stringList, 0, len(raw))
	for _, item := range raw {
		var s flexString
		if err := s.UnmarshalJSON(item); err != nil {
			// Structured elements are kept as their JSON text.
			s = flexString(item)
		}
		if s != "" {
			out = append(out, string(s))
		}
	}
	*l = out
	return nil
}

// flexString accepts a string, a number or a boolean.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("expected scalar, got %s", data)
	default:
		*s = flexString(data)
	}
	return nil
}

// flexNumber accepts a number or a numeric string. Anything else is 0.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(v)
	return nil
}

// record is the source shape of one course.
type record struct {
	Id            flexString `json:"id"`
	CourseId      flexString `json:"course_id"`
	Title         flexString `json:"title"`
	Professor     flexString `json:"professor"`
	Description   flexString `json:"description"`
	Term          flexString `json:"term"`
	Concentration stringList `json:"concentration"`
	GenEds        stringList `json:"gen_eds"`
	ClassTimes    stringList `json:"class_times"`
	Difficulty    flexString `json:"difficulty"`
	Workload      flexString `json:"workload"`
	QRating       flexNumber `json:"q_rating"`
	Comments      stringList `json:"comments"`
	Summary       flexString `json:"q_guide_summary"`
}

// course converts r, taking key as the id when present.
func (r *record) course(key string) *core.Course {
	id := key
	if id == "" {
		id = string(r.Id)
	}
	if id == "" {
		id = string(r.CourseId)
	}
	return &core.Course{
		Id:             strings.TrimSpace(id),
		Title:          string(r.Title),
		Professor:      string(r.Professor),
		Description:    string(r.Description),
		Term:           string(r.Term),
		Concentrations: []string(r.Concentration),
		GenEds:         []string(r.GenEds),
		ClassTimes:     []string(r.ClassTimes),
		Difficulty:     string(r.Difficulty),
		Workload:       string(r.Workload),
		QRating:        float64(r.QRating),
		Comments:       []string(r.Comments),
		Summary:        string(r.Summary),
	}
}

// ParseCourse decodes one course object. key overrides any id in the object.
func ParseCourse(key string, data []byte) (*core.Course, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	course := r.course(key)
	if err := core.ValidateCourse(course); err != nil {
		return nil, err
	}
	return course, nil
}

// DecodeJSON reads a catalog document: either an object mapping id to course
// or an array of courses carrying their own ids. Courses that fail validation
// are skipped with a warning. Results are in id order.
func DecodeJSON(r io.Reader, logger *slog.Logger) ([]*core.Course, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrCatalogLoad)
	}

	var courses []*core.Course
	keep := func(key string, raw json.RawMessage) {
		course, err := ParseCourse(key, raw)
		if err != nil {
			logger.Warn("skipping unparsable course", "id", key, "err", err)
			return
		}
		courses = append(courses, course)
	}

	switch data[0] {
	case '{':
		var byId map[string]json.RawMessage
		if err := json.Unmarshal(data, &byId); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
		}
		for key, raw := range byId {
			keep(key, raw)
		}
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
		}
		for _, raw := range list {
			keep("", raw)
		}
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrCatalogLoad)
	}

	slices.SortFunc(courses, func(a, b *core.Course) int {
		return strings.Compare(a.Id, b.Id)
	})
	return courses, nil
}

// LoadFile reads a catalog document from path.
func LoadFile(path string, logger *slog.Logger) ([]*core.Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
	}
	defer f.Close()
	return DecodeJSON(f, logger)
}
