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

package core

import (
	"errors"
	"testing"
)

func TestFilters_IsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"nil filters", nil, true},
		{"no keys", Filters{}, true},
		{"keys without values", Filters{FilterTerm: nil, FilterProfessor: {}}, true},
		{"one constrained field", Filters{FilterConcentration: {"CS"}}, false},
		{"mixed", Filters{FilterTerm: nil, FilterDifficulty: {"Easy"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilters_Validate(t *testing.T) {
	valid := Filters{}
	for _, field := range FilterFields {
		valid[field] = []string{"x"}
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	invalid := Filters{"room": {"Sever 113"}}
	err := invalid.Validate()
	if !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("Validate() error = %v, want %v", err, ErrUnknownFilter)
	}
}

func TestFilters_With(t *testing.T) {
	base := Filters{FilterTerm: {"Fall 2024"}}
	derived := base.With(FilterProfessor, "Malan")

	if len(base) != 1 {
		t.Errorf("With() mutated the receiver: %v", base)
	}
	if got := derived[FilterProfessor]; len(got) != 1 || got[0] != "Malan" {
		t.Errorf("With() professor = %v, want [Malan]", got)
	}
	if got := derived[FilterTerm]; len(got) != 1 || got[0] != "Fall 2024" {
		t.Errorf("With() dropped existing field, term = %v", got)
	}
}
