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

// Package card projects ranked courses into display cards.
//
// Cards never carry nil slices or empty identity fields, and every card has a
// summary. The precomputed course summary is used when present; otherwise a
// one-line summary is synthesized from catalog fields. No text-generation
// service is ever called here.
package card

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/coursefind/core"
)

// Placeholders for missing course fields.
const (
	UnknownTitle     = "Unknown Course"
	UnknownProfessor = "Unknown Professor"
	NoSummary        = "No Q Guide summary available."
	noWorkload       = "Not specified"
	noRating         = "Not rated"
)

// Card is the display form of one search hit.
type Card struct {
	Id              string   `json:"id"`
	Title           string   `json:"title"`
	Professor       string   `json:"professor"`
	Description     string   `json:"description"`
	Concentration   string   `json:"concentration"`
	Difficulty      string   `json:"difficulty"`
	Workload        string   `json:"workload"`
	Term            string   `json:"term"`
	GenEds          []string `json:"gen_eds"`
	SimilarityScore float32  `json:"similarity_score"`
	QGuideSummary   string   `json:"q_guide_summary"`
}

// New builds the card for a search hit.
func New(result *core.SearchResult) Card {
	return FromCourse(result.Course, result.Score)
}

// FromCourse builds the card for course with the given score.
func FromCourse(course *core.Course, score float32) Card {
	genEds := course.GenEds
	if genEds == nil {
		genEds = []string{}
	}
	return Card{
		Id:              course.Id,
		Title:           orDefault(course.Title, UnknownTitle),
		Professor:       orDefault(course.Professor, UnknownProfessor),
		Description:     course.Description,
		Concentration:   strings.Join(course.Concentrations, ", "),
		Difficulty:      course.Difficulty,
		Workload:        course.Workload,
		Term:            course.Term,
		GenEds:          genEds,
		SimilarityScore: score,
		QGuideSummary:   Summary(course),
	}
}

// FromResults builds cards in rank order. The result is never nil.
func FromResults(results []*core.SearchResult) []Card {
	cards := make([]Card, 0, len(results))
	for _, r := range results {
		cards = append(cards, New(r))
	}
	return cards
}

// Summary returns the course's precomputed summary, a synthesized summary
// when only student comments exist, or NoSummary.
func Summary(course *core.Course) string {
	if course.Summary != "" {
		return course.Summary
	}
	if len(course.Comments) > 0 {
		return MiniSummary(course)
	}
	return NoSummary
}

// MiniSummary synthesizes a one-line description from catalog fields.
func MiniSummary(course *core.Course) string {
	workload := orDefault(course.Workload, noWorkload)
	rating := noRating
	if course.QRating > 0 {
		rating = strconv.FormatFloat(course.QRating, 'f', -1, 64)
	}

	head := fmt.Sprintf("%s taught by %s. Workload: %s, Q Rating: %s.",
		orDefault(course.Title, UnknownTitle),
		orDefault(course.Professor, UnknownProfessor),
		workload, rating)

	if n := len(course.Comments); n > 0 {
		return fmt.Sprintf("%s %d student comments available.", head, n)
	}
	return head + " No student comments available."
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
