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

package reembed

import (
	"strings"

	"github.com/poiesic/coursefind/core"
)

// CourseText returns the text embedded for a course: title, professor,
// description and gen eds, separated by spaces.
func CourseText(course *core.Course) string {
	var sb strings.Builder
	sb.WriteString(course.Title)
	sb.WriteByte(' ')
	sb.WriteString(course.Professor)
	sb.WriteByte(' ')
	sb.WriteString(course.Description)
	if len(course.GenEds) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(course.GenEds, " "))
	}
	return strings.TrimSpace(sb.String())
}
