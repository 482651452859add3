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
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	"github.com/poiesic/coursefind/core"
	_ "modernc.org/sqlite"
)

// DefaultTable is the table read when none is given.
const DefaultTable = "courses"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// DriverFor returns the database/sql driver name for a DSN: "postgres" for
// postgres:// and postgresql:// URLs, "sqlite" for everything else.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// OpenSQL opens the database named by dsn with the matching driver.
func OpenSQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverFor(dsn), dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
	}
	return db, nil
}

// LoadSQL reads every row of table as (id, course_data) where course_data
// holds a course JSON object. Rows whose data cannot be parsed are skipped
// with a warning. Results are in id order.
func LoadSQL(ctx context.Context, db *sql.DB, table string, logger *slog.Logger) ([]*core.Course, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", ErrCatalogLoad, table)
	}

	rows, err := db.QueryContext(ctx, "SELECT id, course_data FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
	}
	defer rows.Close()

	var courses []*core.Course
	skipped := 0
	for rows.Next() {
		var (
			id   string
			data sql.NullString
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
		}
		if !data.Valid {
			logger.Warn("could not parse course data", "id", id, "err", "null course_data")
			skipped++
			continue
		}
		course, err := ParseCourse(id, []byte(data.String))
		if err != nil {
			logger.Warn("could not parse course data", "id", id, "err", err)
			skipped++
			continue
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
	}

	logger.Info("loaded courses from database", "table", table, "courses", len(courses), "skipped", skipped)
	return courses, nil
}
