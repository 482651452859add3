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

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/coursefind"
	"github.com/poiesic/coursefind/card"
	"github.com/poiesic/coursefind/catalog"
	"github.com/poiesic/coursefind/core"
	"github.com/poiesic/coursefind/reembed"
	"github.com/poiesic/coursefind/search"
)

type commands struct {
	extra []coursefind.Option
}

// config resolves the config file and global flag overrides.
func (cmds *commands) config(c *cli.Context) (*coursefind.Config, error) {
	cfg := coursefind.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := coursefind.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if db := c.String("db"); db != "" {
		cfg.Database = db
	}
	cfg.ApplyEnv()
	if host := c.String("embedding-host"); host != "" {
		cfg.AI.EmbeddingHost = host
	}
	if model := c.String("embedding-model"); model != "" {
		cfg.AI.EmbeddingModel = model
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cmds *commands) open(c *cli.Context, opts ...coursefind.Option) (*coursefind.Engine, *coursefind.Config, error) {
	cfg, err := cmds.config(c)
	if err != nil {
		return nil, nil, err
	}
	all := append(cfg.Options(), coursefind.WithLogger(slog.Default()))
	all = append(all, opts...)
	all = append(all, cmds.extra...)
	engine, err := coursefind.Open(cfg.Database, all...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return engine, cfg, nil
}

func (cmds *commands) importCourses(c *cli.Context) error {
	ctx := c.Context
	var courses []*core.Course

	switch {
	case c.String("sql") != "":
		db, err := catalog.OpenSQL(c.String("sql"))
		if err != nil {
			return err
		}
		defer db.Close()
		if courses, err = catalog.LoadSQL(ctx, db, c.String("table"), slog.Default()); err != nil {
			return err
		}
	case c.Args().Len() == 1:
		var err error
		if courses, err = catalog.LoadFile(c.Args().First(), slog.Default()); err != nil {
			return err
		}
	default:
		return errors.New("import needs a catalog JSON file or --sql")
	}

	engine, _, err := cmds.open(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.ImportCourses(ctx, courses, c.Bool("replace")); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Imported %d courses\n", len(courses))
	return nil
}

func (cmds *commands) embed(c *cli.Context) error {
	engine, cfg, err := cmds.open(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	run := reembed.DefaultConfig()
	if cfg.Reembed != nil {
		*run = *cfg.Reembed
	}
	run.All = c.Bool("all")
	if c.IsSet("batch-size") {
		run.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("workers") {
		run.Workers = c.Int("workers")
	}
	if c.IsSet("rps") {
		run.RequestsPerSecond = c.Float64("rps")
	}
	if c.IsSet("report-interval") {
		run.ReportInterval = c.Int("report-interval")
	}
	if c.IsSet("max-retries") {
		run.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-delay") {
		run.RetryDelay = c.Duration("retry-delay")
	}
	if run.BatchSize <= 0 {
		return errors.New("batch-size must be greater than 0")
	}
	if run.MaxRetries <= 0 {
		return errors.New("max-retries must be greater than 0")
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)

	result, err := engine.Reembed(c.Context, run, c.App.ErrWriter)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Embedded %d courses, %d already up to date\n", result.Embedded, result.Skipped)
	return nil
}

func (cmds *commands) search(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("search needs a query")
	}
	strategy, err := search.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	var opts []coursefind.Option
	if c.Bool("metrics") {
		reg = prometheus.NewRegistry()
		opts = append(opts, coursefind.WithRegisterer(reg))
	}
	engine, _, err := cmds.open(c, opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Load(c.Context); err != nil {
		return err
	}

	resp, err := engine.HybridSearchWith(c.Context, query, filtersFrom(c), c.Int("top-k"), strategy)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		err = writeJSON(c.App.Writer, resp)
	} else {
		writeResponse(c.App.Writer, resp)
	}
	if err != nil {
		return err
	}
	if reg != nil {
		return writeMetrics(c.App.ErrWriter, reg)
	}
	return nil
}

func (cmds *commands) show(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("show needs exactly one course id")
	}
	engine, _, err := cmds.open(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	course, err := engine.Course(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, course)
	}
	writeCard(c.App.Writer, 0, course)
	return nil
}

func (cmds *commands) status(c *cli.Context) error {
	engine, cfg, err := cmds.open(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Load(c.Context); err != nil && !errors.Is(err, coursefind.ErrNoEmbeddings) {
		return err
	}
	status, err := engine.Status(c.Context)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Database:   %s\n", cfg.Database)
	fmt.Fprintf(w, "Courses:    %d\n", status.Courses)
	fmt.Fprintf(w, "Embedded:   %d\n", status.Embedded)
	if status.Model != "" {
		fmt.Fprintf(w, "Model:      %s (%d dimensions)\n", status.Model, status.Dimension)
	}
	if status.IndexKind != "" {
		fmt.Fprintf(w, "Index:      %s\n", status.IndexKind)
	} else {
		fmt.Fprintf(w, "Index:      not built\n")
	}
	return nil
}

func filtersFrom(c *cli.Context) core.Filters {
	flags := map[string]core.FilterField{
		"concentration": core.FilterConcentration,
		"gen-ed":        core.FilterGenEds,
		"term":          core.FilterTerm,
		"class-time":    core.FilterClassTimes,
		"difficulty":    core.FilterDifficulty,
		"professor":     core.FilterProfessor,
	}
	filters := core.Filters{}
	for flag, field := range flags {
		if values := c.StringSlice(flag); len(values) > 0 {
			filters[field] = values
		}
	}
	return filters
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeResponse(w io.Writer, resp *coursefind.Response) {
	if resp.FilterMessage != "" {
		fmt.Fprintln(w, resp.FilterMessage)
		return
	}
	if resp.FilterApplied {
		fmt.Fprintf(w, "%d courses match the filters (plan: %s)\n\n", resp.TotalMatches, resp.Strategy)
	}
	for i := range resp.Cards {
		writeCard(w, i+1, &resp.Cards[i])
	}
}

func writeCard(w io.Writer, rank int, c *card.Card) {
	if rank > 0 {
		fmt.Fprintf(w, "%d. %s [%s] (%.3f)\n", rank, c.Title, c.Id, c.SimilarityScore)
	} else {
		fmt.Fprintf(w, "%s [%s]\n", c.Title, c.Id)
	}
	fmt.Fprintf(w, "   %s", c.Professor)
	if c.Term != "" {
		fmt.Fprintf(w, ", %s", c.Term)
	}
	if c.Concentration != "" {
		fmt.Fprintf(w, " | %s", c.Concentration)
	}
	fmt.Fprintln(w)
	if len(c.GenEds) > 0 {
		fmt.Fprintf(w, "   Gen eds: %s\n", strings.Join(c.GenEds, ", "))
	}
	if rank == 0 && c.Description != "" {
		fmt.Fprintf(w, "   %s\n", c.Description)
	}
	fmt.Fprintf(w, "   %s\n\n", c.QGuideSummary)
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
