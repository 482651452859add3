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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/coursefind"
	"github.com/poiesic/coursefind/reembed"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI. extra options are applied to every engine the
// commands open.
func newApp(extra ...coursefind.Option) *cli.App {
	cmds := &commands{extra: extra}
	return &cli.App{
		Name:  "coursefind",
		Usage: "Hybrid semantic and metadata search over a course catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL (overrides config)",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name (overrides config)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import courses from a JSON file or a SQL table",
				ArgsUsage: "[catalog.json]",
				Action:    cmds.importCourses,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "sql",
						Usage: "SQL DSN to read courses from (postgres:// URL or SQLite path)",
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "Table holding id and course_data columns",
						Value: "courses",
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Delete stored courses that are not in the import",
					},
				},
			},
			{
				Name:   "embed",
				Usage:  "Compute missing course embeddings and rebuild the index",
				Action: cmds.embed,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Re-embed every course, not only those without a vector",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of courses sent in each embedding request",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of batches embedded concurrently",
					},
					&cli.Float64Flag{
						Name:  "rps",
						Usage: "Maximum embedding requests per second (0 for no limit)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N courses",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts for each embedding request",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the catalog",
				ArgsUsage: "<query>",
				Action:    cmds.search,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results",
						Value:   5,
					},
					&cli.StringSliceFlag{Name: "concentration", Usage: "Filter by concentration"},
					&cli.StringSliceFlag{Name: "gen-ed", Usage: "Filter by gen ed requirement"},
					&cli.StringSliceFlag{Name: "term", Usage: "Filter by term"},
					&cli.StringSliceFlag{Name: "class-time", Usage: "Filter by class time"},
					&cli.StringSliceFlag{Name: "difficulty", Usage: "Filter by difficulty"},
					&cli.StringSliceFlag{Name: "professor", Usage: "Filter by professor name substring"},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Filtered search plan (auto, sub_index, over_fetch)",
						Value: "auto",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the response as JSON",
					},
					&cli.BoolFlag{
						Name:  "metrics",
						Usage: "Print search and cache metrics after the results",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Show one course",
				ArgsUsage: "<course-id>",
				Action:    cmds.show,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the course card as JSON",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show catalog, embedding and index state",
				Action: cmds.status,
			},
		},
	}
}

// setup loads the env file and configures logging.
func setup(c *cli.Context) error {
	if path := c.String("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
