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

package coursefind

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/coursefind/ai"
	"github.com/poiesic/coursefind/reembed"
	"github.com/poiesic/coursefind/search"
)

// APIKeyEnv names the environment variable holding the embedding API key.
const APIKeyEnv = "OPENAI_API_KEY"

// Config is the file form of an engine's settings.
type Config struct {
	// Database is the BadgerDB directory.
	Database string `yaml:"database"`

	AI      *ai.Config      `yaml:"ai"`
	Search  SearchConfig    `yaml:"search"`
	Reembed *reembed.Config `yaml:"reembed"`
}

// SearchConfig holds query planning settings.
type SearchConfig struct {
	Selectivity     float64       `yaml:"selectivity"`
	OverFetchFactor int           `yaml:"over_fetch_factor"`
	FilterCacheSize int           `yaml:"filter_cache_size"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Database: "coursefind.db",
		AI:       ai.DefaultConfig(),
		Search: SearchConfig{
			Selectivity:     search.DefaultSelectivity,
			OverFetchFactor: search.DefaultOverFetchFactor,
			FilterCacheSize: search.DefaultFilterCacheSize,
		},
		Reembed: reembed.DefaultConfig(),
	}
}

// LoadConfig reads a YAML config file over the defaults. Environment
// variables written as ${NAME} are expanded. The API key always comes from
// APIKeyEnv.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv fills settings that are only taken from the environment.
func (c *Config) ApplyEnv() {
	if c.AI == nil {
		c.AI = ai.DefaultConfig()
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		c.AI.APIKey = key
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path is required")
	}
	if c.AI == nil {
		return fmt.Errorf("ai section is required")
	}
	if err := c.AI.Validate(); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if c.Search.Selectivity < 0 || c.Search.Selectivity > 1 {
		return fmt.Errorf("search.selectivity must be within [0,1], got %v", c.Search.Selectivity)
	}
	if c.Search.OverFetchFactor < 1 {
		return fmt.Errorf("search.over_fetch_factor must be at least 1, got %d", c.Search.OverFetchFactor)
	}
	if c.Search.QueryTimeout < 0 {
		return fmt.Errorf("search.query_timeout cannot be negative")
	}
	if c.Reembed != nil && c.Reembed.MaxRetries <= 0 {
		return fmt.Errorf("reembed.max_retries must be positive, got %d", c.Reembed.MaxRetries)
	}
	return nil
}

// Options converts the config into engine options.
func (c *Config) Options() []Option {
	return []Option{
		WithAIConfig(c.AI),
		WithReembedConfig(c.Reembed),
		WithSearchOptions(
			search.WithSelectivity(c.Search.Selectivity),
			search.WithOverFetchFactor(c.Search.OverFetchFactor),
			search.WithFilterCacheSize(c.Search.FilterCacheSize),
			search.WithQueryTimeout(c.Search.QueryTimeout),
		),
	}
}
