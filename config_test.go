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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coursefind/ai"
	"github.com/poiesic/coursefind/search"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coursefind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ai.DefaultEmbeddingModel, cfg.AI.EmbeddingModel)
	assert.Equal(t, search.DefaultSelectivity, cfg.Search.Selectivity)
	assert.Equal(t, search.DefaultOverFetchFactor, cfg.Search.OverFetchFactor)
	assert.NotNil(t, cfg.Reembed)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(APIKeyEnv, "sk-test")
	t.Setenv("COURSEFIND_DATA", "/srv/coursefind")

	path := writeConfig(t, `
database: ${COURSEFIND_DATA}/db
ai:
  embedding_host: http://localhost:11434
  embedding_model: nomic-embed-text
  dimension: 768
search:
  selectivity: 0.5
  query_timeout: 3s
reembed:
  batch_size: 25
  requests_per_second: 2.5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/coursefind/db", cfg.Database)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.EmbeddingHost)
	assert.Equal(t, "nomic-embed-text", cfg.AI.EmbeddingModel)
	assert.Equal(t, 768, cfg.AI.Dimension)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, ai.DefaultMaxAttempts, cfg.AI.MaxAttempts)
	assert.Equal(t, 0.5, cfg.Search.Selectivity)
	assert.Equal(t, search.DefaultOverFetchFactor, cfg.Search.OverFetchFactor)
	assert.Equal(t, 3*time.Second, cfg.Search.QueryTimeout)
	assert.Equal(t, 25, cfg.Reembed.BatchSize)
	assert.Equal(t, 2.5, cfg.Reembed.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Reembed.MaxRetries)
	assert.Len(t, cfg.Options(), 3)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "database: [unterminated"},
		{"selectivity out of range", "search:\n  selectivity: 1.5\n"},
		{"over-fetch factor", "search:\n  over_fetch_factor: 0\n"},
		{"empty database", "database: \"\"\n"},
		{"bad dimension", "ai:\n  dimension: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
