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

package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Defaults match the hosted embedding model the course catalog was embedded with.
const (
	DefaultEmbeddingHost  = "https://api.openai.com/v1"
	DefaultEmbeddingModel = "text-embedding-ada-002"
	DefaultDimension      = 1536
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = time.Second
	DefaultCacheSize      = 100
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string `yaml:"embedding_host"`

	// EmbeddingModel is the model identifier to use for text embeddings.
	EmbeddingModel string `yaml:"embedding_model"`

	// APIKey authenticates against the embedding service. It is never read
	// from config files; callers take it from the environment.
	APIKey string `yaml:"-"`

	// Dimension is the length of vectors produced by EmbeddingModel.
	Dimension int `yaml:"dimension"`

	// MaxAttempts bounds calls to the service per embedding request.
	MaxAttempts int `yaml:"max_attempts"`

	// BaseDelay is the first retry delay. It doubles on each further attempt.
	BaseDelay time.Duration `yaml:"base_delay"`

	// CacheSize is the capacity of the query embedding cache.
	CacheSize int `yaml:"cache_size"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAPIKey sets the service credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithDimension sets the expected embedding dimension.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// WithRetry sets the attempt budget and the first backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = maxAttempts
		c.BaseDelay = baseDelay
	}
}

// WithCacheSize sets the query embedding cache capacity.
func WithCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.CacheSize = size
	}
}

// DefaultConfig returns a Config for the hosted OpenAI embedding API.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:  DefaultEmbeddingHost,
		EmbeddingModel: DefaultEmbeddingModel,
		Dimension:      DefaultDimension,
		MaxAttempts:    DefaultMaxAttempts,
		BaseDelay:      DefaultBaseDelay,
		CacheSize:      DefaultCacheSize,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("nomic-embed-text"),
//	    WithDimension(768),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the host if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("ai config: Dimension must be positive, got %d", c.Dimension)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("ai config: MaxAttempts must be positive, got %d", c.MaxAttempts)
	}
	if c.BaseDelay < 0 {
		return errors.New("ai config: BaseDelay must not be negative")
	}
	return nil
}
