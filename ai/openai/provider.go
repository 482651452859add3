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

package openai

import (
	"log/slog"

	"github.com/poiesic/coursefind/ai"
)

// Provider serves course and query embeddings from an OpenAI-compatible
// endpoint.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	logger   *slog.Logger
}

var _ ai.AIProvider = (*Provider)(nil)

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger used by the provider and its embedder.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider validates config and connects an embedder to its host.
func NewProvider(config *ai.Config, opts ...ProviderOption) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	embedder.logger = p.logger.With("component", "openai-embedder")
	p.embedder = embedder
	p.logger = p.logger.With("component", "openai-provider")

	p.logger.Debug("embedding provider ready",
		"host", config.EmbeddingHost,
		"model", config.EmbeddingModel,
		"dimension", config.Dimension,
		"api_key_set", config.APIKey != "")
	return p, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) Config() *ai.Config {
	return p.config
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (p *Provider) Close() error {
	p.logger.Debug("closing provider", "model", p.config.EmbeddingModel)
	return nil
}
