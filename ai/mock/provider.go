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

package mock

import "github.com/poiesic/coursefind/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	embedder *MockEmbedder
	config   *ai.Config
}

var _ ai.AIProvider = (*MockProvider)(nil)

// NewMockProvider creates a provider whose embedder matches the default
// mock dimension.
func NewMockProvider() *MockProvider {
	return NewMockProviderWithEmbedder(NewMockEmbedder())
}

// NewMockProviderWithEmbedder creates a provider around an existing mock.
func NewMockProviderWithEmbedder(embedder *MockEmbedder) *MockProvider {
	return &MockProvider{
		embedder: embedder,
		config: ai.NewConfig(
			ai.WithEmbeddingModel("mock-embedding"),
			ai.WithDimension(embedder.dimension()),
			ai.WithRetry(1, 0),
		),
	}
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *MockProvider) Config() *ai.Config {
	return p.config
}

func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock for assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}
