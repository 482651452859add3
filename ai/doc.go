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

// Package ai provides abstractions for the embedding service used by coursefind.
//
// The package defines the Embedder and AIProvider interfaces so that catalog
// embedding and query search depend on an abstraction rather than a vendor
// client. It also carries the service-facing policy shared by every caller:
//
//   - Config: endpoint, model, dimension, retry budget and cache size
//   - RetryWithBackoff: bounded exponential backoff that stops early on
//     errors marked terminal
//   - CachedEmbedder: a FIFO memo of query embeddings in front of any Embedder
//   - EmbeddingServiceError: the error surfaced once retries are exhausted
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types. Test constructors (mock.NewMockEmbedder) return concrete
// types so tests can inject behavior and assert on call counts.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithAPIKey(key)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	embedder := ai.NewCachedEmbedderFromConfig(provider.Embedder(), provider.Config())
//	vector, err := embedder.EmbedText(ctx, "climate policy seminar")
package ai
