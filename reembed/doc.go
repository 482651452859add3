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

// Package reembed computes and persists embeddings for the course catalog.
//
// Courses are embedded in batches on a worker pool, with retry and
// exponential backoff around each embedding call and an optional rate limit
// shared by all workers. Vectors are normalized before they are stored.
// By default only courses without a stored vector for the current model are
// embedded.
package reembed
