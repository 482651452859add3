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

// Package catalog reads course catalogs from external sources.
//
// Two sources are supported: a JSON document mapping course id to course
// object, and a SQL table of (id, course_data) rows holding the same objects.
// Source fields are loosely typed; a scalar where a list is expected becomes a
// one-element list, and numbers and strings are accepted interchangeably.
package catalog

import "errors"

// ErrCatalogLoad is returned when a catalog source is missing or malformed.
var ErrCatalogLoad = errors.New("catalog load failed")
