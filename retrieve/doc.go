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

// Package retrieve provides strategy-driven semantic retrieval over owner
// collections.
//
// The Retriever type implements a multi-stage retrieval flow:
//   - Classifying the query for intent and complexity
//   - Selecting a retrieval strategy (or skipping retrieval entirely)
//   - Embedding the query and searching the owner collection
//
// Greetings and unsafe queries short-circuit before any embedding call is
// made. Results are ranked by cosine similarity.
package retrieve
