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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidPassage indicates a Passage failed validation.
	ErrInvalidPassage = errors.New("invalid passage")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyText indicates text submitted for segmentation or embedding is
	// empty or whitespace-only.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyQuery indicates a retrieval query is empty or whitespace-only.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyOwner indicates the owner identifier is missing.
	ErrEmptyOwner = errors.New("owner cannot be empty")

	// ErrEmptySource indicates the source label is missing.
	ErrEmptySource = errors.New("source cannot be empty")

	// ErrNegativeChunkIndex indicates a passage position below zero.
	ErrNegativeChunkIndex = errors.New("chunk index cannot be negative")
)
