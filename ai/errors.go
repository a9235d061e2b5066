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
	"strings"
)

var (
	// ErrEmbedding indicates the embedding provider failed for a reason
	// other than throttling. It always wraps the provider's error.
	ErrEmbedding = errors.New("embedding failed")

	// ErrRateLimited indicates the provider throttled the request.
	// Operations wrapped in RetryWithBackoff retry on this error only.
	ErrRateLimited = errors.New("embedding rate limited")

	// ErrDimensionChanged indicates the provider returned a vector whose
	// dimension differs from earlier vectors in the same session.
	ErrDimensionChanged = errors.New("embedding dimension changed")

	// ErrInvalidMaxAttempts indicates a retry configuration with no attempts.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be > 0")
)

// IsRateLimitSignal reports whether a raw provider error looks like
// throttling. OpenAI-compatible servers differ in how they surface 429s,
// so this matches on the status code and the common phrasings.
func IsRateLimitSignal(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}
