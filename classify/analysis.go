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


package classify

import "context"

// Intent categorizes what a query is asking for.
type Intent string

const (
	// IntentGreeting is a social opener with no information need.
	IntentGreeting Intent = "GREETING"
	// IntentInappropriate is a query matching the unsafe-content denylist.
	IntentInappropriate Intent = "INAPPROPRIATE"
	// IntentHowTo is an instructional query asking for steps or methods.
	IntentHowTo Intent = "HOW_TO"
	// IntentQuestion is the default informational intent.
	IntentQuestion Intent = "QUESTION"
)

// Complexity grades how much material a query likely needs.
type Complexity string

const (
	ComplexitySimple  Complexity = "SIMPLE"
	ComplexityComplex Complexity = "COMPLEX"
)

// QueryAnalysis is the classification verdict for one query.
type QueryAnalysis struct {
	Intent          Intent
	Complexity      Complexity
	IsGreeting      bool
	IsUnsafe        bool
	IsInstructional bool
	Confidence      float64
}

// ShouldSkip reports whether retrieval should short-circuit without
// embedding or searching. Greetings need no passages; unsafe queries must
// never reach the store.
func (a QueryAnalysis) ShouldSkip() bool {
	return a.IsGreeting || a.IsUnsafe
}

// Classifier analyzes a query. Implementations never fail: a classifier
// that cannot produce a verdict must degrade to a heuristic one.
type Classifier interface {
	Classify(ctx context.Context, query string) QueryAnalysis
}
