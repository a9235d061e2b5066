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

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// DefaultClassifyTimeout bounds one model classification round trip.
// The heuristic fallback makes a tight bound safe.
const DefaultClassifyTimeout = 10 * time.Second

// modelVerdict is the JSON shape the model is prompted to return.
type modelVerdict struct {
	Intent          string  `json:"intent"`
	Complexity      string  `json:"complexity"`
	IsGreeting      bool    `json:"is_greeting"`
	IsUnsafe        bool    `json:"is_unsafe"`
	IsInstructional bool    `json:"is_instructional"`
	Confidence      float64 `json:"confidence"`
}

// ModelClassifier asks an LLM to classify the query and falls back to the
// heuristic classifier whenever the model call or its output is unusable.
type ModelClassifier struct {
	client   llms.Model
	fallback *HeuristicClassifier
	timeout  time.Duration
	logger   *slog.Logger
}

// ModelOption is a functional option for configuring a ModelClassifier.
type ModelOption func(*ModelClassifier)

// WithClassifyTimeout sets the per-call model timeout.
func WithClassifyTimeout(d time.Duration) ModelOption {
	return func(c *ModelClassifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewModelClassifier creates a classifier backed by the given chat model.
func NewModelClassifier(client llms.Model, opts ...ModelOption) *ModelClassifier {
	c := &ModelClassifier{
		client:   client,
		fallback: NewHeuristicClassifier(),
		timeout:  DefaultClassifyTimeout,
		logger:   slog.Default().With("component", "model-classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify analyzes the query with the model, degrading to the heuristic
// verdict on any failure. Skip signals from the heuristic pass are
// authoritative: a greeting or unsafe query never reaches the model.
func (c *ModelClassifier) Classify(ctx context.Context, query string) QueryAnalysis {
	heuristic := c.fallback.Classify(ctx, query)
	if heuristic.ShouldSkip() {
		return heuristic
	}

	verdict, err := c.classifyWithModel(ctx, query)
	if err != nil {
		c.logger.Warn("model classification failed, using heuristic verdict", "err", err)
		return heuristic
	}
	return verdict
}

func (c *ModelClassifier) classifyWithModel(ctx context.Context, query string) (QueryAnalysis, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(classifierSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(query),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var verdict modelVerdict
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := c.client.GenerateContent(callCtx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return QueryAnalysis{}, err
		}

		if len(response.Choices) < 1 {
			return QueryAnalysis{}, errors.New("no choices returned from model")
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &verdict); err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}
	if lastErr != nil {
		return QueryAnalysis{}, fmt.Errorf("parsing classifier response: %w", lastErr)
	}

	return verdict.toAnalysis()
}

// toAnalysis validates the raw verdict and converts it to a QueryAnalysis.
func (v modelVerdict) toAnalysis() (QueryAnalysis, error) {
	intent := Intent(strings.ToUpper(strings.TrimSpace(v.Intent)))
	switch intent {
	case IntentGreeting, IntentInappropriate, IntentHowTo, IntentQuestion:
	default:
		return QueryAnalysis{}, fmt.Errorf("unknown intent %q", v.Intent)
	}

	complexity := Complexity(strings.ToUpper(strings.TrimSpace(v.Complexity)))
	switch complexity {
	case ComplexitySimple, ComplexityComplex:
	default:
		return QueryAnalysis{}, fmt.Errorf("unknown complexity %q", v.Complexity)
	}

	confidence := v.Confidence
	if confidence < 0 || confidence > 1 {
		return QueryAnalysis{}, fmt.Errorf("confidence %v out of range", v.Confidence)
	}

	return QueryAnalysis{
		Intent:          intent,
		Complexity:      complexity,
		IsGreeting:      v.IsGreeting || intent == IntentGreeting,
		IsUnsafe:        v.IsUnsafe || intent == IntentInappropriate,
		IsInstructional: v.IsInstructional || intent == IntentHowTo,
		Confidence:      confidence,
	}, nil
}
