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


// Package segment turns source documents into semantic passages.
//
// Text is normalized, split at sentence boundaries, and greedily packed into
// passages of bounded size. Consecutive passages share a suffix of the
// previous passage so that context survives the cut. Segmentation is eager
// and deterministic: the same text always produces the same passages.
package segment

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/poiesic/recallit/core"
)

const (
	// DefaultMaxPassageSize is the character budget for a single passage.
	DefaultMaxPassageSize = 1000

	// DefaultOverlap is the character budget for the suffix carried from one
	// passage into the next.
	DefaultOverlap = 200

	// tokenEncoding is the BPE encoding used for token counts.
	tokenEncoding = "cl100k_base"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	strayChars     = regexp.MustCompile(`[^\w\s.,!?;:()\-"]`)
	sentenceEnds   = regexp.MustCompile(`[.!?]+\s+`)
)

// Segmenter splits document text into overlapping passages.
// It is stateless after construction and safe for concurrent use.
type Segmenter struct {
	maxPassageSize int
	overlap        int
	encoder        *tiktoken.Tiktoken
	logger         *slog.Logger
}

// Option is a functional option for configuring a Segmenter.
type Option func(*Segmenter)

// WithMaxPassageSize sets the passage character budget.
func WithMaxPassageSize(size int) Option {
	return func(s *Segmenter) {
		if size > 0 {
			s.maxPassageSize = size
		}
	}
}

// WithOverlap sets the overlap character budget.
func WithOverlap(overlap int) Option {
	return func(s *Segmenter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// NewSegmenter creates a Segmenter with the default budgets, applying any
// options. Token counting uses the cl100k_base encoding when it is
// available; otherwise counts are approximated from character length.
func NewSegmenter(opts ...Option) *Segmenter {
	s := &Segmenter{
		maxPassageSize: DefaultMaxPassageSize,
		overlap:        DefaultOverlap,
		logger:         slog.Default().With("component", "segmenter"),
	}
	for _, opt := range opts {
		opt(s)
	}

	encoder, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		s.logger.Warn("token encoding unavailable, approximating token counts",
			"encoding", tokenEncoding, "error", err)
	} else {
		s.encoder = encoder
	}

	return s
}

// Segment splits text from the named source into passages for the given
// owner. Empty or whitespace-only text yields zero passages. A single
// sentence larger than the passage budget is kept whole rather than split
// mid-sentence.
func (s *Segmenter) Segment(owner, source, text string) []core.Passage {
	cleaned := cleanText(text)
	if cleaned == "" {
		return nil
	}

	sentences := splitSentences(cleaned)
	if len(sentences) == 0 {
		return nil
	}

	var (
		passages []core.Passage
		current  string
	)
	flush := func() {
		passages = append(passages, s.newPassage(owner, source, len(passages), current))
	}

	for _, sentence := range sentences {
		switch {
		case current == "":
			current = sentence
		case len(current)+len(sentence)+1 <= s.maxPassageSize:
			current += " " + sentence
		default:
			flush()
			// Seed the next passage with the overlap suffix, unless doing so
			// would push it past the budget on its own.
			suffix := s.overlapSuffix(current)
			if suffix != "" && len(suffix)+len(sentence)+1 <= s.maxPassageSize {
				current = suffix + " " + sentence
			} else {
				current = sentence
			}
		}
	}
	if strings.TrimSpace(current) != "" {
		flush()
	}

	return passages
}

func (s *Segmenter) newPassage(owner, source string, index int, contents string) core.Passage {
	p := core.Passage{
		Owner:      owner,
		Source:     source,
		ChunkIndex: index,
		Contents:   contents,
		WordCount:  len(strings.Fields(contents)),
		CharCount:  len(contents),
		TokenCount: s.countTokens(contents),
	}
	p.Id = core.IDFromContent(p.ChunkID())
	return p
}

func (s *Segmenter) countTokens(text string) int {
	if s.encoder == nil {
		// Rough heuristic: one token per four characters of English text.
		return (len(text) + 3) / 4
	}
	return len(s.encoder.Encode(text, nil, nil))
}

// overlapSuffix returns the longest word-aligned suffix of text that fits
// the overlap budget, counting one byte of joining space per word.
func (s *Segmenter) overlapSuffix(text string) string {
	if s.overlap <= 0 {
		return ""
	}

	words := strings.Fields(text)
	total := 0
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		if total+len(words[i])+1 > s.overlap {
			break
		}
		total += len(words[i]) + 1
		start = i
	}
	if start == len(words) {
		return ""
	}
	return strings.Join(words[start:], " ")
}

// cleanText collapses whitespace runs to single spaces and drops characters
// outside the word, whitespace and basic punctuation set.
func cleanText(text string) string {
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = strayChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// splitSentences splits cleaned text at runs of sentence-ending punctuation
// followed by whitespace. The punctuation stays with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceEnds.FindAllStringIndex(text, -1) {
		seg := strings.TrimSpace(text[last:loc[1]])
		if seg != "" {
			sentences = append(sentences, seg)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
