package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// Throttled calls are retried with exponential backoff; other provider
// errors fail immediately. The vector dimension is discovered on the first
// successful call and enforced afterwards.
type Embedder struct {
	embedder       embeddings.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	batchSize      int
	batchPause     time.Duration
	requestTimeout time.Duration
	logger         *slog.Logger

	mu        sync.Mutex
	dimension int
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:       embedder,
		maxRetries:     config.MaxRetries,
		retryBaseDelay: config.RetryBaseDelay,
		batchSize:      config.BatchSize,
		batchPause:     config.BatchPause,
		requestTimeout: config.RequestTimeout,
		logger:         slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyText
	}

	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: provider returned no vectors", ai.ErrEmbedding)
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings.
// Texts are sent in fixed-size batches with a short pause between calls.
// Any batch failure aborts the whole operation.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("text %d: %w", i, core.ErrEmptyText)
		}
	}

	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		vectors, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch starting at %d: %w", start, err)
		}
		results = append(results, vectors...)

		if end < len(texts) && e.batchPause > 0 {
			timer := time.NewTimer(e.batchPause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return results, nil
}

// embedBatch performs one provider round trip under the retry policy and
// enforces the session vector dimension on the result.
func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
		defer cancel()

		result, err := e.embedder.EmbedDocuments(callCtx, texts)
		if err != nil {
			if ai.IsRateLimitSignal(err) {
				return fmt.Errorf("%w: %w", ai.ErrRateLimited, err)
			}
			return fmt.Errorf("%w: %w", ai.ErrEmbedding, err)
		}
		vectors = result
		return nil
	}

	if err := ai.RetryWithBackoff(ctx, operation, e.maxRetries, e.retryBaseDelay); err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	if err := e.checkDimension(vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (e *Embedder) checkDimension(vectors [][]float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, v := range vectors {
		if e.dimension == 0 {
			e.dimension = len(v)
			e.logger.Debug("discovered embedding dimension", "dimension", e.dimension)
			continue
		}
		if len(v) != e.dimension {
			return fmt.Errorf("%w: got %d, expected %d", ai.ErrDimensionChanged, len(v), e.dimension)
		}
	}
	return nil
}
