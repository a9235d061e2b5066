package openai

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
)

// fakeEmbedder implements embeddings.Embedder for tests.
type fakeEmbedder struct {
	embedFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls     int
	batches   [][]string
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, texts)
	if f.embedFunc != nil {
		return f.embedFunc(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func newTestEmbedder(fake *fakeEmbedder) *Embedder {
	return &Embedder{
		embedder:       fake,
		maxRetries:     3,
		retryBaseDelay: time.Millisecond,
		batchSize:      2,
		batchPause:     time.Millisecond,
		requestTimeout: time.Second,
		logger:         slog.Default().With("component", "openai-embedder"),
	}
}

func TestEmbedText_RejectsEmptyText(t *testing.T) {
	fake := &fakeEmbedder{}
	e := newTestEmbedder(fake)

	tests := []string{"", "   ", "\n\t"}
	for _, text := range tests {
		_, err := e.EmbedText(context.Background(), text)
		assert.ErrorIs(t, err, core.ErrEmptyText)
	}
	assert.Equal(t, 0, fake.calls, "provider must not be called for empty text")
}

func TestEmbedText_ReturnsVector(t *testing.T) {
	fake := &fakeEmbedder{}
	e := newTestEmbedder(fake)

	vec, err := e.EmbedText(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Len(t, vec, 3)
	assert.Equal(t, 1, fake.calls)
}

func TestEmbedText_RetriesOnRateLimit(t *testing.T) {
	attempts := 0
	fake := &fakeEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("API returned unexpected status code: 429")
			}
			return [][]float32{{1, 0, 0}}, nil
		},
	}
	e := newTestEmbedder(fake)

	vec, err := e.EmbedText(context.Background(), "throttled text")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, vec)
	assert.Equal(t, 3, attempts)
}

func TestEmbedText_RateLimitExhaustion(t *testing.T) {
	fake := &fakeEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("rate limit exceeded")
		},
	}
	e := newTestEmbedder(fake)

	_, err := e.EmbedText(context.Background(), "always throttled")

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrRateLimited)
	assert.Equal(t, 3, fake.calls, "should use the full attempt budget")
}

func TestEmbedText_OtherErrorsFailImmediately(t *testing.T) {
	fake := &fakeEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("connection refused")
		},
	}
	e := newTestEmbedder(fake)

	_, err := e.EmbedText(context.Background(), "some text")

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrEmbedding)
	assert.NotErrorIs(t, err, ai.ErrRateLimited)
	assert.Equal(t, 1, fake.calls, "non-throttling errors must not be retried")
}

func TestEmbedTexts_Batching(t *testing.T) {
	fake := &fakeEmbedder{}
	e := newTestEmbedder(fake)

	texts := []string{"one", "two", "three", "four", "five"}
	vecs, err := e.EmbedTexts(context.Background(), texts)

	require.NoError(t, err)
	require.Len(t, vecs, 5)
	assert.Equal(t, 3, fake.calls, "5 texts with batch size 2 should take 3 calls")
	assert.Equal(t, []string{"one", "two"}, fake.batches[0])
	assert.Equal(t, []string{"three", "four"}, fake.batches[1])
	assert.Equal(t, []string{"five"}, fake.batches[2])
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	fake := &fakeEmbedder{}
	e := newTestEmbedder(fake)

	vecs, err := e.EmbedTexts(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.Equal(t, 0, fake.calls)
}

func TestEmbedTexts_RejectsEmptyItem(t *testing.T) {
	fake := &fakeEmbedder{}
	e := newTestEmbedder(fake)

	_, err := e.EmbedTexts(context.Background(), []string{"fine", "  ", "also fine"})

	assert.ErrorIs(t, err, core.ErrEmptyText)
	assert.Equal(t, 0, fake.calls)
}

func TestEmbedTexts_NoPartialResults(t *testing.T) {
	fake := &fakeEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			if texts[0] == "three" {
				return nil, errors.New("boom")
			}
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1, 0, 0}
			}
			return out, nil
		},
	}
	e := newTestEmbedder(fake)

	vecs, err := e.EmbedTexts(context.Background(), []string{"one", "two", "three", "four"})

	require.Error(t, err)
	assert.Nil(t, vecs, "a failed batch must not yield partial results")
}

func TestEmbedder_DimensionEnforced(t *testing.T) {
	dims := []int{3, 3, 4}
	call := 0
	fake := &fakeEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			vec := make([]float32, dims[call])
			call++
			return [][]float32{vec}, nil
		},
	}
	e := newTestEmbedder(fake)

	_, err := e.EmbedText(context.Background(), "first")
	require.NoError(t, err)
	_, err = e.EmbedText(context.Background(), "second")
	require.NoError(t, err)

	_, err = e.EmbedText(context.Background(), "third")
	assert.ErrorIs(t, err, ai.ErrDimensionChanged)
}

func TestNewEmbedder_ValidatesConfig(t *testing.T) {
	cfg := ai.DefaultConfig()
	cfg.EmbeddingModel = ""

	_, err := NewEmbedder(cfg)
	assert.Error(t, err)
}
