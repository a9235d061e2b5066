package ingest

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/recallit/ai/mock"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/segment"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.PassageRepository) {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	pipeline, err := NewPipeline(repo, mock.NewMockProvider(), opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, repo
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestNewPipeline_Validation(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewPipeline(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewPipeline(repo, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func TestIngestDocuments(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	docs := []*core.Document{
		{Owner: "aria", Source: "bio.txt", Text: "Aria grew up by the sea. She paints every morning."},
		{Owner: "aria", Source: "work.txt", Text: "Aria teaches pottery at the studio downtown."},
	}

	report, err := pipeline.IngestDocuments(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 0, report.Skipped)
	assert.Greater(t, report.Passages, 0)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Passages, stats["aria"])
}

func TestIngestDocuments_Empty(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	_, err := pipeline.IngestDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestIngestDocuments_SkipsFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		for _, text := range texts {
			if strings.Contains(text, "poison") {
				return nil, errors.New("embedder unavailable")
			}
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	pipeline, err := NewPipeline(repo, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	docs := []*core.Document{
		{Owner: "aria", Source: "good.txt", Text: "A perfectly ordinary document."},
		{Owner: "aria", Source: "bad.txt", Text: "This one is poison for the embedder."},
		{Owner: "aria", Source: "invalid.txt", Text: "   "},
	}

	report, err := pipeline.IngestDocuments(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 2, report.Skipped)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats["aria"])
}

func TestIngestDirectory(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, dir, "bio.txt", "Aria grew up by the sea.")
	writeFile(t, dir, "notes.md", "She teaches pottery downtown.")
	writeFile(t, dir, "config.json", `{"ignored": true}`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	report, err := pipeline.IngestDirectory(ctx, "aria", dir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 0, report.Skipped)

	owners, err := repo.Owners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"aria"}, owners)
}

func TestIngestDirectory_NoDocuments(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	_, err := pipeline.IngestDirectory(context.Background(), "aria", t.TempDir())
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestIngestDirectory_Reingest(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, dir, "bio.txt", "Aria grew up by the sea. She paints every morning.")

	first, err := pipeline.IngestDirectory(ctx, "aria", dir)
	require.NoError(t, err)

	// Same files again. Content-derived IDs make this an upsert.
	second, err := pipeline.IngestDirectory(ctx, "aria", dir)
	require.NoError(t, err)
	assert.Equal(t, first.Passages, second.Passages)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Passages, stats["aria"])
}

func TestIngestDirectory_LargeDocuments(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	sentence := "The studio smells of clay and linseed oil in the early morning hours. "
	large := strings.Repeat(sentence, 50) // well over 3000 characters

	dir := t.TempDir()
	writeFile(t, dir, "one.txt", large)
	writeFile(t, dir, "two.txt", large)
	writeFile(t, dir, "three.txt", large)

	report, err := pipeline.IngestDirectory(ctx, "aria", dir)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Documents)
	assert.GreaterOrEqual(t, report.Passages, 9, "each large document should split into multiple passages")

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Passages, stats["aria"])
}

func TestIngestNormalizesVectors(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{3, 4} // magnitude 5
		}
		return vectors, nil
	}

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	pipeline, err := NewPipeline(repo, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	_, err = pipeline.IngestDocuments(ctx, []*core.Document{
		{Owner: "aria", Source: "bio.txt", Text: "Short text."},
	})
	require.NoError(t, err)

	passage, err := repo.GetPassage(ctx, "aria", core.IDFromContent("bio.txt_0"))
	require.NoError(t, err)
	require.Len(t, passage.Vector, 2)

	var norm float64
	for _, v := range passage.Vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestIngestBatchesEmbeddings(t *testing.T) {
	var calls int
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		assert.LessOrEqual(t, len(texts), 2)
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	segmenter := segment.NewSegmenter(segment.WithMaxPassageSize(40), segment.WithOverlap(0))
	pipeline, err := NewPipeline(repo, mock.NewMockProviderWithEmbedder(embedder),
		WithBatchSize(2), WithSegmenter(segmenter), WithPoolSize(1))
	require.NoError(t, err)
	defer pipeline.Release()

	text := "One short sentence here. Another short sentence. A third one follows. And a fourth sentence. Finally a fifth."
	report, err := pipeline.IngestDocuments(context.Background(), []*core.Document{
		{Owner: "aria", Source: "bio.txt", Text: text},
	})
	require.NoError(t, err)
	require.Greater(t, report.Passages, 2)
	assert.Greater(t, calls, 1, "passages should be embedded across multiple batches")
}

func TestRebuildOwner(t *testing.T) {
	pipeline, repo := newTestPipeline(t)
	ctx := context.Background()

	oldDir := t.TempDir()
	writeFile(t, oldDir, "old.txt", "Old material that should disappear.")

	_, err := pipeline.IngestDirectory(ctx, "aria", oldDir)
	require.NoError(t, err)

	newDir := t.TempDir()
	writeFile(t, newDir, "new.txt", "Fresh material replacing everything.")

	report, err := pipeline.RebuildOwner(ctx, "aria", newDir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)

	_, err = repo.GetPassage(ctx, "aria", core.IDFromContent("old.txt_0"))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.GetPassage(ctx, "aria", core.IDFromContent("new.txt_0"))
	assert.NoError(t, err)
}
