package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/segment"
	"github.com/poiesic/recallit/storage"
)

// DefaultBatchSize is the number of passages embedded per provider call.
const DefaultBatchSize = 16

// Pipeline orchestrates the ingestion of documents into owner collections.
// It manages concurrent segmentation and embedding of documents.
type Pipeline struct {
	repository storage.PassageRepository
	embedder   ai.Embedder
	segmenter  *segment.Segmenter
	pool       *ants.Pool
	batchSize  int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent document processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many passages are embedded per provider call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithSegmenter sets a custom segmenter.
// Default is segment.NewSegmenter().
func WithSegmenter(segmenter *segment.Segmenter) Option {
	return func(p *Pipeline) error {
		if segmenter != nil {
			p.segmenter = segmenter
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingest")
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repository storage.PassageRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		embedder:   provider.Embedder(),
		segmenter:  segment.NewSegmenter(),
		pool:       pool,
		batchSize:  DefaultBatchSize,
		logger:     slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Report summarizes the outcome of an ingestion run.
type Report struct {
	Documents int // documents successfully ingested
	Passages  int // passages stored across all documents
	Skipped   int // documents skipped due to errors
}

// IngestDirectory reads the supported files in dir and ingests each as one
// document owned by owner. The file name becomes the document source.
// Returns ErrNoDocuments if the directory contains no supported files.
func (p *Pipeline) IngestDirectory(ctx context.Context, owner, dir string) (*Report, error) {
	docs, unreadable, err := readDocuments(owner, dir, p.logger)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no supported files in %s", ErrNoDocuments, dir)
	}

	report, err := p.IngestDocuments(ctx, docs)
	if err != nil {
		return nil, err
	}
	report.Skipped += unreadable
	return report, nil
}

// IngestDocuments ingests the given documents concurrently. Each document is
// segmented, embedded, and upserted into its owner collection. Documents
// that fail are logged and skipped; the batch continues.
func (p *Pipeline) IngestDocuments(ctx context.Context, docs []*core.Document) (*Report, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	var (
		report Report
		mu     sync.Mutex
		wg     sync.WaitGroup
	)

	for _, doc := range docs {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			count, err := p.ingestDocument(ctx, doc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Error("skipping document",
					"owner", doc.Owner, "source", doc.Source, "err", err)
				report.Skipped++
				return
			}
			report.Documents++
			report.Passages += count
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			p.logger.Error("failed to submit document",
				"owner", doc.Owner, "source", doc.Source, "err", submitErr)
			report.Skipped++
			mu.Unlock()
		}
	}

	wg.Wait()

	p.logger.Info("ingestion complete",
		"documents", report.Documents,
		"passages", report.Passages,
		"skipped", report.Skipped)

	return &report, nil
}

// RebuildOwner deletes the owner collection and re-ingests the directory
// from scratch. Use this when document sources have changed shape and the
// content-derived passage IDs would otherwise leave stale chunks behind.
func (p *Pipeline) RebuildOwner(ctx context.Context, owner, dir string) (*Report, error) {
	if err := p.repository.DeleteOwner(ctx, owner); err != nil {
		return nil, err
	}
	return p.IngestDirectory(ctx, owner, dir)
}

// ingestDocument segments, embeds, and stores a single document.
// Returns the number of passages stored.
func (p *Pipeline) ingestDocument(ctx context.Context, doc *core.Document) (int, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return 0, err
	}

	passages := p.segmenter.Segment(doc.Owner, doc.Source, doc.Text)
	if len(passages) == 0 {
		return 0, fmt.Errorf("%w: document %q produced no passages", core.ErrEmptyText, doc.Source)
	}

	p.logger.Debug("embedding document passages",
		"owner", doc.Owner, "source", doc.Source, "passages", len(passages))

	for start := 0; start < len(passages); start += p.batchSize {
		end := min(start+p.batchSize, len(passages))

		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = passages[i].Contents
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return 0, err
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vectors))
		}

		for i := range vectors {
			passages[start+i].Vector = ai.NormalizeVector(vectors[i])
		}
	}

	stored := make([]*core.Passage, len(passages))
	for i := range passages {
		stored[i] = &passages[i]
	}

	if _, err := p.repository.AddPassages(ctx, stored...); err != nil {
		return 0, err
	}

	return len(stored), nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
