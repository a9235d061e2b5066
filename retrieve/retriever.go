package retrieve

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/classify"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

// Retriever provides strategy-driven semantic retrieval over owner collections.
type Retriever struct {
	repository storage.PassageRepository
	embedder   ai.Embedder
	classifier classify.Classifier
	logger     *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithClassifier sets a custom query classifier.
// Default is the heuristic classifier.
func WithClassifier(classifier classify.Classifier) Option {
	return func(r *Retriever) error {
		if classifier != nil {
			r.classifier = classifier
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retrieve")
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	repository storage.PassageRepository,
	provider ai.Provider,
	opts ...Option,
) (*Retriever, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	r := &Retriever{
		repository: repository,
		embedder:   provider.Embedder(),
		classifier: classify.NewHeuristicClassifier(),
		logger:     slog.Default().With("component", "retrieve"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve finds the passages in the owner collection most relevant to the
// query. The query is classified first; greetings and unsafe queries return
// a skip result with zero passages and no embedding call.
func (r *Retriever) Retrieve(ctx context.Context, query, owner string) (*core.RetrievalResult, error) {
	return r.RetrieveWithMonitor(ctx, query, owner, nil)
}

// RetrieveWithMonitor retrieves with monitoring. The monitor receives
// callbacks at each stage of the retrieval process.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query, owner string, monitor RetrievalMonitor) (*core.RetrievalResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, core.ErrEmptyQuery
	}

	monitor.Start(query, owner)

	analysis := r.classifier.Classify(ctx, query)
	monitor.AfterClassification(analysis)

	strategy, limit := selectStrategy(analysis)
	if strategy == StrategySkip {
		r.logger.Debug("skipping retrieval",
			"query", query, "intent", analysis.Intent)
		monitor.Skipped(strategy)

		result := &core.RetrievalResult{
			Query:    query,
			Owner:    owner,
			Strategy: string(strategy),
			Passages: []*core.ScoredPassage{},
		}
		monitor.Finish(result)
		return result, nil
	}

	vector, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	monitor.AfterQueryEmbedding(vector)

	matches, err := r.repository.FindSimilar(ctx, owner, vector, limit)
	if err != nil {
		r.logger.Error("error querying for similar passages", "owner", owner, "err", err)
		return nil, err
	}
	monitor.AfterSimilaritySearch(matches)

	result := &core.RetrievalResult{
		Query:      query,
		Owner:      owner,
		Strategy:   string(strategy),
		Passages:   matches,
		TotalCount: len(matches),
	}
	monitor.Finish(result)
	return result, nil
}

// RetrieveBest searches every owner collection and merges the ranked lists,
// returning the passages nearest to the query across all owners. The result
// Owner is the owner of the best match, or empty when nothing matched.
func (r *Retriever) RetrieveBest(ctx context.Context, query string) (*core.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, core.ErrEmptyQuery
	}

	analysis := r.classifier.Classify(ctx, query)
	strategy, limit := selectStrategy(analysis)
	if strategy == StrategySkip {
		return &core.RetrievalResult{
			Query:    query,
			Strategy: string(strategy),
			Passages: []*core.ScoredPassage{},
		}, nil
	}

	vector, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	owners, err := r.repository.Owners(ctx)
	if err != nil {
		return nil, err
	}

	var merged []*core.ScoredPassage
	for _, owner := range owners {
		matches, err := r.repository.FindSimilar(ctx, owner, vector, limit)
		if err != nil {
			r.logger.Error("error searching owner collection", "owner", owner, "err", err)
			return nil, err
		}
		merged = append(merged, matches...)
	}

	slices.SortFunc(merged, func(a, b *core.ScoredPassage) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	result := &core.RetrievalResult{
		Query:      query,
		Strategy:   string(strategy),
		Passages:   merged,
		TotalCount: len(merged),
	}
	if len(merged) > 0 {
		result.Owner = merged[0].Passage.Owner
	}
	return result, nil
}

// embedQuery embeds and normalizes the query text.
func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	return ai.NormalizeVector(embedding), nil
}
