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

package recallit

import (
	"log/slog"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/ai/openai"
	"github.com/poiesic/recallit/classify"
	"github.com/poiesic/recallit/ingest"
	"github.com/poiesic/recallit/retrieve"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/storage/badger"
)

// Corpus is the top-level handle over a passage store and its AI provider.
// It wires storage, embedding, and classification together and hands out
// ingestion pipelines and retrievers that share the same resources.
type Corpus struct {
	backend     *badger.Backend
	passageRepo storage.PassageRepository
	provider    ai.Provider
	classifier  classify.Classifier
	logger      *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig        *ai.Config
	provider        ai.Provider
	inMemory        bool
	modelClassifier bool
}

// WithAIConfig sets the AI provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider supplies a pre-built AI provider instead of constructing one
// from the configuration. Useful for tests with the mock provider.
func WithProvider(provider ai.Provider) CorpusOption {
	return func(o *corpusOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the store in memory instead of on disk. The filePath
// argument is ignored and nothing is persisted.
func WithInMemory() CorpusOption {
	return func(o *corpusOptions) {
		o.inMemory = true
	}
}

// WithModelClassifier enables LLM-backed query classification using the
// configured classifier model. Without it queries are classified by the
// heuristic rules alone. Ignored when a custom provider is supplied, since
// the chat model comes from the configuration.
func WithModelClassifier() CorpusOption {
	return func(o *corpusOptions) {
		o.modelClassifier = true
	}
}

// OpenCorpus opens or creates a corpus at the given path.
func OpenCorpus(filePath string, opts ...CorpusOption) (*Corpus, error) {
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	passageRepo, err := badger.NewPassageRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	var classifier classify.Classifier = classify.NewHeuristicClassifier()
	if options.modelClassifier && options.provider == nil {
		chatProvider, err := openai.NewChatProvider(options.aiConfig)
		if err != nil {
			provider.Close()
			backend.Close()
			return nil, err
		}
		classifier = classify.NewModelClassifier(chatProvider.ChatModel())
	}

	return &Corpus{
		backend:     backend,
		passageRepo: passageRepo,
		provider:    provider,
		classifier:  classifier,
		logger:      slog.Default(),
	}, nil
}

// Close releases the AI provider and the storage backend.
func (c *Corpus) Close() error {
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}

	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// PassageRepository returns the underlying passage repository.
func (c *Corpus) PassageRepository() storage.PassageRepository {
	return c.passageRepo
}

// NewIngestionPipeline creates an ingestion pipeline backed by this corpus.
func (c *Corpus) NewIngestionPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(c.passageRepo, c.provider, opts...)
}

// NewRetriever creates a retriever backed by this corpus. The corpus
// classifier is used unless overridden by retrieve.WithClassifier.
func (c *Corpus) NewRetriever(opts ...retrieve.Option) (*retrieve.Retriever, error) {
	allOpts := append([]retrieve.Option{retrieve.WithClassifier(c.classifier)}, opts...)
	return retrieve.NewRetriever(c.passageRepo, c.provider, allOpts...)
}
