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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/poiesic/recallit"
	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/ingest"
	"github.com/poiesic/recallit/internal/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "recallit",
		Usage: "Owner-scoped semantic passage retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest a directory of documents into an owner collection",
				Action: ingestCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "owner",
						Aliases:  []string{"o"},
						Usage:    "Owner collection to ingest into",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "dir",
						Usage:    "Directory of .txt and .md files to ingest",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "Delete the owner collection before ingesting",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent document workers (0 uses the default)",
					},
					&cli.IntFlag{
						Name:  "embed-batch-size",
						Usage: "Passages embedded per provider call",
						Value: ingest.DefaultBatchSize,
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Retrieve passages relevant to a query",
				ArgsUsage: "<query words...>",
				Action:    queryCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:    "owner",
						Aliases: []string{"o"},
						Usage:   "Owner collection to search (omit to search all owners)",
					},
					&cli.BoolFlag{
						Name:  "model-classifier",
						Usage: "Classify the query with the configured LLM instead of heuristics",
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Show passage counts per owner collection",
				Action: statsCommand,
				Flags:  storeFlags(),
			},
			{
				Name:   "reset",
				Usage:  "Delete every owner collection",
				Action: resetCommand,
				Flags: append(storeFlags(),
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm the reset without prompting",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// storeFlags are the flags shared by every command that opens the store.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the passage store directory (overrides config)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (overrides config)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name (overrides config)",
		},
		&cli.StringFlag{
			Name:  "classifier-host",
			Usage: "Classifier service host URL (overrides config)",
		},
		&cli.StringFlag{
			Name:  "classifier-model",
			Usage: "Classifier model name (overrides config)",
		},
	}
}

// loadConfig merges the YAML config with command-line overrides.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if v := c.String("db"); v != "" {
		cfg.Store.Path = v
	}
	if v := c.String("embedding-host"); v != "" {
		cfg.AI.EmbeddingHost = v
	}
	if v := c.String("embedding-model"); v != "" {
		cfg.AI.EmbeddingModel = v
	}
	if v := c.String("classifier-host"); v != "" {
		cfg.AI.ClassifierHost = v
	}
	if v := c.String("classifier-model"); v != "" {
		cfg.AI.ClassifierModel = v
	}

	return cfg, nil
}

// openCorpus opens the corpus described by the merged configuration.
func openCorpus(cfg *config.AppConfig, modelClassifier bool) (*recallit.Corpus, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithClassifierHost(cfg.AI.ClassifierHost),
		ai.WithClassifierModel(cfg.AI.ClassifierModel),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []recallit.CorpusOption{recallit.WithAIConfig(aiConfig)}
	if cfg.Store.InMemory {
		opts = append(opts, recallit.WithInMemory())
	}
	if modelClassifier {
		opts = append(opts, recallit.WithModelClassifier())
	}

	corpus, err := recallit.OpenCorpus(cfg.Store.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return corpus, nil
}

func ingestCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	corpus, err := openCorpus(cfg, false)
	if err != nil {
		return err
	}
	defer corpus.Close()

	var opts []ingest.Option
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingest.WithPoolSize(size))
	}
	opts = append(opts, ingest.WithBatchSize(c.Int("embed-batch-size")))

	pipeline, err := corpus.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	owner := c.String("owner")
	dir := c.String("dir")

	var report *ingest.Report
	if c.Bool("rebuild") {
		report, err = pipeline.RebuildOwner(ctx, owner, dir)
	} else {
		report, err = pipeline.IngestDirectory(ctx, owner, dir)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested %d documents (%d passages, %d skipped) for %s\n",
		report.Documents, report.Passages, report.Skipped, owner)
	return nil
}

func queryCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query text is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	corpus, err := openCorpus(cfg, c.Bool("model-classifier"))
	if err != nil {
		return err
	}
	defer corpus.Close()

	retriever, err := corpus.NewRetriever()
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	ctx := context.Background()
	owner := c.String("owner")

	var result *core.RetrievalResult
	if owner != "" {
		result, err = retriever.Retrieve(ctx, query, owner)
	} else {
		result, err = retriever.RetrieveBest(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	fmt.Printf("Strategy: %s\n", result.Strategy)
	if len(result.Passages) == 0 {
		fmt.Println("No passages found")
		return nil
	}
	for i, scored := range result.Passages {
		fmt.Printf("%d: [%s/%s #%d] (%.3f) %s\n",
			i+1, scored.Passage.Owner, scored.Passage.Source,
			scored.Passage.ChunkIndex, scored.Similarity, scored.Passage.Contents)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	corpus, err := openCorpus(cfg, false)
	if err != nil {
		return err
	}
	defer corpus.Close()

	stats, err := corpus.PassageRepository().Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	if len(stats) == 0 {
		fmt.Println("Store is empty")
		return nil
	}

	owners := make([]string, 0, len(stats))
	for owner := range stats {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	total := 0
	for _, owner := range owners {
		fmt.Printf("%s: %d passages\n", owner, stats[owner])
		total += stats[owner]
	}
	fmt.Printf("total: %d passages across %d owners\n", total, len(owners))
	return nil
}

func resetCommand(c *cli.Context) error {
	if !c.Bool("yes") {
		return fmt.Errorf("reset deletes every owner collection; pass --yes to confirm")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	corpus, err := openCorpus(cfg, false)
	if err != nil {
		return err
	}
	defer corpus.Close()

	if err := corpus.PassageRepository().Reset(context.Background()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	fmt.Println("Store reset")
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
