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
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/poiesic/recallit"
	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/internal/config"
	"github.com/poiesic/recallit/internal/server"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal("error loading .env file: ", err)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	configPath := os.Getenv("RECALLIT_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("error loading configuration: ", err)
	}
	if addr := os.Getenv("RECALLIT_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if path := os.Getenv("RECALLIT_DB"); path != "" {
		cfg.Store.Path = path
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithClassifierHost(cfg.AI.ClassifierHost),
		ai.WithClassifierModel(cfg.AI.ClassifierModel),
	)
	if err := aiConfig.Validate(); err != nil {
		log.Fatal("invalid AI configuration: ", err)
	}

	opts := []recallit.CorpusOption{recallit.WithAIConfig(aiConfig)}
	if cfg.Store.InMemory {
		opts = append(opts, recallit.WithInMemory())
	}
	if cfg.AI.ModelClassifier {
		opts = append(opts, recallit.WithModelClassifier())
	}

	corpus, err := recallit.OpenCorpus(cfg.Store.Path, opts...)
	if err != nil {
		log.Fatal("error opening store: ", err)
	}
	defer corpus.Close()

	srv, err := server.New(cfg.Server.ListenAddr, corpus)
	if err != nil {
		log.Fatal("error building server: ", err)
	}

	go func() {
		if err := srv.Run(); err != nil {
			slog.Error("server error", "err", err)
		}
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch

	slog.Info("received shutdown signal, shutting down server")
	if err := srv.Shutdown(); err != nil {
		slog.Error("error during shutdown", "err", err)
	}
}
