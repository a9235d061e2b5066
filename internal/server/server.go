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

// Package server exposes the retrieval contract over HTTP. The handlers are
// glue only: they call the same retriever the in-process API uses.
package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/poiesic/recallit"
)

var config = fiber.Config{
	ErrorHandler: ErrorHandler,
}

// Server serves the retrieval API over HTTP.
type Server struct {
	listenAddr string
	app        *fiber.App
	logger     *slog.Logger
}

// New builds a server around an open corpus.
func New(listenAddr string, corpus *recallit.Corpus) (*Server, error) {
	retriever, err := corpus.NewRetriever()
	if err != nil {
		return nil, err
	}

	var (
		app       = fiber.New(config)
		retrieval = &retrieveHandler{retriever: retriever}
		store     = &storeHandler{repository: corpus.PassageRepository()}
		health    = &checkHandler{}
		check     = app.Group("/check")
		api       = app.Group("/api")
	)

	check.Get("/healthy", health.HandleHealthy)
	api.Post("/retrieve", retrieval.HandleRetrieve)
	api.Get("/stats", store.HandleStats)
	api.Post("/reset", store.HandleReset)

	return &Server{
		listenAddr: listenAddr,
		app:        app,
		logger:     slog.Default().With("component", "server"),
	}, nil
}

// Run blocks serving requests until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("server listening", "addr", s.listenAddr)
	return s.app.Listen(s.listenAddr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.logger.Info("server stopped")
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
