package ingest

import "errors"

var (
	// ErrNoDocuments is returned when a directory contains no supported files.
	ErrNoDocuments = errors.New("no documents to ingest")

	// ErrRepositoryRequired is returned when a passage repository is not provided.
	ErrRepositoryRequired = errors.New("passage repository required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")
)
