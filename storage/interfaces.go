package storage

import (
	"context"

	"github.com/poiesic/recallit/core"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// PassageRepository provides operations for managing owner-scoped passages.
type PassageRepository interface {
	Repository

	// AddPassages upserts one or more passages into their owner collections.
	// A passage with ID=0 gets a content-derived ID from its chunk
	// identifier, so re-ingesting a document replaces its passages instead
	// of duplicating them. Sets InsertedAt if not already set.
	// Owner collections are created lazily on first write.
	// Returns the passages with IDs and timestamps populated.
	AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error)

	// GetPassage retrieves a single passage by owner and ID.
	// Returns ErrNotFound if the passage doesn't exist.
	GetPassage(ctx context.Context, owner string, id core.ID) (*core.Passage, error)

	// GetPassages retrieves multiple passages by their IDs.
	// Returns only the passages that exist (no error for missing passages).
	GetPassages(ctx context.Context, owner string, ids ...core.ID) ([]*core.Passage, error)

	// DeletePassages removes passages by their IDs.
	// Returns ErrNotFound if any passage doesn't exist.
	DeletePassages(ctx context.Context, owner string, ids ...core.ID) error

	// FindSimilar finds the passages nearest to the given vector within one
	// owner collection. Results are ordered by ascending cosine distance,
	// up to limit entries. An unknown owner yields an empty result, not an
	// error: an owner with no data is indistinguishable from an owner
	// whose data simply doesn't match.
	FindSimilar(ctx context.Context, owner string, vector []float32, limit int) ([]*core.ScoredPassage, error)

	// Owners lists all owner collections, sorted.
	Owners(ctx context.Context) ([]string, error)

	// Stats returns the passage count per owner collection.
	Stats(ctx context.Context) (map[string]int, error)

	// DeleteOwner removes one owner collection and all its passages.
	// Deleting an unknown owner is a no-op.
	DeleteOwner(ctx context.Context, owner string) error

	// Reset destroys every owner collection. The operation blocks
	// concurrent writers until it completes.
	Reset(ctx context.Context) error
}
