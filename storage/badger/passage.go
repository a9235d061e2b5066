package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

// PassageRepository implements storage.PassageRepository for BadgerDB.
type PassageRepository struct {
	backend *Backend
}

var _ storage.PassageRepository = (*PassageRepository)(nil)

// NewPassageRepository creates a new PassageRepository on an open backend.
func NewPassageRepository(backend *Backend) (*PassageRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is nil")
	}
	return &PassageRepository{backend: backend}, nil
}

// NewRepository opens a BadgerDB database at path and returns a passage
// repository over it.
//
// Returns storage.PassageRepository interface to enforce abstraction.
func NewRepository(path string) (storage.PassageRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &PassageRepository{backend: backend}, nil
}

// Close closes the underlying backend.
func (r *PassageRepository) Close() error {
	return r.backend.Close()
}

// WithTransaction delegates to the backend.
func (r *PassageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddPassages upserts passages into their owner collections.
func (r *PassageRepository) AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		seenOwners := make(map[string]struct{})

		for _, passage := range passages {
			if err := core.ValidatePassage(passage); err != nil {
				return err
			}

			// Content-derived ID makes re-ingestion an upsert.
			if passage.Id == 0 {
				passage.Id = core.IDFromContent(passage.ChunkID())
			}
			if passage.InsertedAt.IsZero() {
				passage.InsertedAt = time.Now().UTC()
			}

			key := makePassageKey(passage.Owner, passage.Id)
			if err := tx.Set(key, storage.MarshalPassage(passage)); err != nil {
				return err
			}

			// Register the owner collection lazily, once per batch.
			if _, seen := seenOwners[passage.Owner]; !seen {
				if err := tx.Set(makeOwnerKey(passage.Owner), []byte(passage.Owner)); err != nil {
					return err
				}
				seenOwners[passage.Owner] = struct{}{}
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return passages, nil
}

// GetPassage retrieves a single passage by owner and ID.
func (r *PassageRepository) GetPassage(ctx context.Context, owner string, id core.ID) (*core.Passage, error) {
	var result *core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPassage(tx, makePassageKey(owner, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetPassages retrieves multiple passages by their IDs.
// Missing passages are skipped silently.
func (r *PassageRepository) GetPassages(ctx context.Context, owner string, ids ...core.ID) ([]*core.Passage, error) {
	var results []*core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			passage, err := readPassage(tx, makePassageKey(owner, id))
			if err != nil {
				return err
			}
			if passage != nil {
				results = append(results, passage)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeletePassages removes passages by their IDs.
func (r *PassageRepository) DeletePassages(ctx context.Context, owner string, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makePassageKey(owner, id)

			passage, err := readPassage(tx, key)
			if err != nil {
				return err
			}
			if passage == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FindSimilar scans one owner collection and returns the limit nearest
// passages by cosine distance, ascending.
func (r *PassageRepository) FindSimilar(ctx context.Context, owner string, vector []float32, limit int) ([]*core.ScoredPassage, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: vector is empty", storage.ErrInvalidQuery)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", storage.ErrInvalidQuery)
	}

	var results []*core.ScoredPassage

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeOwnerScanPrefix(owner)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var passage *core.Passage
			err := iter.Item().Value(func(val []byte) error {
				var err error
				passage, err = storage.UnmarshalPassage(val)
				return err
			})
			if err != nil {
				return err
			}

			// Skip passages without embeddings
			if passage == nil || len(passage.Vector) == 0 {
				continue
			}

			distance := ai.CosineDistance(vector, passage.Vector)
			results = append(results, &core.ScoredPassage{
				Passage:    passage,
				Distance:   distance,
				Similarity: 1 - distance,
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by distance ascending: nearest first
	slices.SortFunc(results, func(a, b *core.ScoredPassage) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Owners lists all owner collections, sorted.
func (r *PassageRepository) Owners(ctx context.Context) ([]string, error) {
	var owners []string

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = ownerScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				owners = append(owners, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.Sort(owners)
	return owners, nil
}

// Stats returns the passage count per owner collection.
func (r *PassageRepository) Stats(ctx context.Context) (map[string]int, error) {
	owners, err := r.Owners(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int, len(owners))
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, owner := range owners {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = makeOwnerScanPrefix(owner)
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)

			count := 0
			for iter.Rewind(); iter.Valid(); iter.Next() {
				count++
			}
			iter.Close()
			stats[owner] = count
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteOwner removes one owner collection and all its passages.
func (r *PassageRepository) DeleteOwner(ctx context.Context, owner string) error {
	if err := r.backend.DropPrefixes(makeOwnerScanPrefix(owner)); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeOwnerKey(owner)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Reset destroys every owner collection. BadgerDB's prefix drop blocks
// concurrent writes for its duration.
func (r *PassageRepository) Reset(ctx context.Context) error {
	return r.backend.DropPrefixes(passageScanPrefix(), ownerScanPrefix())
}

// readPassage reads and deserializes a passage, returning nil if the key
// doesn't exist.
func readPassage(tx *badger.Txn, key []byte) (*core.Passage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var passage *core.Passage
	err = item.Value(func(val []byte) error {
		var err error
		passage, err = storage.UnmarshalPassage(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return passage, nil
}
