package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/docstore"
)

// Store implements docstore.Store on a BadgerDB backend.
//
// Collections are key prefixes, index definitions are marker keys, and
// documents are mus-encoded records keyed by BigEndian store ID so badger's
// iteration order is the store's natural document order.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ docstore.Store = (*Store)(nil)

// New creates a Store on the given backend.
func New(backend *Backend) (*Store, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "docstore"),
	}, nil
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// CreateCollection makes the collection exist. Idempotent.
func (s *Store) CreateCollection(ctx context.Context, collection string) error {
	if collection == "" {
		return fmt.Errorf("%w: collection name required", docstore.ErrInvalidQuery)
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCollectionKey(collection), []byte{}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// EnsureIndex makes the named search index exist with the given kind.
func (s *Store) EnsureIndex(ctx context.Context, collection, index string, kind docstore.IndexKind) error {
	if kind != docstore.IndexLexical && kind != docstore.IndexVector {
		return fmt.Errorf("%w: unknown index kind %q", docstore.ErrInvalidQuery, kind)
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if !exists(tx, makeCollectionKey(collection)) {
			return &docstore.PreconditionError{Check: docstore.CheckCollection, Collection: collection}
		}

		key := makeIndexKey(collection, index)
		item, err := tx.Get(key)
		switch {
		case err == nil:
			existing, copyErr := item.ValueCopy(nil)
			if copyErr != nil {
				return copyErr
			}
			if docstore.IndexKind(existing) != kind {
				return fmt.Errorf("%w: index %q is %s", docstore.ErrIndexKindMismatch, index, existing)
			}
			return nil
		case errors.Is(err, badger.ErrKeyNotFound):
			if err := tx.Set(key, []byte(kind)); err != nil {
				return err
			}
			return tx.Commit()
		default:
			return err
		}
	}, true)
}

// CheckSearchable verifies the query preconditions in order: collection
// exists, collection has documents, index exists.
func (s *Store) CheckSearchable(ctx context.Context, collection, index string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if !exists(tx, makeCollectionKey(collection)) {
			return &docstore.PreconditionError{Check: docstore.CheckCollection, Collection: collection}
		}
		if countDocuments(tx, collection, 1) == 0 {
			return &docstore.PreconditionError{Check: docstore.CheckDocuments, Collection: collection}
		}
		if !exists(tx, makeIndexKey(collection, index)) {
			return &docstore.PreconditionError{Check: docstore.CheckIndex, Collection: collection, Index: index}
		}
		return nil
	}, false)
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if !exists(tx, makeCollectionKey(collection)) {
			return &docstore.PreconditionError{Check: docstore.CheckCollection, Collection: collection}
		}
		count = countDocuments(tx, collection, 0)
		return nil
	}, false)
	return count, err
}

// Get retrieves a single document by its store identifier.
func (s *Store) Get(ctx context.Context, collection string, id core.ID) (*core.Record, error) {
	var record *core.Record
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return docstore.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = docstore.UnmarshalRecord(val)
			return err
		})
	}, false)
	return record, err
}

// BulkInsert writes a group of documents. The collection is created
// implicitly. With unordered semantics (the default) a rejected document is
// reported in the result and the rest of the group is still written; with
// ordered semantics the write stops at the first failure.
func (s *Store) BulkInsert(ctx context.Context, collection string, records []*core.Record, opts docstore.BulkOptions) (*docstore.BulkResult, error) {
	result := &docstore.BulkResult{}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCollectionKey(collection), []byte{}); err != nil {
			return err
		}

		for _, record := range records {
			if err := s.insertOne(tx, collection, record); err != nil {
				result.Failed = append(result.Failed, docstore.BulkError{
					ExternalID: record.ExternalID,
					Err:        err,
				})
				if opts.Ordered {
					break
				}
				continue
			}
			result.Inserted++
			result.InsertedIDs = append(result.InsertedIDs, record.StoreID)
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// insertOne validates and writes a single document inside tx.
// Records arriving with StoreID zero get a content-derived identifier, so
// identical (external id, contents) pairs collide deterministically.
func (s *Store) insertOne(tx *badger.Txn, collection string, record *core.Record) error {
	if err := core.ValidateRecord(record, 0); err != nil {
		return err
	}

	if record.StoreID == 0 {
		record.StoreID = core.IDFromContent(collection + "\x00" + record.ExternalID + "\x00" + record.Contents)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	key := makeDocumentKey(collection, record.StoreID)
	if exists(tx, key) {
		return fmt.Errorf("%w: store id %d", docstore.ErrDuplicateKey, record.StoreID)
	}

	return tx.Set(key, docstore.MarshalRecord(record))
}

// exists reports whether a key is present, treating read errors as absent.
func exists(tx *badger.Txn, key []byte) bool {
	_, err := tx.Get(key)
	return err == nil
}

// countDocuments counts documents under a collection prefix, stopping
// early once max is reached when max > 0.
func countDocuments(tx *badger.Txn, collection string, max int) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = makeDocumentPrefix(collection)

	it := tx.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Rewind(); it.Valid(); it.Next() {
		count++
		if max > 0 && count >= max {
			break
		}
	}
	return count
}

// scanDocuments applies fn to every document in the collection, in
// ascending StoreID order.
func (s *Store) scanDocuments(tx *badger.Txn, collection string, fn func(*core.Record) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeDocumentPrefix(collection)

	it := tx.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			record, err := docstore.UnmarshalRecord(val)
			if err != nil {
				return err
			}
			return fn(record)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
