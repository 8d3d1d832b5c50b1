package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
	"codeberg.org/pgsuggest/server/internal/logger"
)

var bucketQueries = []byte("query_embeddings")

var _ Backend = (*BoltStore)(nil)

// file-backed store for single-node setups. vectors are mirrored in memory
// and searched by brute force.
type BoltStore struct {
	db        *bbolt.DB
	dimension int
	distance  distanceFunc

	mu      sync.RWMutex
	seq     uint64
	entries []entry
}

type storedQuery struct {
	Vector    []float32 `json:"v"`
	Seq       uint64    `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

var errExists = errors.New("query already stored")

func NewBoltStore(path string, opts Options) (*BoltStore, error) {
	distance, err := distanceFor(opts.Metric)
	if err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, apperrors.StoreUnavailable("bolt.open", fmt.Errorf("failed to open bolt db: %w", err))
	}

	s := &BoltStore{
		db:        db,
		dimension: opts.Dimension,
		distance:  distance,
	}

	if err := s.Initialize(context.Background()); err != nil {
		db.Close() //nolint:errcheck,gosec
		return nil, err
	}

	if err := s.load(); err != nil {
		db.Close() //nolint:errcheck,gosec
		return nil, apperrors.StoreUnavailable("bolt.open", fmt.Errorf("failed to load vectors: %w", err))
	}

	return s, nil
}

// creates the bucket if it does not exist
func (s *BoltStore) Initialize(_ context.Context) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketQueries)
		return err
	})
	if err != nil {
		return apperrors.StoreUnavailable("bolt.initialize", fmt.Errorf("failed to create bucket: %w", err))
	}

	return nil
}

func (s *BoltStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketQueries).ForEach(func(k, v []byte) error {
			var stored storedQuery
			if err := json.Unmarshal(v, &stored); err != nil {
				logger.Warn("skipping corrupted stored query", "key", string(k))
				return nil
			}

			if s.dimension > 0 && len(stored.Vector) != s.dimension {
				logger.Warn("skipping stored query with mismatched dimension",
					"key", string(k),
					"dimension", len(stored.Vector),
					"expected", s.dimension,
				)
				return nil
			}

			s.entries = append(s.entries, newEntry(stored.Seq, string(k), stored.Vector))
			s.seq = max(s.seq, stored.Seq)

			return nil
		})
	})
}

func (s *BoltStore) UpsertIfAbsent(_ context.Context, text string, embedding []float32) (UpsertResult, error) {
	const op = "bolt.upsert"

	if err := validateUpsert(op, text, embedding, s.dimension); err != nil {
		return Inserted, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seq + 1

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketQueries)
		if b.Get([]byte(text)) != nil {
			return errExists
		}

		data, err := json.Marshal(storedQuery{Vector: embedding, Seq: seq, CreatedAt: time.Now().UTC()})
		if err != nil {
			return err
		}

		return b.Put([]byte(text), data)
	})

	if errors.Is(err, errExists) {
		return AlreadyPresent, nil
	}

	if err != nil {
		return Inserted, apperrors.StoreUnavailable(op, err)
	}

	s.seq = seq
	s.entries = append(s.entries, newEntry(seq, text, append([]float32(nil), embedding...)))

	return Inserted, nil
}

func (s *BoltStore) NearestNeighbors(_ context.Context, embedding []float32, k int) ([]string, error) {
	if err := validateSearch("bolt.nearest", embedding, k, s.dimension); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return nearest(s.entries, embedding, k, s.distance), nil
}

func (s *BoltStore) Count(_ context.Context) (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketQueries).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, apperrors.StoreUnavailable("bolt.count", err)
	}

	return count, nil
}

func (s *BoltStore) Ping(_ context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketQueries) == nil {
			return apperrors.StoreUnavailable("bolt.ping", fmt.Errorf("bucket %s missing", bucketQueries))
		}

		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
