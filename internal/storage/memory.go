package storage

import (
	"context"
	"slices"
	"sync"
	"time"
)

var _ Backend = (*MemoryStore)(nil)

// keeps historical queries in process memory; contents are lost on exit
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	distance  distanceFunc
	seq       uint64
	byText    map[string]HistoricalQuery
	entries   []entry
}

func NewMemoryStore(opts Options) (*MemoryStore, error) {
	distance, err := distanceFor(opts.Metric)
	if err != nil {
		return nil, err
	}

	return &MemoryStore{
		dimension: opts.Dimension,
		distance:  distance,
		byText:    make(map[string]HistoricalQuery),
	}, nil
}

func (s *MemoryStore) UpsertIfAbsent(_ context.Context, text string, embedding []float32) (UpsertResult, error) {
	if err := validateUpsert("memory.upsert", text, embedding, s.dimension); err != nil {
		return Inserted, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byText[text]; ok {
		return AlreadyPresent, nil
	}

	stored := slices.Clone(embedding)
	s.seq++
	s.byText[text] = HistoricalQuery{Text: text, Embedding: stored, CreatedAt: time.Now()}
	s.entries = append(s.entries, newEntry(s.seq, text, stored))

	return Inserted, nil
}

func (s *MemoryStore) NearestNeighbors(_ context.Context, embedding []float32, k int) ([]string, error) {
	if err := validateSearch("memory.nearest", embedding, k, s.dimension); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return nearest(s.entries, embedding, k, s.distance), nil
}

// returns the stored record for text, if any
func (s *MemoryStore) Get(text string) (HistoricalQuery, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.byText[text]
	return q, ok
}

func (s *MemoryStore) Initialize(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries), nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
