package buffer

import (
	"context"
	"sync"
)

// process-local history buffer for single-replica setups and tests
type MemoryBuffer struct {
	mu      sync.Mutex
	order   []string
	pending map[string]struct{}
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{pending: make(map[string]struct{})}
}

func (b *MemoryBuffer) Add(_ context.Context, queries ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, q := range queries {
		if _, ok := b.pending[q]; ok {
			continue
		}

		b.pending[q] = struct{}{}
		b.order = append(b.order, q)
	}

	return nil
}

func (b *MemoryBuffer) Pop(_ context.Context, n int) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n = min(n, len(b.order))
	popped := make([]string, n)
	copy(popped, b.order[:n])

	b.order = b.order[n:]
	for _, q := range popped {
		delete(b.pending, q)
	}

	return popped, nil
}

func (b *MemoryBuffer) Len(_ context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.order), nil
}

func (b *MemoryBuffer) Close() error {
	return nil
}
