package ledger

import (
	"context"
	"sync"
)

// MemoryStore keeps stock counts in process memory. All writes are
// serialized through a single mutex, so there is exactly one owner of every
// count within the process.
type MemoryStore struct {
	mu     sync.RWMutex
	stocks map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stocks: make(map[string]int),
	}
}

func (s *MemoryStore) GetStock(_ context.Context, variantKey string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stocks[variantKey], nil
}

func (s *MemoryStore) Adjust(_ context.Context, variantKey string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.stocks[variantKey]
	next := current + delta
	if next < 0 {
		return 0, &InsufficientStockError{
			VariantKey: variantKey,
			Requested:  -delta,
			Available:  current,
		}
	}

	s.stocks[variantKey] = next
	return next, nil
}

func (s *MemoryStore) SetStock(_ context.Context, variantKey string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks[variantKey] = quantity
	return nil
}
