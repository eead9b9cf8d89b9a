package ledger

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by stock stores
var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("stock quantity must not be negative")
	ErrConflict           = errors.New("concurrent stock update detected")
	ErrStorageUnavailable = errors.New("stock storage unavailable")
)

// Store holds stock counts per product variant. Counts never go negative:
// an Adjust that would cross zero fails and leaves the stored value
// untouched. A successful Adjust is advisory rather than a hard
// reservation; writers in other processes may race unless the backing
// store does compare-and-swap (see RedisStore).
type Store interface {
	// GetStock returns the current count, 0 for variants it has never seen
	GetStock(ctx context.Context, variantKey string) (int, error)

	// Adjust applies a signed delta (positive restocks, negative consumes)
	// and returns the new count
	Adjust(ctx context.Context, variantKey string, delta int) (int, error)

	// SetStock overwrites the count with an absolute non-negative value
	SetStock(ctx context.Context, variantKey string, quantity int) error
}

// InsufficientStockError reports which variant was short and by how much.
type InsufficientStockError struct {
	VariantKey string
	Requested  int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.VariantKey, e.Requested, e.Available)
}

// Is lets callers keep matching with errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
