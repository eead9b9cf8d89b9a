package cart

import (
	"context"
	"errors"

	"github.com/mkravets/storecart/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is a read-through layer in front of the repository. The repository
// stays the source of truth; the cache only ever holds a derived copy.
type Cache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
