package cart

import (
	"context"
	"errors"

	"github.com/mkravets/storecart/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository is the authoritative store for cart aggregates. The service
// loads the whole aggregate, mutates it through the domain methods, and
// writes it back; repositories never apply item-level edits themselves, so
// "add means merge" lives in exactly one place.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Upsert(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
