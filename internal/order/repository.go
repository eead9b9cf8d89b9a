package order

import (
	"context"
	"errors"

	"github.com/mkravets/storecart/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order number already exists")
)

type Repository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderNumber string, status domain.OrderStatus) error
}
