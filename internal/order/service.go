package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkravets/storecart/internal/domain"
	"github.com/mkravets/storecart/internal/ledger"
	"github.com/rs/zerolog/log"
)

// Carts is the slice of the cart service the order assembly needs.
type Carts interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// Service turns cart snapshots into durable orders and keeps the stock
// ledger in step. Placement is all-or-nothing: when any line cannot be
// consumed, or the order cannot be persisted, every already-applied stock
// delta is restored before the error comes back.
type Service struct {
	repo      Repository
	stock     ledger.Store
	carts     Carts
	publisher EventPublisher // nil disables events
}

func NewService(repo Repository, stock ledger.Store, carts Carts, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		stock:     stock,
		carts:     carts,
		publisher: publisher,
	}
}

type PlaceOrderInput struct {
	UserID          string
	AddressRef      string
	DiscountPercent int
	ShippingFee     int64
	Note            string
}

func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	cart, err := s.carts.GetCart(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	order, err := domain.NewOrder(uuid.New().String(), cart, in.AddressRef, in.DiscountPercent, in.ShippingFee, in.Note)
	if err != nil {
		return nil, err
	}

	applied, err := s.consumeStock(ctx, order.Lines)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.restoreStock(ctx, applied)
		return nil, fmt.Errorf("persist order: %w", err)
	}

	// the order exists from here on, so a failed cart clear is logged and
	// left to the next mutation rather than failing the placement
	if err := s.carts.Clear(ctx, in.UserID); err != nil {
		log.Error().Err(err).Str("user_id", in.UserID).Str("order_number", order.OrderNumber).
			Msg("failed to clear cart after placement")
	}

	s.publishPlaced(ctx, order)

	log.Info().Str("order_number", order.OrderNumber).Str("user_id", in.UserID).
		Int64("total", order.Total).Msg("order placed")
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.repo.GetByNumber(ctx, orderNumber)
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// TransitionStatus moves an order along the status machine. Cancellation
// goes through CancelOrder because it also restores stock.
func (s *Service) TransitionStatus(ctx context.Context, orderNumber string, next domain.OrderStatus) (*domain.Order, error) {
	if next == domain.OrderStatusCancelled {
		return s.CancelOrder(ctx, orderNumber)
	}

	order, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, orderNumber, next); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	order.Status = next
	order.UpdatedAt = time.Now().UTC()
	log.Info().Str("order_number", orderNumber).Stringer("status", next).Msg("order status updated")
	return order, nil
}

// CancelOrder is only valid while the order is PENDING or CONFIRMED. It
// restores the stock consumed at placement before flipping the status.
func (s *Service) CancelOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, domain.OrderStatusCancelled)
	}

	restored := make([]domain.CartLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		if _, err := s.stock.Adjust(ctx, line.VariantKey, line.Quantity); err != nil {
			s.consumeRestored(ctx, restored)
			return nil, fmt.Errorf("restore stock for %s: %w", line.VariantKey, err)
		}
		restored = append(restored, line)
	}

	if err := s.repo.UpdateStatus(ctx, orderNumber, domain.OrderStatusCancelled); err != nil {
		s.consumeRestored(ctx, restored)
		return nil, fmt.Errorf("update status: %w", err)
	}

	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = time.Now().UTC()
	log.Info().Str("order_number", orderNumber).Msg("order cancelled")
	return order, nil
}

// consumeStock applies the negative deltas line by line. On any failure the
// deltas applied so far are rolled back and nothing is left half-done.
func (s *Service) consumeStock(ctx context.Context, lines []domain.CartLine) ([]domain.CartLine, error) {
	applied := make([]domain.CartLine, 0, len(lines))
	for _, line := range lines {
		if _, err := s.stock.Adjust(ctx, line.VariantKey, -line.Quantity); err != nil {
			s.restoreStock(ctx, applied)
			return nil, err
		}
		applied = append(applied, line)
	}
	return applied, nil
}

func (s *Service) restoreStock(ctx context.Context, lines []domain.CartLine) {
	for _, line := range lines {
		if _, err := s.stock.Adjust(ctx, line.VariantKey, line.Quantity); err != nil {
			log.Error().Err(err).Str("variant_key", line.VariantKey).
				Msg("failed to restore stock after aborted placement")
		}
	}
}

func (s *Service) consumeRestored(ctx context.Context, lines []domain.CartLine) {
	for _, line := range lines {
		if _, err := s.stock.Adjust(ctx, line.VariantKey, -line.Quantity); err != nil {
			log.Error().Err(err).Str("variant_key", line.VariantKey).
				Msg("failed to re-consume stock after aborted cancellation")
		}
	}
}

func (s *Service) publishPlaced(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	event := OrderPlacedEvent{
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		Lines:       order.Lines,
		PlacedAt:    order.PlacedAt,
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		log.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("failed to publish order event")
	}
}
