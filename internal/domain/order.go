package domain

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipping  OrderStatus = "SHIPPING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string {
	return string(s)
}

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:   {OrderStatusConfirmed: true, OrderStatusCancelled: true},
	OrderStatusConfirmed: {OrderStatusShipping: true, OrderStatusCancelled: true},
	OrderStatusShipping:  {OrderStatusDelivered: true},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanTransitionTo reports whether the status machine allows moving to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return allowedTransitions[s][next]
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ParseOrderStatus maps a wire string to a known status.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	status := OrderStatus(raw)
	if _, known := allowedTransitions[status]; !known {
		return "", false
	}
	return status, true
}

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrEmptyCart         = errors.New("cart is empty, nothing to order")
	ErrMissingAddress    = errors.New("order address is missing")
	ErrInvalidDiscount   = errors.New("discount percent must be between 0 and 100")
)

// Order is immutable once assembled. Status is the only field that changes
// afterwards, and only through the transition table above.
type Order struct {
	OrderNumber     string      `json:"order_number"`
	UserID          string      `json:"user_id"`
	Lines           []CartLine  `json:"lines"`
	Subtotal        int64       `json:"subtotal"`
	DiscountPercent int         `json:"discount_percent"`
	DiscountAmount  int64       `json:"discount_amount"`
	ShippingFee     int64       `json:"shipping_fee"`
	Total           int64       `json:"total"`
	Status          OrderStatus `json:"status"`
	AddressRef      string      `json:"address_ref"`
	Note            string      `json:"note"`
	PlacedAt        time.Time   `json:"placed_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewOrder snapshots the cart lines and derives the money fields. The cart
// itself is not touched; clearing it after a successful placement is the
// caller's job.
func NewOrder(orderNumber string, cart *Cart, addressRef string, discountPercent int, shippingFee int64, note string) (*Order, error) {
	if cart == nil || cart.ItemCount() == 0 {
		return nil, ErrEmptyCart
	}
	if addressRef == "" {
		return nil, ErrMissingAddress
	}
	if discountPercent < 0 || discountPercent > 100 {
		return nil, ErrInvalidDiscount
	}

	lines := make([]CartLine, len(cart.Lines))
	copy(lines, cart.Lines)

	subtotal := cart.Subtotal()
	discountAmount := subtotal * int64(discountPercent) / 100
	now := time.Now().UTC()

	return &Order{
		OrderNumber:     orderNumber,
		UserID:          cart.UserID,
		Lines:           lines,
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		ShippingFee:     shippingFee,
		Total:           subtotal - discountAmount + shippingFee,
		Status:          OrderStatusPending,
		AddressRef:      addressRef,
		Note:            note,
		PlacedAt:        now,
		UpdatedAt:       now,
	}, nil
}
