package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrLineNotFound    = errors.New("line not found in cart")
)

// CartLine is one entry in a cart: a product variant and how many of it.
// UnitPrice is the price in minor currency units snapshotted when the item
// was added; it is not refreshed when the catalog price changes.
type CartLine struct {
	ProductID  int64     `json:"product_id" bson:"product_id"`
	VariantKey string    `json:"variant_key" bson:"variant_key"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	UnitPrice  int64     `json:"unit_price" bson:"unit_price"`
	AddedAt    time.Time `json:"added_at" bson:"added_at"`
}

// Cart is the set of items a user intends to purchase. Lines keep their
// insertion order, and at most one line exists per (product, variant) pair.
type Cart struct {
	UserID    string     `json:"user_id" bson:"user_id"`
	Lines     []CartLine `json:"lines" bson:"lines"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// VariantKey builds the stock-tracking key for a product's color/size
// combination.
func VariantKey(productID int64, color, size string) string {
	return fmt.Sprintf("%d:%s:%s", productID, color, size)
}

// AddItem merges the quantity into an existing line for the same product and
// variant, or appends a new line at the end.
func (c *Cart) AddItem(productID int64, variantKey string, quantity int, unitPrice int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].VariantKey == variantKey {
			c.Lines[i].Quantity += quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID:  productID,
		VariantKey: variantKey,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		AddedAt:    time.Now().UTC(),
	})
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Zero and negative
// quantities are rejected; callers remove lines explicitly.
func (c *Cart) UpdateQuantity(productID int64, variantKey string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].VariantKey == variantKey {
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveItem deletes the matching line. Removing a line that is not in the
// cart is not an error.
func (c *Cart) RemoveItem(productID int64, variantKey string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].VariantKey == variantKey {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties all lines.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Subtotal is recomputed on every call, never cached.
func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, line := range c.Lines {
		sum += int64(line.Quantity) * line.UnitPrice
	}
	return sum
}

// ItemCount is the total number of units across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Clone returns a deep copy so stored carts cannot be mutated through
// returned references.
func (c *Cart) Clone() *Cart {
	clone := *c
	clone.Lines = make([]CartLine, len(c.Lines))
	copy(clone.Lines, c.Lines)
	return &clone
}
