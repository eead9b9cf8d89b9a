package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetStock_And_GetStock(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SetStock(ctx, "1:red:M", 100))
	require.NoError(t, store.SetStock(ctx, "2:blue:L", 200))

	got, err := store.GetStock(ctx, "1:red:M")
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	got, err = store.GetStock(ctx, "2:blue:L")
	require.NoError(t, err)
	assert.Equal(t, 200, got)
}

func TestMemoryStore_GetStock_UnknownVariantIsZero(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.GetStock(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestMemoryStore_SetStock_RejectsNegative(t *testing.T) {
	store := NewMemoryStore()

	err := store.SetStock(context.Background(), "1:red:M", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestMemoryStore_Adjust_ConsumeAndRestock(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.SetStock(ctx, "1:red:M", 5))

	newStock, err := store.Adjust(ctx, "1:red:M", -3)
	require.NoError(t, err)
	assert.Equal(t, 2, newStock)

	newStock, err = store.Adjust(ctx, "1:red:M", 4)
	require.NoError(t, err)
	assert.Equal(t, 6, newStock)
}

func TestMemoryStore_Adjust_NeverGoesNegative(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.SetStock(ctx, "1:red:M", 2))

	_, err := store.Adjust(ctx, "1:red:M", -3)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, "1:red:M", short.VariantKey)
	assert.Equal(t, 3, short.Requested)
	assert.Equal(t, 2, short.Available)

	// failed adjust leaves the count untouched
	got, err := store.GetStock(ctx, "1:red:M")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestMemoryStore_Adjust_UnknownVariantStartsAtZero(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Adjust(ctx, "fresh", -1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	newStock, err := store.Adjust(ctx, "fresh", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, newStock)
}

func TestInsufficientStockError_MatchesSentinel(t *testing.T) {
	err := &InsufficientStockError{VariantKey: "x", Requested: 2, Available: 1}
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Contains(t, err.Error(), "requested 2")
	assert.Contains(t, err.Error(), "available 1")
}
