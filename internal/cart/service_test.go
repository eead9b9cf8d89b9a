package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/mkravets/storecart/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache counts calls and can serve a canned cart
type fakeCache struct {
	cart       *domain.Cart
	getCalls   int
	setCalls   int
	deleteKeys []string
	getErr     error
}

func (f *fakeCache) Get(_ context.Context, _ string) (*domain.Cart, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.cart == nil {
		return nil, ErrCacheMiss
	}
	return f.cart, nil
}

func (f *fakeCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	f.setCalls++
	f.cart = cart
	return nil
}

func (f *fakeCache) Delete(_ context.Context, userID string) error {
	f.deleteKeys = append(f.deleteKeys, userID)
	f.cart = nil
	return nil
}

func newTestService() (*Service, *MemoryRepository, *fakeCache) {
	repo := NewMemoryRepository()
	cache := &fakeCache{}
	return NewService(repo, cache), repo, cache
}

func TestGetCart_EmptyForUnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	cart, err := svc.GetCart(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", cart.UserID)
	assert.Empty(t, cart.Lines)
}

func TestGetCart_CacheHitSkipsRepository(t *testing.T) {
	svc, _, cache := newTestService()
	cache.cart = &domain.Cart{
		UserID: "user1",
		Lines:  []domain.CartLine{{ProductID: 1, VariantKey: "1:red:M", Quantity: 2, UnitPrice: 100000}},
	}

	cart, err := svc.GetCart(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.getCalls)
	assert.Len(t, cart.Lines, 1)
}

// blockingCache behaves like a real key-value cache but parks the first
// Set until released, so a test can interleave a write with an in-flight
// cache fill.
type blockingCache struct {
	mu         sync.Mutex
	data       map[string]*domain.Cart
	armed      bool
	setEntered chan struct{}
	setRelease chan struct{}
}

func newBlockingCache() *blockingCache {
	return &blockingCache{
		data:       make(map[string]*domain.Cart),
		armed:      true,
		setEntered: make(chan struct{}),
		setRelease: make(chan struct{}),
	}
}

func (b *blockingCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cart, ok := b.data[userID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return cart.Clone(), nil
}

func (b *blockingCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	b.mu.Lock()
	armed := b.armed
	b.armed = false
	b.mu.Unlock()

	if armed {
		b.setEntered <- struct{}{}
		<-b.setRelease
	}

	b.mu.Lock()
	b.data[userID] = cart.Clone()
	b.mu.Unlock()
	return nil
}

func (b *blockingCache) Delete(_ context.Context, userID string) error {
	b.mu.Lock()
	delete(b.data, userID)
	b.mu.Unlock()
	return nil
}

// A cache fill that completes after a later write must not put the
// superseded cart back into the cache. Otherwise a read between the write
// and the next invalidation would hand out the old aggregate, and a
// checkout reading through the cache would place an order missing the
// just-added line.
func TestGetCart_SlowFillDoesNotResurrectStaleCart(t *testing.T) {
	repo := NewMemoryRepository()
	cache := newBlockingCache()
	svc := NewService(repo, cache)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user1", 1, "1:red:M", 1, 100000)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.GetCart(ctx, "user1")
	}()

	// the fill has read the one-unit cart and is parked inside Set; a
	// second unit lands and invalidates the key before the fill finishes
	<-cache.setEntered
	_, err = svc.AddItem(ctx, "user1", 1, "1:red:M", 1, 100000)
	require.NoError(t, err)
	close(cache.setRelease)
	<-done

	cart, err := svc.GetCart(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestAddItem_MergesAndInvalidatesCache(t *testing.T) {
	svc, repo, cache := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user1", 1, "1:red:M", 2, 100000)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "user1", 1, "1:red:M", 3, 100000)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.Contains(t, cache.deleteKeys, "user1")

	// merge happened in the authoritative store, not just the returned copy
	stored, err := repo.Get(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, 5, stored.Lines[0].Quantity)
}

func TestAddItem_RejectsInvalidQuantity(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "user1", 1, "1:red:M", 0, 100000)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// nothing persisted
	_, err = repo.Get(context.Background(), "user1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestUpdateQuantity(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user1", 1, "1:red:M", 2, 100000)
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(ctx, "user1", 1, "1:red:M", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Lines[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, "user1", 1, "1:red:M", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.UpdateQuantity(ctx, "user1", 9, "9:green:S", 1)
	assert.ErrorIs(t, err, domain.ErrLineNotFound)
}

func TestRemoveItem_MissingLineIsNoop(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user1", 1, "1:red:M", 2, 100000)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "user1", 9, "9:green:S")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)

	cart, err = svc.RemoveItem(ctx, "user1", 1, "1:red:M")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestClear(t *testing.T) {
	svc, repo, cache := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user1", 1, "1:red:M", 2, 100000)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "user1"))
	_, err = repo.Get(ctx, "user1")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Contains(t, cache.deleteKeys, "user1")

	// clearing a cart that never existed is fine
	assert.NoError(t, svc.Clear(ctx, "ghost"))
}
