package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCartStore(t *testing.T) *CartStore {
	t.Helper()
	store := NewCartStore(newTestLogger(), time.Hour)
	t.Cleanup(store.Close)
	return store
}

func testProduct(id string, price int64) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    price,
		ImageURL: "https://img.example.com/" + id + ".jpg",
		Category: "test",
	}
}

func TestCartStore_AddItem_New(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	cart, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "prod-a", cart.Items[0].ProductID)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, int64(1000), cart.Items[0].Price)
	assert.Equal(t, "sess-1", cart.SessionID)
}

func TestCartStore_AddItem_IncrementsExisting(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)
	cart, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.ItemCount())
}

func TestCartStore_AddItem_PriceSnapshotAtAddTime(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	product := testProduct("prod-a", 1000)
	_, err := store.AddItem(ctx, "sess-1", product)
	require.NoError(t, err)

	// Catalog price changes after the item was added: the captured snapshot
	// must not move. What you added is what you pay.
	product.Price = 9999
	cart, err := store.AddItem(ctx, "sess-1", product)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1000), cart.Items[0].Price)
	assert.Equal(t, int64(2000), cart.TotalAmount())
}

func TestCartStore_AddItem_InvalidInput(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "", testProduct("prod-a", 1000))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = store.AddItem(ctx, "sess-1", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartStore_RemoveItem_RoundTrip(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	cart, err := store.RemoveItem(ctx, "sess-1", "prod-a")
	require.NoError(t, err)

	// add(P) then remove(P.id) restores the empty cart exactly.
	assert.Empty(t, cart.Items)
	assert.Equal(t, int64(0), cart.TotalAmount())
	assert.Equal(t, 0, cart.ItemCount())
}

func TestCartStore_RemoveItem_Idempotent(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	first, err := store.RemoveItem(ctx, "sess-1", "prod-a")
	require.NoError(t, err)

	// Second remove is a no-op, not an error.
	second, err := store.RemoveItem(ctx, "sess-1", "prod-a")
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
	assert.Empty(t, second.Items)
}

func TestCartStore_RemoveItem_AbsentIsNoop(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	cart, err := store.RemoveItem(ctx, "sess-1", "prod-missing")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartStore_QuantityNeverBelowOne(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	ops := []func() (*domain.Cart, error){
		func() (*domain.Cart, error) { return store.AddItem(ctx, "sess-1", testProduct("prod-a", 100)) },
		func() (*domain.Cart, error) { return store.AddItem(ctx, "sess-1", testProduct("prod-b", 200)) },
		func() (*domain.Cart, error) { return store.RemoveItem(ctx, "sess-1", "prod-a") },
		func() (*domain.Cart, error) { return store.AddItem(ctx, "sess-1", testProduct("prod-b", 200)) },
		func() (*domain.Cart, error) { return store.RemoveItem(ctx, "sess-1", "prod-c") },
	}

	for _, op := range ops {
		cart, err := op()
		require.NoError(t, err)
		var total int64
		for _, item := range cart.Items {
			assert.GreaterOrEqual(t, item.Quantity, 1)
			total += item.Price * int64(item.Quantity)
		}
		assert.Equal(t, total, cart.TotalAmount())
	}
}

func TestCartStore_Clear(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, "sess-1"))

	cart, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartStore_SessionsIsolated(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	other, err := store.Get(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

func TestCartStore_GetReturnsStableSnapshot(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	snap, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)

	_, err = store.AddItem(ctx, "sess-1", testProduct("prod-b", 500))
	require.NoError(t, err)

	// The earlier snapshot does not see the later mutation.
	assert.Len(t, snap.Items, 1)
}

func TestCartStore_InsertionOrderPreserved(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	for _, id := range []string{"prod-c", "prod-a", "prod-b"} {
		_, err := store.AddItem(ctx, "sess-1", testProduct(id, 100))
		require.NoError(t, err)
	}

	cart, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 3)
	assert.Equal(t, "prod-c", cart.Items[0].ProductID)
	assert.Equal(t, "prod-a", cart.Items[1].ProductID)
	assert.Equal(t, "prod-b", cart.Items[2].ProductID)
}

func TestCartStore_PopCart_NonEmpty(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)
	_, err = store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	snap, ok := store.PopCart(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, int64(2000), snap.TotalAmount())

	after, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, after.Items)
}

func TestCartStore_PopCart_Empty(t *testing.T) {
	store := newTestCartStore(t)

	snap, ok := store.PopCart(context.Background(), "sess-1")
	assert.False(t, ok)
	assert.Nil(t, snap)
}

func TestCartStore_PruneIdle(t *testing.T) {
	store := newTestCartStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	// Far enough in the future that the session has idled out.
	store.pruneIdle(time.Now().UTC().Add(2 * time.Hour))

	store.mu.RLock()
	_, exists := store.carts["sess-1"]
	store.mu.RUnlock()
	assert.False(t, exists)
}
