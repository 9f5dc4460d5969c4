package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
)

type stubOrderPublisher struct {
	mu     sync.Mutex
	err    error
	orders []*domain.Order
}

func (p *stubOrderPublisher) PublishOrderConfirmed(ctx context.Context, order *domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
	return p.err
}

func (p *stubOrderPublisher) published() []*domain.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*domain.Order(nil), p.orders...)
}

type checkoutFixture struct {
	carts         *CartStore
	notifications *NotificationService
	dispatcher    *stubDispatcher
	publisher     *stubOrderPublisher
	svc           *CheckoutService
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	logger := newTestLogger()
	carts := NewCartStore(logger, time.Hour)
	t.Cleanup(carts.Close)

	dispatcher := &stubDispatcher{}
	notifications := NewNotificationService(dispatcher, &stubRegistrar{}, NotificationConfig{}, logger)
	t.Cleanup(notifications.Close)

	publisher := &stubOrderPublisher{}

	return &checkoutFixture{
		carts:         carts,
		notifications: notifications,
		dispatcher:    dispatcher,
		publisher:     publisher,
		svc:           NewCheckoutService(carts, notifications, publisher, logger),
	}
}

func TestCheckoutService_Checkout(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "sess-1", testProduct("prod-b", 500))
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, "sess-1", "card")

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "sess-1", order.SessionID)
	// The total reflects the cart as it stood at checkout, priced from the
	// captured snapshots.
	assert.Equal(t, int64(2500), order.TotalAmount)
	assert.Equal(t, 3, order.ItemCount)
	assert.Equal(t, "card", order.PaymentMethod)

	cart, err := f.carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	published := f.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, order.ID, published[0].ID)
}

func TestCheckoutService_EmptyCartIsNoop(t *testing.T) {
	f := newCheckoutFixture(t)

	order, err := f.svc.Checkout(context.Background(), "sess-1", "card")

	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Empty(t, f.publisher.published())
}

func TestCheckoutService_InvalidInput(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, "", "card")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.Checkout(ctx, "sess-1", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCheckoutService_DispatchesConfirmationWhenSubscribed(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.notifications.Subscribe(ctx, "sess-1", "handle-1")
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, "sess-1", "card")
	require.NoError(t, err)
	require.NotNil(t, order)

	f.notifications.Close()

	// Exactly one confirmation for exactly one checkout.
	assert.Equal(t, []string{"handle-1"}, f.dispatcher.handles())
}

func TestCheckoutService_NoDispatchWhenNotSubscribed(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, "sess-1", "card")
	require.NoError(t, err)
	require.NotNil(t, order)

	f.notifications.Close()
	assert.Empty(t, f.dispatcher.handles())
}

func TestCheckoutService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	f.publisher.err = errors.New("broker unreachable")
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, "sess-1", "card")

	// The order stands and the cart stays cleared even when the event cannot
	// be published.
	require.NoError(t, err)
	require.NotNil(t, order)

	cart, err := f.carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckoutService_SecondCheckoutIsNoop(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-1", testProduct("prod-a", 1000))
	require.NoError(t, err)

	first, err := f.svc.Checkout(ctx, "sess-1", "card")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := f.svc.Checkout(ctx, "sess-1", "card")
	require.NoError(t, err)
	assert.Nil(t, second)

	assert.Len(t, f.publisher.published(), 1)
}
