package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
)

// OrderEventPublisher publishes order lifecycle events. *event.Producer
// satisfies this.
type OrderEventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, order *domain.Order) error
}

// CheckoutService composes the cart store, event producer, and notification
// lifecycle into the checkout transaction. The user-visible outcome (order
// returned, cart cleared) is decided synchronously; notification delivery
// and event publication are best-effort side effects that can never fail or
// delay the checkout.
type CheckoutService struct {
	carts         *CartStore
	notifications *NotificationService
	producer      OrderEventPublisher
	logger        *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(carts *CartStore, notifications *NotificationService, producer OrderEventPublisher, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		carts:         carts,
		notifications: notifications,
		producer:      producer,
		logger:        logger,
	}
}

// Checkout places an order from the session's current cart. An empty cart is
// a defensive no-op returning a nil order and no error. The cart snapshot
// and clear happen atomically under the session's cart lock, so a concurrent
// add either lands before the snapshot or into the fresh empty cart, never
// in between.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID, paymentMethod string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if paymentMethod == "" {
		return nil, apperrors.InvalidInput("payment method is required")
	}

	cart, ok := s.carts.PopCart(ctx, sessionID)
	if !ok {
		s.logger.DebugContext(ctx, "checkout on empty cart ignored",
			slog.String("session_id", sessionID),
		)
		return nil, nil
	}

	order := &domain.Order{
		ID:            uuid.New().String(),
		SessionID:     sessionID,
		TotalAmount:   cart.TotalAmount(),
		ItemCount:     cart.ItemCount(),
		PaymentMethod: paymentMethod,
		PlacedAt:      time.Now().UTC(),
	}

	// The order is committed from the user's point of view. Everything below
	// is fire-and-forget.
	if err := s.producer.PublishOrderConfirmed(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.confirmed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.notifications.NotifyOrderConfirmed(sessionID, domain.OrderSummary{
		Total:         order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
	})

	s.logger.InfoContext(ctx, "order placed",
		slog.String("session_id", sessionID),
		slog.String("order_id", order.ID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.Int("item_count", order.ItemCount),
		slog.String("payment_method", paymentMethod),
	)

	return order, nil
}
