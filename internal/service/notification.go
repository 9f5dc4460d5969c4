package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
	"github.com/flashmart/storefront/internal/sender"
)

// Default bounds for notification round-trips.
const (
	DefaultSubscribeTimeout = 10 * time.Second
	DefaultDispatchTimeout  = 15 * time.Second
)

var orderDispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_order_dispatch_total",
		Help: "Order-confirmation dispatch attempts, by outcome",
	},
	[]string{"outcome"},
)

// NotificationService manages the push-subscription lifecycle per session
// and fires the order-confirmation side effect after checkout. Subscription
// transitions are strictly sequential: while a subscribe or unsubscribe is
// in flight, further calls for the same session are rejected.
type NotificationService struct {
	dispatcher       sender.Dispatcher
	registrar        sender.Registrar
	logger           *slog.Logger
	supported        bool
	subscribeTimeout time.Duration
	dispatchTimeout  time.Duration

	mu   sync.Mutex
	subs map[string]*domain.Subscription

	// dispatches tracks in-flight fire-and-forget deliveries so Close can
	// drain them on shutdown.
	dispatches sync.WaitGroup
}

// NotificationConfig holds the tunables for the notification service.
type NotificationConfig struct {
	SubscribeTimeout time.Duration
	DispatchTimeout  time.Duration
}

// NewNotificationService creates a notification service. Passing a nil
// dispatcher or registrar marks push as unsupported for the whole process;
// the capability is decided once here and never re-derived.
func NewNotificationService(dispatcher sender.Dispatcher, registrar sender.Registrar, cfg NotificationConfig, logger *slog.Logger) *NotificationService {
	if cfg.SubscribeTimeout <= 0 {
		cfg.SubscribeTimeout = DefaultSubscribeTimeout
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = DefaultDispatchTimeout
	}
	return &NotificationService{
		dispatcher:       dispatcher,
		registrar:        registrar,
		logger:           logger,
		supported:        dispatcher != nil && registrar != nil,
		subscribeTimeout: cfg.SubscribeTimeout,
		dispatchTimeout:  cfg.DispatchTimeout,
		subs:             make(map[string]*domain.Subscription),
	}
}

// Supported reports whether push notifications are available. The flag is
// fixed at construction time.
func (s *NotificationService) Supported() bool {
	return s.supported
}

// State returns the session's current subscription record.
func (s *NotificationService) State(sessionID string) domain.Subscription {
	if !s.supported {
		return domain.Subscription{SessionID: sessionID, State: domain.SubscriptionStateUnsupported}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.subs[sessionID]; ok {
		return *sub
	}
	return domain.Subscription{SessionID: sessionID, State: domain.SubscriptionStateNotSubscribed}
}

// Subscribe registers the session's push handle with the delivery service.
// The transition is not_subscribed -> pending -> subscribed; on failure or
// timeout the state reverts to not_subscribed and the error is reported to
// the caller, never treated as fatal.
func (s *NotificationService) Subscribe(ctx context.Context, sessionID, handle string) (domain.Subscription, error) {
	if sessionID == "" {
		return domain.Subscription{}, apperrors.InvalidInput("session id is required")
	}
	if handle == "" {
		return domain.Subscription{}, apperrors.InvalidInput("subscription handle is required")
	}
	if !s.supported {
		return s.State(sessionID), apperrors.InvalidInput("push notifications are not supported")
	}

	sub, err := s.beginTransition(sessionID, domain.SubscriptionStateNotSubscribed)
	if err != nil {
		return sub, err
	}

	regCtx, cancel := context.WithTimeout(ctx, s.subscribeTimeout)
	defer cancel()

	if err := s.registrar.Register(regCtx, handle); err != nil {
		s.settle(sessionID, domain.SubscriptionStateNotSubscribed, "")

		s.logger.WarnContext(ctx, "push subscribe failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)

		if errors.Is(err, context.DeadlineExceeded) {
			return s.State(sessionID), apperrors.Timeout("push subscription did not complete in time")
		}
		return s.State(sessionID), apperrors.ServiceUnavailable("push subscription failed")
	}

	result := s.settle(sessionID, domain.SubscriptionStateSubscribed, handle)

	s.logger.InfoContext(ctx, "push subscription registered",
		slog.String("session_id", sessionID),
	)

	return result, nil
}

// Unsubscribe mirrors Subscribe in the opposite direction.
func (s *NotificationService) Unsubscribe(ctx context.Context, sessionID string) (domain.Subscription, error) {
	if sessionID == "" {
		return domain.Subscription{}, apperrors.InvalidInput("session id is required")
	}
	if !s.supported {
		return s.State(sessionID), apperrors.InvalidInput("push notifications are not supported")
	}

	sub, err := s.beginTransition(sessionID, domain.SubscriptionStateSubscribed)
	if err != nil {
		return sub, err
	}
	handle := sub.Handle

	regCtx, cancel := context.WithTimeout(ctx, s.subscribeTimeout)
	defer cancel()

	if err := s.registrar.Unregister(regCtx, handle); err != nil {
		s.settle(sessionID, domain.SubscriptionStateSubscribed, handle)

		s.logger.WarnContext(ctx, "push unsubscribe failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)

		if errors.Is(err, context.DeadlineExceeded) {
			return s.State(sessionID), apperrors.Timeout("push unsubscription did not complete in time")
		}
		return s.State(sessionID), apperrors.ServiceUnavailable("push unsubscription failed")
	}

	result := s.settle(sessionID, domain.SubscriptionStateNotSubscribed, "")

	s.logger.InfoContext(ctx, "push subscription removed",
		slog.String("session_id", sessionID),
	)

	return result, nil
}

// beginTransition moves the session into pending if it currently sits in the
// required state. A session already pending is rejected so two permission
// round-trips can never interleave.
func (s *NotificationService) beginTransition(sessionID, from string) (domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[sessionID]
	if !ok {
		sub = &domain.Subscription{
			SessionID: sessionID,
			State:     domain.SubscriptionStateNotSubscribed,
		}
		s.subs[sessionID] = sub
	}

	switch {
	case sub.State == domain.SubscriptionStatePending:
		return *sub, apperrors.Conflict("a subscription change is already in progress")
	case sub.State != from:
		return *sub, apperrors.Conflict("subscription is not in state " + from)
	}

	prev := *sub
	sub.State = domain.SubscriptionStatePending
	sub.UpdatedAt = time.Now().UTC()
	// Keep the previous handle so a failed unsubscribe can restore it.
	return prev, nil
}

// settle finalizes a pending transition.
func (s *NotificationService) settle(sessionID, state, handle string) domain.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[sessionID]
	if !ok {
		sub = &domain.Subscription{SessionID: sessionID}
		s.subs[sessionID] = sub
	}
	sub.State = state
	sub.Handle = handle
	sub.UpdatedAt = time.Now().UTC()
	return *sub
}

// NotifyOrderConfirmed fires the order-confirmation dispatch for the session
// if, and only if, it is currently subscribed. The delivery runs in the
// background with its own deadline: it never blocks the caller and its
// failure is logged, never returned. At most one dispatch is issued per
// call.
func (s *NotificationService) NotifyOrderConfirmed(sessionID string, summary domain.OrderSummary) {
	if !s.supported {
		return
	}

	s.mu.Lock()
	sub, ok := s.subs[sessionID]
	subscribed := ok && sub.State == domain.SubscriptionStateSubscribed
	var handle string
	if subscribed {
		handle = sub.Handle
	}
	s.mu.Unlock()

	if !subscribed {
		return
	}

	s.dispatches.Add(1)
	go func() {
		defer s.dispatches.Done()

		// Detached from the request context: checkout must not wait on this.
		ctx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
		defer cancel()

		if err := s.dispatcher.Dispatch(ctx, handle, summary); err != nil {
			orderDispatchTotal.WithLabelValues("failure").Inc()
			s.logger.Warn("order confirmation dispatch failed",
				slog.String("session_id", sessionID),
				slog.String("channel", s.dispatcher.Name()),
				slog.String("error", err.Error()),
			)
			return
		}

		orderDispatchTotal.WithLabelValues("success").Inc()
	}()
}

// Close waits for in-flight dispatches to finish.
func (s *NotificationService) Close() {
	s.dispatches.Wait()
}
