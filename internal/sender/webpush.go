package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/flashmart/storefront/internal/domain"
	"github.com/flashmart/storefront/pkg/httpclient"
)

// WebPushSender dispatches order confirmations to the push delivery service
// over HTTP. Delivery calls run through a circuit breaker so a degraded push
// backend cannot pile up blocked requests.
type WebPushSender struct {
	client   *httpclient.CircuitBreakerClient
	endpoint string
	logger   *slog.Logger
}

// NewWebPushSender creates a web-push dispatcher targeting the given
// delivery endpoint.
func NewWebPushSender(client *httpclient.CircuitBreakerClient, endpoint string, logger *slog.Logger) *WebPushSender {
	return &WebPushSender{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Name returns the dispatcher channel name.
func (s *WebPushSender) Name() string {
	return "webpush"
}

type subscriptionRequest struct {
	Subscription string `json:"subscription"`
}

// Register adds the subscription handle to the push delivery service.
func (s *WebPushSender) Register(ctx context.Context, handle string) error {
	return s.postSubscription(ctx, s.endpoint+"/subscriptions", handle)
}

// Unregister removes the subscription handle from the push delivery service.
func (s *WebPushSender) Unregister(ctx context.Context, handle string) error {
	return s.postSubscription(ctx, s.endpoint+"/subscriptions/remove", handle)
}

func (s *WebPushSender) postSubscription(ctx context.Context, url, handle string) error {
	payload, err := json.Marshal(subscriptionRequest{Subscription: handle})
	if err != nil {
		return fmt.Errorf("marshal subscription request: %w", err)
	}

	resp, err := s.client.Post(ctx, url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("push subscription call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push delivery returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

type dispatchRequest struct {
	Subscription string              `json:"subscription"`
	Summary      domain.OrderSummary `json:"summary"`
}

// Dispatch posts the order summary to the push delivery service for the
// given subscription handle.
func (s *WebPushSender) Dispatch(ctx context.Context, handle string, summary domain.OrderSummary) error {
	payload, err := json.Marshal(dispatchRequest{
		Subscription: handle,
		Summary:      summary,
	})
	if err != nil {
		return fmt.Errorf("marshal dispatch request: %w", err)
	}

	resp, err := s.client.Post(ctx, s.endpoint+"/notifications/order-confirmation", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("dispatch order confirmation: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push delivery returned status %d: %s", resp.StatusCode, string(body))
	}

	s.logger.DebugContext(ctx, "order confirmation dispatched",
		slog.Int64("total", summary.Total),
		slog.String("payment_method", summary.PaymentMethod),
	)

	return nil
}
