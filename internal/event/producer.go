package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flashmart/storefront/internal/domain"
	pkgkafka "github.com/flashmart/storefront/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicOrderConfirmed = "storefront.order.confirmed"
	TopicSaleUpdated    = "storefront.sale.updated"
)

// saleKey keys all sale.updated events onto one partition; there is a single
// sale slot, so the events form one ordered stream.
const saleKey = "sale"

// Source identifier for events originating from the storefront service.
const SourceStorefront = "storefront-service"

// OrderConfirmedData is the payload for an order.confirmed event.
type OrderConfirmedData struct {
	OrderID       string `json:"order_id"`
	SessionID     string `json:"session_id"`
	TotalAmount   int64  `json:"total_amount"`
	ItemCount     int    `json:"item_count"`
	PaymentMethod string `json:"payment_method"`
}

// SaleUpdatedData is the payload for a sale.updated event.
type SaleUpdatedData struct {
	Active   bool `json:"is_active"`
	Discount int  `json:"discount"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderConfirmed publishes an order.confirmed event.
func (p *Producer) PublishOrderConfirmed(ctx context.Context, order *domain.Order) error {
	data := OrderConfirmedData{
		OrderID:       order.ID,
		SessionID:     order.SessionID,
		TotalAmount:   order.TotalAmount,
		ItemCount:     order.ItemCount,
		PaymentMethod: order.PaymentMethod,
	}

	event, err := pkgkafka.NewEvent(TopicOrderConfirmed, order.ID, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.confirmed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderConfirmed, event); err != nil {
		return fmt.Errorf("publish order.confirmed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.confirmed event",
		slog.String("order_id", order.ID),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return nil
}

// PublishSaleUpdated publishes a sale.updated event.
func (p *Producer) PublishSaleUpdated(ctx context.Context, sale domain.SaleInfo) error {
	data := SaleUpdatedData{
		Active:   sale.Active,
		Discount: sale.Discount,
	}

	event, err := pkgkafka.NewEvent(TopicSaleUpdated, saleKey, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create sale.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSaleUpdated, event); err != nil {
		return fmt.Errorf("publish sale.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published sale.updated event",
		slog.Bool("is_active", sale.Active),
		slog.Int("discount", sale.Discount),
	)

	return nil
}
