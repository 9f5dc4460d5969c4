package domain

import "time"

// Order is the user-visible result of a successful checkout. The order is
// not remotely persisted by this service; downstream consumers observe it
// through the order.confirmed event.
type Order struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	TotalAmount   int64     `json:"total_amount"`
	ItemCount     int       `json:"item_count"`
	PaymentMethod string    `json:"payment_method"`
	PlacedAt      time.Time `json:"placed_at"`
}

// OrderSummary is the payload dispatched with an order-confirmation
// notification.
type OrderSummary struct {
	Total         int64  `json:"total"`
	PaymentMethod string `json:"payment_method"`
}
