package domain

import "time"

// CartItem is a single cart entry. The price fields are a snapshot captured
// when the item was first added: catalog price changes after that point do
// not alter an already-added item's contribution to the total.
type CartItem struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	OriginalPrice int64  `json:"original_price,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	Quantity      int    `json:"quantity"`
}

// Cart holds a session's shopping cart. Items preserve insertion order for
// display stability; no product ID appears twice; quantities are always >= 1
// (a zero-quantity entry is removed, never stored).
type Cart struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TotalAmount calculates the total price of all items in the cart (in cents),
// using the prices captured at add time.
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of items in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the cart item with the given product ID.
// Returns -1 if not found.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
