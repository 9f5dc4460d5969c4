package domain

// Product is an immutable catalog record. The catalog owns products; the
// cart and sale core only read them.
type Product struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	OriginalPrice int64  `json:"original_price,omitempty"`
	ImageURL      string `json:"image_url"`
	Category      string `json:"category"`
	FlashSale     bool   `json:"flash_sale"`
}

// Valid reports whether the product satisfies catalog invariants: price is
// non-negative and the original price, when set, is not below the current one.
func (p *Product) Valid() bool {
	if p.ID == "" || p.Price < 0 {
		return false
	}
	if p.OriginalPrice != 0 && p.OriginalPrice < p.Price {
		return false
	}
	return true
}
