package domain

// Discount bounds for a storefront-wide sale.
const (
	MinDiscountPercent = 0
	MaxDiscountPercent = 100
)

// SaleInfo is the admin-controlled storefront-wide sale state. One instance
// is shared per storefront process, refreshed by polling; only the admin
// write path mutates the authoritative copy.
type SaleInfo struct {
	Active   bool `json:"is_active"`
	Discount int  `json:"discount"`
}

// Valid reports whether the discount is within bounds.
func (s SaleInfo) Valid() bool {
	return s.Discount >= MinDiscountPercent && s.Discount <= MaxDiscountPercent
}

// Normalize returns the sale state as it must behave for pricing: a
// zero-percent sale has no observable effect, so it renders as inactive,
// and an inactive sale never retains a stale nonzero discount.
func (s SaleInfo) Normalize() SaleInfo {
	if !s.Active || s.Discount == 0 {
		return SaleInfo{}
	}
	return s
}

// DiscountedPrice applies the sale discount to the given price in cents.
// Inactive and zero-percent sales leave the price unchanged.
func (s SaleInfo) DiscountedPrice(price int64) int64 {
	n := s.Normalize()
	if !n.Active {
		return price
	}
	return price - price*int64(n.Discount)/100
}
