package repository

import (
	"context"

	"github.com/flashmart/storefront/internal/domain"
)

// SaleRepository defines the authoritative sale-state store. The admin write
// path calls Set; every storefront poller observes the result through Get.
type SaleRepository interface {
	// Get retrieves the current sale state. A store that has never been
	// written returns the zero (inactive) SaleInfo, not an error.
	Get(ctx context.Context) (domain.SaleInfo, error)

	// Set replaces the sale state wholesale (last-write-wins, no merge).
	Set(ctx context.Context, sale domain.SaleInfo) error
}

// ProductRepository defines read access to the product catalog.
type ProductRepository interface {
	// List returns all catalog products in stable order.
	List(ctx context.Context) ([]domain.Product, error)

	// Get retrieves a product by its ID.
	Get(ctx context.Context, id string) (*domain.Product, error)
}
