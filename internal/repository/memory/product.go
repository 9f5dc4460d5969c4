package memory

import (
	"context"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
)

// ProductRepository is an in-memory catalog. The catalog is an external
// collaborator in this system; this repository keeps it at interface
// fidelity with a seeded, immutable product list.
type ProductRepository struct {
	products []domain.Product
	byID     map[string]int
}

// NewProductRepository creates a catalog repository over the given products.
func NewProductRepository(products []domain.Product) *ProductRepository {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &ProductRepository{products: products, byID: byID}
}

// NewSeededProductRepository creates a catalog with the default demo seed.
func NewSeededProductRepository() *ProductRepository {
	return NewProductRepository(defaultCatalog())
}

// List returns all catalog products in stable order.
func (r *ProductRepository) List(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// Get retrieves a product by its ID.
func (r *ProductRepository) Get(_ context.Context, id string) (*domain.Product, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	p := r.products[i]
	return &p, nil
}

func defaultCatalog() []domain.Product {
	return []domain.Product{
		{ID: "prod-001", Name: "Wireless Headphones", Price: 7999, OriginalPrice: 12999, ImageURL: "https://img.flashmart.dev/headphones.jpg", Category: "electronics", FlashSale: true},
		{ID: "prod-002", Name: "Smart Watch", Price: 14999, OriginalPrice: 19999, ImageURL: "https://img.flashmart.dev/watch.jpg", Category: "electronics", FlashSale: true},
		{ID: "prod-003", Name: "Running Shoes", Price: 8999, ImageURL: "https://img.flashmart.dev/shoes.jpg", Category: "sports", FlashSale: false},
		{ID: "prod-004", Name: "Backpack", Price: 4599, ImageURL: "https://img.flashmart.dev/backpack.jpg", Category: "accessories", FlashSale: false},
		{ID: "prod-005", Name: "Coffee Maker", Price: 6499, OriginalPrice: 8999, ImageURL: "https://img.flashmart.dev/coffee.jpg", Category: "home", FlashSale: true},
		{ID: "prod-006", Name: "Desk Lamp", Price: 2999, ImageURL: "https://img.flashmart.dev/lamp.jpg", Category: "home", FlashSale: false},
	}
}
