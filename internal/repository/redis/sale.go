package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/flashmart/storefront/internal/domain"
)

const saleKey = "storefront:sale"

// SaleRepository implements repository.SaleRepository using Redis. The sale
// state lives in a single JSON-encoded key so writes are atomic wholesale
// replacements.
type SaleRepository struct {
	client *redis.Client
}

// NewSaleRepository creates a new Redis-backed sale repository.
func NewSaleRepository(client *redis.Client) *SaleRepository {
	return &SaleRepository{client: client}
}

// Get retrieves the current sale state. A missing key means no sale has ever
// been configured and returns the zero (inactive) value.
func (r *SaleRepository) Get(ctx context.Context) (domain.SaleInfo, error) {
	data, err := r.client.Get(ctx, saleKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.SaleInfo{}, nil
		}
		return domain.SaleInfo{}, fmt.Errorf("redis get sale: %w", err)
	}

	var sale domain.SaleInfo
	if err := json.Unmarshal(data, &sale); err != nil {
		return domain.SaleInfo{}, fmt.Errorf("unmarshal sale: %w", err)
	}

	return sale, nil
}

// Set replaces the sale state. No TTL: the sale persists until the next
// admin write.
func (r *SaleRepository) Set(ctx context.Context, sale domain.SaleInfo) error {
	data, err := json.Marshal(sale)
	if err != nil {
		return fmt.Errorf("marshal sale: %w", err)
	}

	if err := r.client.Set(ctx, saleKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set sale: %w", err)
	}

	return nil
}
