package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
	"github.com/flashmart/storefront/internal/repository"
)

// SaleEventPublisher publishes sale lifecycle events. *event.Producer
// satisfies this.
type SaleEventPublisher interface {
	PublishSaleUpdated(ctx context.Context, sale domain.SaleInfo) error
}

// SaleAdminService is the authoritative write path for the sale state. Only
// the admin surface uses it; storefront sessions observe writes through
// their pollers.
type SaleAdminService struct {
	repo     repository.SaleRepository
	producer SaleEventPublisher
	logger   *slog.Logger
}

// NewSaleAdminService creates a new sale admin service.
func NewSaleAdminService(repo repository.SaleRepository, producer SaleEventPublisher, logger *slog.Logger) *SaleAdminService {
	return &SaleAdminService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// SetSale validates and persists a new sale state, replacing the previous
// one wholesale. A deactivated sale is stored with a zero discount so no
// stale percentage can linger.
func (s *SaleAdminService) SetSale(ctx context.Context, sale domain.SaleInfo) (domain.SaleInfo, error) {
	if !sale.Valid() {
		return domain.SaleInfo{}, apperrors.InvalidInput(
			fmt.Sprintf("discount must be between %d and %d", domain.MinDiscountPercent, domain.MaxDiscountPercent),
		)
	}
	if !sale.Active {
		sale.Discount = 0
	}

	if err := s.repo.Set(ctx, sale); err != nil {
		return domain.SaleInfo{}, fmt.Errorf("set sale state: %w", err)
	}

	if err := s.producer.PublishSaleUpdated(ctx, sale); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish sale.updated event",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "sale state updated",
		slog.Bool("is_active", sale.Active),
		slog.Int("discount", sale.Discount),
	)

	return sale, nil
}

// GetSale returns the stored sale state as written, without pricing
// normalization, for the admin view.
func (s *SaleAdminService) GetSale(ctx context.Context) (domain.SaleInfo, error) {
	sale, err := s.repo.Get(ctx)
	if err != nil {
		return domain.SaleInfo{}, fmt.Errorf("get sale state: %w", err)
	}
	return sale, nil
}
