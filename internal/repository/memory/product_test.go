package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/flashmart/storefront/pkg/errors"

	"github.com/flashmart/storefront/internal/domain"
)

func TestProductRepository_List(t *testing.T) {
	repo := NewProductRepository([]domain.Product{
		{ID: "p1", Name: "One", Price: 100},
		{ID: "p2", Name: "Two", Price: 200},
	})

	products, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p2", products[1].ID)
}

func TestProductRepository_ListReturnsCopy(t *testing.T) {
	repo := NewProductRepository([]domain.Product{{ID: "p1", Price: 100}})
	ctx := context.Background()

	first, err := repo.List(ctx)
	require.NoError(t, err)
	first[0].Price = 9999

	second, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), second[0].Price)
}

func TestProductRepository_Get(t *testing.T) {
	repo := NewProductRepository([]domain.Product{{ID: "p1", Name: "One", Price: 100}})

	product, err := repo.Get(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "One", product.Name)
}

func TestProductRepository_GetUnknown(t *testing.T) {
	repo := NewProductRepository(nil)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSeededCatalog(t *testing.T) {
	repo := NewSeededProductRepository()

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, products)

	for _, p := range products {
		assert.True(t, p.Valid(), "seeded product %q must be valid", p.ID)
	}
}
