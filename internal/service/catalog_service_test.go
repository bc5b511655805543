package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/petsupplies/internal/entity"
)

func TestCatalogService_ListProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.catalog.ListProducts(ctx, entity.ProductQuery{SortBy: entity.SortRating})
	require.NoError(t, err)
	require.Len(t, page.Products, 5)
	assert.Equal(t, "prod-002", page.Products[0].ID)
	assert.Equal(t, 1, page.TotalPages)

	lo, hi := decimal.NewFromInt(2000), decimal.NewFromInt(1000)
	_, err = f.catalog.ListProducts(ctx, entity.ProductQuery{MinPrice: &lo, MaxPrice: &hi})
	assert.True(t, entity.IsValidation(err))

	_, err = f.catalog.GetProduct(ctx, "prod-404")
	assert.True(t, entity.IsNotFound(err))
}

func TestCatalogService_SellerProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.catalog.now = func() time.Time { return now }

	created, err := f.catalog.CreateProduct(ctx, "seller-002", ProductInput{
		Name: "Parrot Toy", Price: decimal.NewFromInt(450), Category: "Bird Supplies", CountInStock: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "Avian World", created.SellerName)
	assert.True(t, created.IsNew)

	_, err = f.catalog.CreateProduct(ctx, "seller-002", ProductInput{Name: "", Price: decimal.NewFromInt(1)})
	assert.True(t, entity.IsValidation(err))

	_, err = f.catalog.UpdateProduct(ctx, "seller-001", created.ID, ProductInput{Name: "Stolen", Price: decimal.NewFromInt(1)})
	assert.True(t, entity.IsNotFound(err), "other sellers cannot see the product")

	updated, err := f.catalog.UpdateProduct(ctx, "seller-002", created.ID, ProductInput{
		Name: "Parrot Toy Deluxe", Price: decimal.NewFromInt(500), Category: "Bird Supplies", CountInStock: 18,
	})
	require.NoError(t, err)
	assert.Equal(t, "Parrot Toy Deluxe", updated.Name)
	assert.Equal(t, 18, updated.CountInStock)

	mine, err := f.catalog.ListSellerProducts(ctx, "seller-002")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assert.True(t, entity.IsNotFound(f.catalog.DeleteProduct(ctx, "seller-003", created.ID)))
	require.NoError(t, f.catalog.DeleteProduct(ctx, "seller-002", created.ID))
	_, err = f.catalog.GetProduct(ctx, created.ID)
	assert.True(t, entity.IsNotFound(err))
}
