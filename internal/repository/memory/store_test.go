package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

func TestOrderRepository(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)

	first := entity.Order{
		ID:        "ord-1",
		Items:     []entity.OrderItem{{ProductID: "prod-001", Price: decimal.NewFromInt(1500), Quantity: 1, SellerID: "seller-001"}},
		Status:    entity.StatusPending,
		CreatedAt: base,
	}
	second := entity.Order{
		ID:        "ord-2",
		Items:     []entity.OrderItem{{ProductID: "prod-003", Price: decimal.NewFromInt(2500), Quantity: 1, SellerID: "seller-002"}},
		Status:    entity.StatusPending,
		CreatedAt: base.Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.True(t, entity.IsValidation(repo.Create(ctx, first)))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ord-2", all[0].ID)

	mine, err := repo.FindBySeller(ctx, "seller-001")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ord-1", mine[0].ID)

	updated, err := repo.UpdateStatus(ctx, "ord-1", entity.StatusShipped, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusShipped, updated.Status)

	_, err = repo.UpdateStatus(ctx, "ord-404", entity.StatusShipped, base)
	assert.True(t, entity.IsNotFound(err))
	_, err = repo.FindByID(ctx, "ord-404")
	assert.True(t, entity.IsNotFound(err))
}

func TestSellerRepository(t *testing.T) {
	repo := NewSellerRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, entity.Seller{ID: "s1", Name: "Pet Co", Email: "Shop@Example.com"}))
	assert.True(t, entity.IsValidation(repo.Create(ctx, entity.Seller{ID: "s2", Email: "shop@example.com"})))

	s, err := repo.FindByEmail(ctx, " shop@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)

	_, err = repo.FindByID(ctx, "s9")
	assert.True(t, entity.IsNotFound(err))
}

func TestEventStore_ExpectedVersion(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	placed := entity.OrderPlaced{OrderID: "ord-1", TotalAmount: decimal.NewFromInt(10)}
	require.NoError(t, store.SaveEvents(ctx, "ord-1", entity.StreamOrder, 0, []entity.Event{placed}))

	err := store.SaveEvents(ctx, "ord-1", entity.StreamOrder, 0, []entity.Event{placed})
	assert.True(t, errors.Is(err, repository.ErrConcurrencyConflict))

	changed := entity.OrderStatusChanged{OrderID: "ord-1", From: entity.StatusPending, To: entity.StatusProcessing}
	require.NoError(t, store.SaveEvents(ctx, "ord-1", entity.StreamOrder, 1, []entity.Event{changed}))

	records, err := store.LoadEvents(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[1].Version)
	assert.Equal(t, "OrderStatusChanged", records[1].EventType)

	agg := entity.NewOrderAggregate("ord-1")
	require.NoError(t, agg.Rehydrate(records))
	assert.Equal(t, entity.StatusProcessing, agg.Order.Status)
}
