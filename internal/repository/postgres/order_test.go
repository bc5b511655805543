package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

func TestOrderRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepository(db)
	now := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	order := entity.Order{
		ID:              "ord-1",
		CustomerDetails: entity.CustomerDetails{FullName: "Sarah Khan", Email: "sarah@example.com"},
		Items: []entity.OrderItem{
			{ProductID: "prod-001", Name: "Premium Dog Food", Price: decimal.NewFromInt(1500), Quantity: 2, SellerID: "seller-001"},
		},
		TotalAmount: decimal.NewFromInt(3000),
		Status:      entity.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("ord-1", sqlmock.AnyArg(), sqlmock.AnyArg(), "pending", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO order_items"))
	prep.ExpectExec().
		WithArgs("ord-1", 0, "prod-001", "Premium Dog Food", sqlmock.AnyArg(), 2, "", "seller-001").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepository(db)
	now := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, customer_details, total_amount, status, created_at, updated_at FROM orders WHERE id = $1")).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_details", "total_amount", "status", "created_at", "updated_at"}).
			AddRow("ord-1", []byte(`{"fullName":"Sarah Khan","paymentMethod":"cod"}`), "3000.00", "shipped", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "name", "price", "quantity", "image", "seller_id"}).
			AddRow("ord-1", "prod-001", "Premium Dog Food", "1500.00", 2, "", "seller-001"))

	o, err := repo.FindByID(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusShipped, o.Status)
	assert.Equal(t, "Sarah Khan", o.CustomerDetails.FullName)
	require.Len(t, o.Items, 1)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(3000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("shipped", sqlmock.AnyArg(), "ord-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = NewOrderRepository(db).UpdateStatus(context.Background(), "ord-404", entity.StatusShipped, time.Now())
	assert.True(t, entity.IsNotFound(err))
}

func TestSellerRepository_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sellers")).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err = NewSellerRepository(db).Create(context.Background(), entity.Seller{ID: "s1", Email: "Shop@Example.com"})
	assert.True(t, entity.IsValidation(err))
}

func TestEventStore_ConcurrencyConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1")).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))
	mock.ExpectRollback()

	err = NewEventStore(db).SaveEvents(context.Background(), "ord-1", entity.StreamOrder, 1,
		[]entity.Event{entity.OrderStatusChanged{OrderID: "ord-1", To: entity.StatusShipped}})
	assert.True(t, errors.Is(err, repository.ErrConcurrencyConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventStore_SaveAndLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewEventStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1")).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events (" + eventColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7), ($8, $9, $10, $11, $12, $13, $14)")).
		WithArgs(
			sqlmock.AnyArg(), "ord-1", entity.StreamOrder, 1, "OrderPlaced", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), "ord-1", entity.StreamOrder, 2, "OrderStatusChanged", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, store.SaveEvents(context.Background(), "ord-1", entity.StreamOrder, 0, []entity.Event{
		entity.OrderPlaced{OrderID: "ord-1"},
		entity.OrderStatusChanged{OrderID: "ord-1", From: entity.StatusPending, To: entity.StatusProcessing},
	}))

	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE stream_id = $1 ORDER BY version ASC")).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "stream_id", "stream_type", "version", "event_type", "payload", "created_at"}).
			AddRow("e1", "ord-1", entity.StreamOrder, 1, "OrderPlaced", []byte(`{"order_id":"ord-1"}`), time.Now()))

	records, err := store.LoadEvents(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "OrderPlaced", records[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventStore_UniqueViolationIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1")).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	err = NewEventStore(db).SaveEvents(context.Background(), "ord-1", entity.StreamOrder, 1,
		[]entity.Event{entity.OrderStatusChanged{OrderID: "ord-1", To: entity.StatusShipped}})
	assert.True(t, errors.Is(err, repository.ErrConcurrencyConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}
