package postgres

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/petsupplies/internal/entity"
)

func newMock(t *testing.T) (*Catalog, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCatalog(db), mock
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows(strings.Split(productColumns, ", "))
}

func addProduct(rows *sqlmock.Rows, id, price string, stock int) *sqlmock.Rows {
	created := time.Date(2023, 2, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "Premium Dog Food", "PetDelight", "High quality", price, "img", "Dog Food", "Dry Food",
		stock, 4.5, 2, false, nil, "seller-001", "Pet Supplies Co.", created, created)
}

func TestCatalog_DecrementStock(t *testing.T) {
	ctx := context.Background()
	update := regexp.QuoteMeta("UPDATE products SET count_in_stock = count_in_stock - $1 WHERE id = $2 AND count_in_stock >= $1")
	lookup := regexp.QuoteMeta("SELECT count_in_stock FROM products WHERE id = $1")

	t.Run("success", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec(update).WithArgs(2, "prod-001").WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DecrementStock(ctx, "prod-001", 2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient stock", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec(update).WithArgs(1, "prod-001").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(lookup).WithArgs("prod-001").WillReturnRows(sqlmock.NewRows([]string{"count_in_stock"}).AddRow(0))

		err := repo.DecrementStock(ctx, "prod-001", 1)
		assert.True(t, entity.IsInsufficientStock(err))
		assert.Contains(t, err.Error(), "available: 0, requested: 1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown product", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec(update).WithArgs(1, "ghost").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(lookup).WithArgs("ghost").WillReturnRows(sqlmock.NewRows([]string{"count_in_stock"}))

		assert.True(t, entity.IsNotFound(repo.DecrementStock(ctx, "ghost", 1)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCatalog_Query(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE (name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1) AND LOWER(category) = LOWER($2)")).
		WithArgs("%dog%", "Dog Food").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE (name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1) AND LOWER(category) = LOWER($2) ORDER BY price ASC, seq ASC LIMIT $3 OFFSET $4")).
		WithArgs("%dog%", "Dog Food", 12, 12).
		WillReturnRows(addProduct(productRows(), "prod-001", "1500.00", 50))

	page, err := repo.Query(ctx, entity.ProductQuery{Search: "dog", Category: "Dog Food", SortBy: entity.SortPriceAsc, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 13, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "1500", page.Products[0].Price.String())
	assert.Nil(t, page.Products[0].DiscountPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_QueryPastLastPage(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products ORDER BY seq ASC LIMIT $1 OFFSET $2")).
		WithArgs(12, 5).
		WillReturnRows(productRows())

	page, err := repo.Query(context.Background(), entity.ProductQuery{Page: 2305843009213693954})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Equal(t, 5, page.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWhereClause_EscapesLikePatterns(t *testing.T) {
	where, args := whereClause(entity.ProductQuery{Search: "50%_off"})
	assert.Contains(t, where, "ILIKE $1")
	assert.Equal(t, []any{`%50\%\_off%`}, args)

	where, args = whereClause(entity.ProductQuery{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestCatalog_FindByIDNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs("ghost").
		WillReturnRows(productRows())

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.True(t, entity.IsNotFound(err))
}

func TestCatalog_AppendReview(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()
	rv := entity.Review{ID: "rev-9", ProductID: "prod-001", AuthorName: "Ayesha", Rating: 5, Comment: "Great", CreatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs("prod-001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("prod-001"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews")).
		WithArgs("rev-9", "prod-001", "Ayesha", 5, "Great", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET")).
		WithArgs("prod-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs("prod-001").
		WillReturnRows(addProduct(productRows(), "prod-001", "1500", 50))
	mock.ExpectCommit()

	p, err := repo.Append(ctx, rv)
	require.NoError(t, err)
	assert.Equal(t, "prod-001", p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_AppendReviewUnknownProduct(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Append(context.Background(), entity.Review{ProductID: "ghost", Rating: 3})
	assert.True(t, entity.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_SetResponseNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE reviews SET response_text = $1, responded_at = $2 WHERE id = $3 AND product_id = $4 RETURNING")).
		WithArgs("Thanks", sqlmock.AnyArg(), "rev-404", "prod-001").
		WillReturnRows(sqlmock.NewRows(strings.Split(reviewColumns, ", ")))

	_, err := repo.SetResponse(context.Background(), "prod-001", "rev-404", entity.SellerResponse{Text: "Thanks", RespondedAt: time.Now()})
	assert.True(t, entity.IsNotFound(err))
}

func TestCatalog_DeleteMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.True(t, entity.IsNotFound(repo.Delete(context.Background(), "ghost")))
}
