package entity

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_MarkNewAndValidate(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := Product{Name: "Fish Tank", Price: decimal.NewFromInt(5000), CreatedAt: now.Add(-10 * 24 * time.Hour)}
	p.MarkNew(now)
	assert.True(t, p.IsNew)

	p.CreatedAt = now.Add(-31 * 24 * time.Hour)
	p.MarkNew(now)
	assert.False(t, p.IsNew)

	assert.NoError(t, p.Validate())
	p.CountInStock = -1
	assert.True(t, IsValidation(p.Validate()))

	discount := decimal.NewFromInt(6000)
	p.CountInStock = 1
	p.DiscountPrice = &discount
	assert.True(t, IsValidation(p.Validate()))
}

func TestProductQuery(t *testing.T) {
	q := ProductQuery{Limit: 1000, Page: -3}.Normalize()
	assert.Equal(t, MaxPageSize, q.Limit)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, SortFeatured, q.SortBy)

	p := Product{Name: "Premium Dog Food", Description: "Rich in protein", Category: "Dog Food", Price: decimal.NewFromInt(1500)}
	assert.True(t, ProductQuery{Search: "PROTEIN"}.Matches(p))
	assert.True(t, ProductQuery{Search: "dog food"}.Matches(p))
	assert.False(t, ProductQuery{Search: "cat"}.Matches(p))

	lo, hi := decimal.NewFromInt(1500), decimal.NewFromInt(1500)
	assert.True(t, ProductQuery{MinPrice: &lo, MaxPrice: &hi}.Matches(p), "price bounds are inclusive")

	assert.True(t, IsValidation(ProductQuery{MinPrice: &hi, MaxPrice: func() *decimal.Decimal { d := decimal.NewFromInt(1); return &d }()}.Validate()))

	_, err := ParseSortKey("cheapest")
	assert.True(t, IsValidation(err))
	k, err := ParseSortKey("relevance")
	assert.NoError(t, err)
	assert.Equal(t, SortFeatured, k)

	assert.Equal(t, 0, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
}

func TestSortAndPaginate(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	catalog := func() []Product {
		return []Product{
			{ID: "a", Price: decimal.NewFromInt(300), Rating: 4, CreatedAt: base},
			{ID: "b", Price: decimal.NewFromInt(100), Rating: 5, CreatedAt: base.Add(2 * time.Hour)},
			{ID: "c", Price: decimal.NewFromInt(200), Rating: 4, CreatedAt: base.Add(time.Hour)},
		}
	}
	ids := func(ps []Product) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortFeatured, []string{"a", "b", "c"}},
		{SortPriceAsc, []string{"b", "c", "a"}},
		{SortPriceDesc, []string{"a", "c", "b"}},
		{SortRating, []string{"b", "a", "c"}},
		{SortNewest, []string{"b", "c", "a"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			ps := catalog()
			SortProducts(ps, tt.key)
			assert.Equal(t, tt.want, ids(ps))
		})
	}

	page := Paginate(catalog(), ProductQuery{Page: 2, Limit: 2})
	assert.Equal(t, []string{"c"}, ids(page.Products))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	empty := Paginate(catalog(), ProductQuery{Page: 5, Limit: 2})
	assert.Empty(t, empty.Products)
	assert.NotNil(t, empty.Products)
}

func TestProductQuery_Offset(t *testing.T) {
	tests := []struct {
		name  string
		query ProductQuery
		total int
		want  int
	}{
		{"first page", ProductQuery{Page: 1, Limit: 12}, 30, 0},
		{"middle page", ProductQuery{Page: 2, Limit: 12}, 30, 12},
		{"last partial page", ProductQuery{Page: 3, Limit: 12}, 30, 24},
		{"one past the end", ProductQuery{Page: 4, Limit: 12}, 30, 30},
		{"page whose offset overflows int", ProductQuery{Page: 2305843009213693954, Limit: 12}, 30, 30},
		{"max int page", ProductQuery{Page: math.MaxInt, Limit: MaxPageSize}, 5, 5},
		{"empty catalog", ProductQuery{Page: 3, Limit: 12}, 0, 0},
		{"unnormalized page", ProductQuery{Page: -1, Limit: 12}, 30, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Offset(tt.total))
		})
	}
}

func TestPaginate_HugePageIsEmpty(t *testing.T) {
	ps := []Product{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	q := ProductQuery{Page: 2305843009213693954}.Normalize()

	var page ProductPage
	require.NotPanics(t, func() { page = Paginate(ps, q) })
	assert.Empty(t, page.Products)
	assert.NotNil(t, page.Products)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, q.Page, page.Page)
}
