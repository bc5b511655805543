package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/petsupplies/internal/entity"
)

func TestAddReview_RecomputesRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// prod-001 is seeded with ratings 4 and 5
	review, product, err := f.reviews.AddReview(ctx, "prod-001", "Ayesha", 5, "Excellent")
	require.NoError(t, err)
	assert.Equal(t, "Ayesha", review.AuthorName)
	assert.Equal(t, 3, product.NumReviews)
	assert.InDelta(t, 14.0/3.0, product.Rating, 1e-12)

	reviews, err := f.reviews.ListReviews(ctx, "prod-001")
	require.NoError(t, err)
	assert.Len(t, reviews, 3)
}

func TestAddReview_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		rating  int
		author  string
		comment string
	}{
		{"rating zero", 0, "A", "ok"},
		{"rating six", 6, "A", "ok"},
		{"blank author", 4, "   ", "ok"},
		{"blank comment", 4, "A", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.reviews.AddReview(ctx, "prod-001", tt.author, tt.rating, tt.comment)
			assert.True(t, entity.IsValidation(err))
		})
	}

	_, _, err := f.reviews.AddReview(ctx, "ghost", "A", 4, "ok")
	assert.True(t, entity.IsNotFound(err))

	p, err := f.catalog.GetProduct(ctx, "prod-001")
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumReviews, "rejected reviews leave the product untouched")
}

func TestRespond(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.reviews.Respond(ctx, "seller-001", "prod-001", "rev-002", "Thanks, we are working on prices")
	require.NoError(t, err)
	require.NotNil(t, r.SellerResponse)
	first := r.SellerResponse.RespondedAt

	r, err = f.reviews.Respond(ctx, "seller-001", "prod-001", "rev-002", "Edited reply")
	require.NoError(t, err)
	assert.Equal(t, "Edited reply", r.SellerResponse.Text)
	assert.False(t, r.SellerResponse.RespondedAt.Before(first))

	_, err = f.reviews.Respond(ctx, "seller-002", "prod-001", "rev-002", "not mine")
	assert.True(t, entity.IsNotFound(err))

	_, err = f.reviews.Respond(ctx, "seller-001", "prod-001", "rev-404", "hello")
	assert.True(t, entity.IsNotFound(err))

	_, err = f.reviews.Respond(ctx, "seller-001", "prod-001", "rev-002", "  ")
	assert.True(t, entity.IsValidation(err))

	mine, err := f.reviews.ListSellerReviews(ctx, "seller-003")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Fish Tank - 20 Gallon", mine[0].ProductName)
}
