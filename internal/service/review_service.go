package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/metrics"
	"github.com/egannguyen/petsupplies/internal/repository"
)

// ReviewService appends buyer reviews and seller responses.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, m *metrics.Metrics) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, metrics: m, now: time.Now}
}

// AddReview stores a review and returns it with the product carrying the recomputed rating.
func (s *ReviewService) AddReview(ctx context.Context, productID, author string, rating int, comment string) (*entity.Review, *entity.Product, error) {
	r := entity.Review{
		ID:         uuid.NewString(),
		ProductID:  productID,
		AuthorName: strings.TrimSpace(author),
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		CreatedAt:  s.now(),
	}
	if err := r.Validate(); err != nil {
		return nil, nil, err
	}

	p, err := s.reviews.Append(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	if s.metrics != nil {
		s.metrics.ReviewsAdded.Inc()
	}
	slog.Info("Service: Review added", "product_id", productID, "rating", rating, "num_reviews", p.NumReviews)
	p.MarkNew(s.now())
	return &r, p, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, productID string) ([]entity.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

func (s *ReviewService) ListSellerReviews(ctx context.Context, sellerID string) ([]entity.SellerReview, error) {
	out, err := s.reviews.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller reviews: %w", err)
	}
	return out, nil
}

// Respond sets or replaces the seller response on a review of one of the seller's products.
func (s *ReviewService) Respond(ctx context.Context, sellerID, productID, reviewID, text string) (*entity.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, entity.NewValidationError("response", "cannot be empty", text)
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, entity.NewNotFoundError("product", productID)
	}

	slog.Info("Service: Responding to review", "product_id", productID, "review_id", reviewID, "seller_id", sellerID)
	return s.reviews.SetResponse(ctx, productID, reviewID, entity.SellerResponse{Text: text, RespondedAt: s.now()})
}
