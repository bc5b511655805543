package entity

import (
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// SellerResponse is the product owner's reply to a review.
type SellerResponse struct {
	Text        string    `json:"text"`
	RespondedAt time.Time `json:"respondedAt"`
}

// Review represents a product review submitted by a buyer.
type Review struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	AuthorName     string          `json:"authorName"`
	Rating         int             `json:"rating"`
	Comment        string          `json:"comment"`
	CreatedAt      time.Time       `json:"createdAt"`
	SellerResponse *SellerResponse `json:"sellerResponse,omitempty"`
}

// Validate checks rating bounds and required text.
func (r Review) Validate() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return NewValidationError("rating", "must be between 1 and 5", r.Rating)
	}
	if strings.TrimSpace(r.AuthorName) == "" {
		return NewValidationError("user", "cannot be empty", r.AuthorName)
	}
	if strings.TrimSpace(r.Comment) == "" {
		return NewValidationError("comment", "cannot be empty", r.Comment)
	}
	return nil
}

// SellerReview is a review annotated with the product it belongs to.
type SellerReview struct {
	Review
	ProductName  string `json:"productName"`
	ProductImage string `json:"productImage"`
}

// RatingSummary contains aggregate review statistics for a product.
type RatingSummary struct {
	Average float64 `json:"rating"`
	Count   int     `json:"numReviews"`
}

// Summarize computes the average rating and count of reviews.
func Summarize(reviews []Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return RatingSummary{
		Average: float64(sum) / float64(len(reviews)),
		Count:   len(reviews),
	}
}
