package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReview_Validate(t *testing.T) {
	tests := []struct {
		name      string
		review    Review
		wantField string
	}{
		{"valid", Review{AuthorName: "John", Rating: 5, Comment: "Great"}, ""},
		{"rating too low", Review{AuthorName: "John", Rating: 0, Comment: "Great"}, "rating"},
		{"rating too high", Review{AuthorName: "John", Rating: 6, Comment: "Great"}, "rating"},
		{"empty author", Review{AuthorName: "  ", Rating: 3, Comment: "Great"}, "user"},
		{"empty comment", Review{AuthorName: "John", Rating: 3, Comment: ""}, "comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.review.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			ve, ok := err.(*ValidationError)
			if assert.True(t, ok, "expected ValidationError, got %T", err) {
				assert.Equal(t, tt.wantField, ve.Field)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, RatingSummary{}, Summarize(nil))

	s := Summarize([]Review{{Rating: 4}, {Rating: 5}, {Rating: 5}})
	assert.Equal(t, 3, s.Count)
	assert.True(t, math.Abs(s.Average-14.0/3.0) < 1e-12)
}
