package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/egannguyen/petsupplies/internal/entity"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedProducts returns the starter catalog. Rating and review counts are derived from
// SeedReviews by the repositories when seeding.
func SeedProducts() []entity.Product {
	return []entity.Product{
		{
			ID: "prod-001", Name: "Premium Dog Food", Brand: "PetDelight",
			Description: "High quality dog food for all breeds. Rich in protein and essential nutrients.",
			Price:       decimal.NewFromInt(1500), Category: "Dog Food", Subcategory: "Dry Food",
			Image:        "https://placehold.co/600x400?text=Dog+Food",
			CountInStock: 50, SellerID: "seller-001", SellerName: "Pet Supplies Co.",
			CreatedAt: mustTime("2023-02-01T09:00:00Z"), UpdatedAt: mustTime("2023-03-20T14:15:00Z"),
		},
		{
			ID: "prod-002", Name: "Cat Collar with Bell", Brand: "CatCare",
			Description: "Comfortable and adjustable cat collar with safety bell.",
			Price:       decimal.NewFromInt(500), Category: "Cat Accessories", Subcategory: "Collars",
			Image:        "https://placehold.co/600x400?text=Cat+Collar",
			CountInStock: 100, SellerID: "seller-001", SellerName: "Pet Supplies Co.",
			CreatedAt: mustTime("2023-02-10T10:30:00Z"), UpdatedAt: mustTime("2023-03-10T11:20:00Z"),
		},
		{
			ID: "prod-003", Name: "Bird Cage - Medium Size", Brand: "BirdLife",
			Description: "Spacious cage for small to medium sized birds with perches and feeders.",
			Price:       decimal.NewFromInt(2500), Category: "Bird Supplies", Subcategory: "Cages",
			Image:        "https://placehold.co/600x400?text=Bird+Cage",
			CountInStock: 30, SellerID: "seller-002", SellerName: "Avian World",
			CreatedAt: mustTime("2023-02-15T14:45:00Z"), UpdatedAt: mustTime("2023-02-15T14:45:00Z"),
		},
		{
			ID: "prod-004", Name: "Fish Tank - 20 Gallon", Brand: "AquaLife",
			Description: "Complete fish tank set with filter, light, and decorations.",
			Price:       decimal.NewFromInt(5000), Category: "Fish Supplies", Subcategory: "Aquariums",
			Image:        "https://placehold.co/600x400?text=Fish+Tank",
			CountInStock: 15, SellerID: "seller-003", SellerName: "Aquatic Pets",
			CreatedAt: mustTime("2023-02-20T09:15:00Z"), UpdatedAt: mustTime("2023-03-05T16:30:00Z"),
		},
		{
			ID: "prod-005", Name: "Aquarium Plants - Pack of 5", Brand: "AquaLife",
			Description: "Artificial plants for aquarium decoration. Safe for all fish.",
			Price:       decimal.NewFromInt(800), Category: "Fish Supplies", Subcategory: "Decor",
			Image:        "https://placehold.co/600x400?text=Aquarium+Plants",
			CountInStock: 45, IsSale: true, DiscountPrice: decimalPtr(650),
			SellerID: "seller-003", SellerName: "Aquatic Pets",
			CreatedAt: mustTime("2023-02-22T10:45:00Z"), UpdatedAt: mustTime("2023-02-22T10:45:00Z"),
		},
	}
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// SeedReviews returns the starter reviews for SeedProducts.
func SeedReviews() []entity.Review {
	return []entity.Review{
		{
			ID: "rev-001", ProductID: "prod-001", AuthorName: "John Doe", Rating: 5,
			Comment:   "My dog loves this food! Great quality.",
			CreatedAt: mustTime("2023-03-15T10:30:00Z"),
			SellerResponse: &entity.SellerResponse{
				Text: "Thank you for your feedback!", RespondedAt: mustTime("2023-03-16T08:45:00Z"),
			},
		},
		{
			ID: "rev-002", ProductID: "prod-001", AuthorName: "Sarah Smith", Rating: 4,
			Comment:   "Good quality but a bit pricey.",
			CreatedAt: mustTime("2023-03-20T14:15:00Z"),
		},
		{
			ID: "rev-003", ProductID: "prod-002", AuthorName: "Ali Khan", Rating: 5,
			Comment:   "Perfect fit for my cat and the bell is not too loud.",
			CreatedAt: mustTime("2023-03-10T11:20:00Z"),
			SellerResponse: &entity.SellerResponse{
				Text: "We are glad you like it!", RespondedAt: mustTime("2023-03-11T09:30:00Z"),
			},
		},
		{
			ID: "rev-004", ProductID: "prod-004", AuthorName: "Fatima Ahmed", Rating: 4,
			Comment:   "Good quality tank but arrived with a small scratch.",
			CreatedAt: mustTime("2023-03-05T16:30:00Z"),
		},
	}
}

// SeedSellers returns the starter seller accounts, all sharing one password.
func SeedSellers(password string) ([]entity.Seller, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}
	return []entity.Seller{
		{
			ID: "seller-001", Name: "Pet Supplies Co.", Email: "seller@example.com",
			Phone: "+923001234567", Address: "123 Business Street, Karachi", BusinessType: "Pet Store",
			Logo: "https://placehold.co/300x300?text=Pet+Supplies", RegistrationNumber: "REG-001-2023",
			JoinedAt: mustTime("2023-01-15T00:00:00Z"), PasswordHash: hash,
		},
		{
			ID: "seller-002", Name: "Avian World", Email: "avian@example.com",
			BusinessType: "Bird Supplies", JoinedAt: mustTime("2023-01-20T00:00:00Z"), PasswordHash: hash,
		},
		{
			ID: "seller-003", Name: "Aquatic Pets", Email: "aquatic@example.com",
			BusinessType: "Aquatics", JoinedAt: mustTime("2023-01-25T00:00:00Z"), PasswordHash: hash,
		},
	}, nil
}
