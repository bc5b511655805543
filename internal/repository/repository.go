package repository

import (
	"context"
	"errors"
	"time"

	"github.com/egannguyen/petsupplies/internal/entity"
)

// ErrConcurrencyConflict is returned by SaveEvents when the stream moved past expectedVersion.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ProductRepository handles persistence for Products and their reviews.
type ProductRepository interface {
	Query(ctx context.Context, q entity.ProductQuery) (entity.ProductPage, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	FindBySeller(ctx context.Context, sellerID string) ([]entity.Product, error)
	Create(ctx context.Context, p entity.Product) error
	Update(ctx context.Context, p entity.Product) error
	Delete(ctx context.Context, id string) error
	// DecrementStock reduces countInStock by quantity iff enough stock remains.
	// Concurrent calls on one product are serialized; the loser gets InsufficientStock.
	DecrementStock(ctx context.Context, id string, quantity int) error
	// Seed inserts initial products and reviews if the catalog is empty.
	Seed(ctx context.Context, products []entity.Product, reviews []entity.Review) error
}

// ReviewRepository handles persistence for product reviews.
type ReviewRepository interface {
	// Append stores a review and recomputes the product rating atomically.
	Append(ctx context.Context, r entity.Review) (*entity.Product, error)
	ListByProduct(ctx context.Context, productID string) ([]entity.Review, error)
	ListBySeller(ctx context.Context, sellerID string) ([]entity.SellerReview, error)
	SetResponse(ctx context.Context, productID, reviewID string, resp entity.SellerResponse) (*entity.Review, error)
}

// OrderRepository handles persistence for Orders.
type OrderRepository interface {
	Create(ctx context.Context, o entity.Order) error
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	FindAll(ctx context.Context) ([]entity.Order, error)
	FindBySeller(ctx context.Context, sellerID string) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, at time.Time) (*entity.Order, error)
}

// SellerRepository handles persistence for seller accounts.
type SellerRepository interface {
	Create(ctx context.Context, s entity.Seller) error
	FindByID(ctx context.Context, id string) (*entity.Seller, error)
	FindByEmail(ctx context.Context, email string) (*entity.Seller, error)
}

// EventStore handles appending and loading events for an aggregate stream.
type EventStore interface {
	SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error
	LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error)
}

// Repositories bundles the storage backends used by the services.
type Repositories struct {
	Products ProductRepository
	Reviews  ReviewRepository
	Orders   OrderRepository
	Sellers  SellerRepository
	Events   EventStore
	Close    func() error
}
