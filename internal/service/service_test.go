package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egannguyen/petsupplies/internal/cartstore"
	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/metrics"
	"github.com/egannguyen/petsupplies/internal/repository"
	"github.com/egannguyen/petsupplies/internal/repository/memory"
)

type published struct {
	topic, key string
	payload    []byte
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, payload: b})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.topic)
	}
	return out
}

type fixture struct {
	repos     *repository.Repositories
	carts     *CartService
	orders    *OrderService
	reviews   *ReviewService
	catalog   *CatalogService
	publisher *recordingPublisher
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepositories()
	require.NoError(t, repos.Products.Seed(ctx, repository.SeedProducts(), repository.SeedReviews()))
	sellers, err := repository.SeedSellers("password123")
	require.NoError(t, err)
	for _, s := range sellers {
		require.NoError(t, repos.Sellers.Create(ctx, s))
	}

	m := metrics.New()
	pub := &recordingPublisher{}
	carts := NewCartService(cartstore.NewMemoryStore(), repos.Products)
	return &fixture{
		repos:     repos,
		carts:     carts,
		orders:    NewOrderService(repos.Orders, repos.Products, repos.Events, carts, pub, m),
		reviews:   NewReviewService(repos.Reviews, repos.Products, m),
		catalog:   NewCatalogService(repos.Products, repos.Sellers),
		publisher: pub,
		metrics:   m,
	}
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.repos.Products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.CountInStock
}

func validDetails() entity.CustomerDetails {
	return entity.CustomerDetails{
		FullName:      "Sarah Khan",
		Email:         "sarah@example.com",
		Phone:         "+923211234567",
		Address:       "456 Park Avenue",
		City:          "Lahore",
		PostalCode:    "54000",
		PaymentMethod: entity.PaymentCashOnDelivery,
	}
}
