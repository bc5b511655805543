package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/egannguyen/petsupplies/internal/cartstore"
	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

const sessionStripes = 64

// CartService applies cart operations to the stored cart of one session.
// Operations on one session are serialized; distinct sessions proceed in parallel.
type CartService struct {
	store    cartstore.Store
	products repository.ProductRepository
	stripes  [sessionStripes]sync.Mutex
}

func NewCartService(store cartstore.Store, products repository.ProductRepository) *CartService {
	return &CartService{store: store, products: products}
}

func (s *CartService) lock(sessionID string) func() {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	mu := &s.stripes[h.Sum32()%sessionStripes]
	mu.Lock()
	return mu.Unlock
}

// mutate loads the cart, applies fn and saves it only when fn succeeds.
func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*entity.Cart) error) (*entity.Cart, error) {
	defer s.lock(sessionID)()

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (*entity.Cart, error) {
	defer s.lock(sessionID)()
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

// AddItem validates against the product's live stock.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*entity.Cart, error) {
	slog.Debug("Service: Adding item to cart", "session_id", sessionID, "product_id", productID, "quantity", quantity)

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(c *entity.Cart) error {
		return c.AddItem(*product, quantity)
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*entity.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *entity.Cart) error {
		return c.UpdateQuantity(productID, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*entity.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *entity.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (*entity.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *entity.Cart) error {
		c.Clear()
		return nil
	})
}

// settle hands the session's cart to fn while holding the session lock and
// clears the cart only if fn succeeds.
func (s *CartService) settle(ctx context.Context, sessionID string, fn func(*entity.Cart) error) error {
	_, err := s.mutate(ctx, sessionID, func(c *entity.Cart) error {
		if err := fn(c); err != nil {
			return err
		}
		c.Clear()
		return nil
	})
	return err
}
