package cartstore

import (
	"context"
	"sync"

	"github.com/egannguyen/petsupplies/internal/entity"
)

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]entity.CartItem
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]entity.CartItem)}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*entity.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart := entity.NewCart(sessionID)
	cart.Items = append(cart.Items, s.carts[sessionID]...)
	return cart, nil
}

func (s *MemoryStore) Save(ctx context.Context, cart *entity.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart.IsEmpty() {
		delete(s.carts, cart.SessionID)
		return nil
	}
	s.carts[cart.SessionID] = cart.Snapshot()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
