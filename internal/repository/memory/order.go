package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

type orderRepository struct {
	mu     sync.RWMutex
	orders map[string]entity.Order
}

// NewOrderRepository creates an in-memory OrderRepository.
func NewOrderRepository() repository.OrderRepository {
	return &orderRepository{orders: make(map[string]entity.Order)}
}

func cloneOrder(o entity.Order) entity.Order {
	o.Items = append([]entity.OrderItem(nil), o.Items...)
	o.SellerTotal = nil
	return o
}

func (r *orderRepository) Create(ctx context.Context, o entity.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[o.ID]; exists {
		return entity.NewValidationError("id", "order already exists", o.ID)
	}
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, entity.NewNotFoundError("order", id)
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *orderRepository) list(match func(entity.Order) bool) []entity.Order {
	r.mu.RLock()
	out := make([]entity.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if match(o) {
			out = append(out, cloneOrder(o))
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *orderRepository) FindAll(ctx context.Context) ([]entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.list(func(entity.Order) bool { return true }), nil
}

func (r *orderRepository) FindBySeller(ctx context.Context, sellerID string) ([]entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.list(func(o entity.Order) bool {
		_, ok := o.SellerSubtotal(sellerID)
		return ok
	}), nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, at time.Time) (*entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, entity.NewNotFoundError("order", id)
	}
	o.Status = status
	o.UpdatedAt = at
	r.orders[id] = o
	o = cloneOrder(o)
	return &o, nil
}
