package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

type sellerRepository struct {
	mu      sync.RWMutex
	sellers map[string]entity.Seller
	byEmail map[string]string
}

// NewSellerRepository creates an in-memory SellerRepository.
func NewSellerRepository() repository.SellerRepository {
	return &sellerRepository{
		sellers: make(map[string]entity.Seller),
		byEmail: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *sellerRepository) Create(ctx context.Context, s entity.Seller) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[emailKey(s.Email)]; taken {
		return entity.NewValidationError("email", "already registered", s.Email)
	}
	if _, exists := r.sellers[s.ID]; exists {
		return entity.NewValidationError("id", "seller already exists", s.ID)
	}
	r.sellers[s.ID] = s
	r.byEmail[emailKey(s.Email)] = s.ID
	return nil
}

func (r *sellerRepository) FindByID(ctx context.Context, id string) (*entity.Seller, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sellers[id]
	if !ok {
		return nil, entity.NewNotFoundError("seller", id)
	}
	return &s, nil
}

func (r *sellerRepository) FindByEmail(ctx context.Context, email string) (*entity.Seller, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, entity.NewNotFoundError("seller", email)
	}
	s := r.sellers[id]
	return &s, nil
}
