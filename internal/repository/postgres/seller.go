package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

const sellerColumns = "id, name, email, phone, address, business_type, logo, registration_number, joined_at, password_hash"

type sellerRepository struct {
	db *sql.DB
}

// NewSellerRepository creates a new SellerRepository backed by Postgres.
func NewSellerRepository(db *sql.DB) repository.SellerRepository {
	return &sellerRepository{db: db}
}

func (r *sellerRepository) Create(ctx context.Context, s entity.Seller) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sellers ("+sellerColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		s.ID, s.Name, strings.ToLower(strings.TrimSpace(s.Email)), s.Phone, s.Address, s.BusinessType,
		s.Logo, s.RegistrationNumber, s.JoinedAt, s.PasswordHash,
	)
	if isUniqueViolation(err) {
		return entity.NewValidationError("email", "already registered", s.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to insert seller: %w", err)
	}
	return nil
}

func (r *sellerRepository) findOne(ctx context.Context, where, key string) (*entity.Seller, error) {
	var s entity.Seller
	err := r.db.QueryRowContext(ctx, "SELECT "+sellerColumns+" FROM sellers WHERE "+where, key).Scan(
		&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.BusinessType, &s.Logo, &s.RegistrationNumber, &s.JoinedAt, &s.PasswordHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NewNotFoundError("seller", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query seller: %w", err)
	}
	return &s, nil
}

func (r *sellerRepository) FindByID(ctx context.Context, id string) (*entity.Seller, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *sellerRepository) FindByEmail(ctx context.Context, email string) (*entity.Seller, error) {
	return r.findOne(ctx, "email = $1", strings.ToLower(strings.TrimSpace(email)))
}
