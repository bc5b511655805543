package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

// ProductInput is the seller-editable part of a product.
type ProductInput struct {
	Name          string           `json:"name"`
	Brand         string           `json:"brand"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	Image         string           `json:"image"`
	Category      string           `json:"category"`
	Subcategory   string           `json:"subcategory"`
	CountInStock  int              `json:"countInStock"`
	IsSale        bool             `json:"isSale"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
}

func (in ProductInput) apply(p *entity.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Brand = in.Brand
	p.Description = in.Description
	p.Price = in.Price
	p.Image = in.Image
	p.Category = in.Category
	p.Subcategory = in.Subcategory
	p.CountInStock = in.CountInStock
	p.IsSale = in.IsSale
	p.DiscountPrice = in.DiscountPrice
}

// CatalogService serves product queries and seller product management.
type CatalogService struct {
	products repository.ProductRepository
	sellers  repository.SellerRepository
	now      func() time.Time
}

func NewCatalogService(products repository.ProductRepository, sellers repository.SellerRepository) *CatalogService {
	return &CatalogService{products: products, sellers: sellers, now: time.Now}
}

func (s *CatalogService) markNew(ps []entity.Product) {
	now := s.now()
	for i := range ps {
		ps[i].MarkNew(now)
	}
}

// ListProducts filters, sorts and paginates the catalog. No match yields an empty page.
func (s *CatalogService) ListProducts(ctx context.Context, q entity.ProductQuery) (entity.ProductPage, error) {
	if err := q.Validate(); err != nil {
		return entity.ProductPage{}, err
	}
	page, err := s.products.Query(ctx, q.Normalize())
	if err != nil {
		return entity.ProductPage{}, fmt.Errorf("failed to query products: %w", err)
	}
	s.markNew(page.Products)
	return page, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.MarkNew(s.now())
	return p, nil
}

func (s *CatalogService) ListSellerProducts(ctx context.Context, sellerID string) ([]entity.Product, error) {
	ps, err := s.products.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	s.markNew(ps)
	return ps, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, sellerID string, in ProductInput) (*entity.Product, error) {
	seller, err := s.sellers.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := entity.Product{
		ID:         uuid.NewString(),
		SellerID:   seller.ID,
		SellerName: seller.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	in.apply(&p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Service: Creating product", "product_id", p.ID, "seller_id", sellerID)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	p.MarkNew(now)
	return &p, nil
}

// owned loads a product and hides it from sellers who do not own it.
func (s *CatalogService) owned(ctx context.Context, sellerID, productID string) (*entity.Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, entity.NewNotFoundError("product", productID)
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, sellerID, productID string, in ProductInput) (*entity.Product, error) {
	p, err := s.owned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	p.UpdatedAt = s.now()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Service: Updating product", "product_id", productID, "seller_id", sellerID)
	if err := s.products.Update(ctx, *p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.GetProduct(ctx, productID)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, sellerID, productID string) error {
	if _, err := s.owned(ctx, sellerID, productID); err != nil {
		return err
	}
	slog.Info("Service: Deleting product", "product_id", productID, "seller_id", sellerID)
	return s.products.Delete(ctx, productID)
}
