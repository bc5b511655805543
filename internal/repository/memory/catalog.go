// Package memory holds in-process repository implementations used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

// productRecord owns one product and its reviews. mu serializes stock and rating writes.
type productRecord struct {
	mu      sync.Mutex
	product entity.Product
	reviews []entity.Review
}

// Catalog stores products and reviews. It implements both
// repository.ProductRepository and repository.ReviewRepository.
type Catalog struct {
	mu      sync.RWMutex
	records map[string]*productRecord
	order   []string
}

var (
	_ repository.ProductRepository = (*Catalog)(nil)
	_ repository.ReviewRepository  = (*Catalog)(nil)
)

func NewCatalog() *Catalog {
	return &Catalog{records: make(map[string]*productRecord)}
}

func cloneProduct(p entity.Product) entity.Product {
	if p.DiscountPrice != nil {
		d := *p.DiscountPrice
		p.DiscountPrice = &d
	}
	return p
}

func cloneReview(r entity.Review) entity.Review {
	if r.SellerResponse != nil {
		resp := *r.SellerResponse
		r.SellerResponse = &resp
	}
	return r
}

func (c *Catalog) record(id string) (*productRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	if !ok {
		return nil, entity.NewNotFoundError("product", id)
	}
	return rec, nil
}

// snapshot copies every product in catalog order.
func (c *Catalog) snapshot() []entity.Product {
	c.mu.RLock()
	recs := make([]*productRecord, 0, len(c.order))
	for _, id := range c.order {
		recs = append(recs, c.records[id])
	}
	c.mu.RUnlock()

	out := make([]entity.Product, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, cloneProduct(rec.product))
		rec.mu.Unlock()
	}
	return out
}

func (c *Catalog) Query(ctx context.Context, q entity.ProductQuery) (entity.ProductPage, error) {
	if err := ctx.Err(); err != nil {
		return entity.ProductPage{}, err
	}
	q = q.Normalize()
	matched := make([]entity.Product, 0)
	for _, p := range c.snapshot() {
		if q.Matches(p) {
			matched = append(matched, p)
		}
	}
	entity.SortProducts(matched, q.SortBy)
	return entity.Paginate(matched, q), nil
}

func (c *Catalog) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := c.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	p := cloneProduct(rec.product)
	rec.mu.Unlock()
	return &p, nil
}

func (c *Catalog) FindBySeller(ctx context.Context, sellerID string) ([]entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0)
	for _, p := range c.snapshot() {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) Create(ctx context.Context, p entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.records[p.ID]; exists {
		return entity.NewValidationError("id", "product already exists", p.ID)
	}
	c.records[p.ID] = &productRecord{product: cloneProduct(p)}
	c.order = append(c.order, p.ID)
	return nil
}

// Update replaces the editable fields of a product. Rating and review count stay owned by the catalog.
func (c *Catalog) Update(ctx context.Context, p entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := c.record(p.ID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	p.Rating = rec.product.Rating
	p.NumReviews = rec.product.NumReviews
	p.CreatedAt = rec.product.CreatedAt
	rec.product = cloneProduct(p)
	return nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[id]; !ok {
		return entity.NewNotFoundError("product", id)
	}
	delete(c.records, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *Catalog) DecrementStock(ctx context.Context, id string, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if quantity < 1 {
		return entity.NewValidationError("quantity", "must be at least 1", quantity)
	}
	rec, err := c.record(id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.product.CountInStock < quantity {
		return entity.NewInsufficientStockError(id, quantity, rec.product.CountInStock)
	}
	rec.product.CountInStock -= quantity
	return nil
}

func (c *Catalog) Seed(ctx context.Context, products []entity.Product, reviews []entity.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.records) > 0 {
		return nil // already seeded
	}
	for _, p := range products {
		c.records[p.ID] = &productRecord{product: cloneProduct(p)}
		c.order = append(c.order, p.ID)
	}
	for _, r := range reviews {
		rec, ok := c.records[r.ProductID]
		if !ok {
			continue
		}
		rec.reviews = append(rec.reviews, cloneReview(r))
	}
	for _, rec := range c.records {
		summary := entity.Summarize(rec.reviews)
		rec.product.Rating = summary.Average
		rec.product.NumReviews = summary.Count
	}
	return nil
}

func (c *Catalog) Append(ctx context.Context, r entity.Review) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := c.record(r.ProductID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.reviews = append(rec.reviews, cloneReview(r))
	summary := entity.Summarize(rec.reviews)
	rec.product.Rating = summary.Average
	rec.product.NumReviews = summary.Count
	p := cloneProduct(rec.product)
	return &p, nil
}

func (c *Catalog) ListByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := c.record(productID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]entity.Review, 0, len(rec.reviews))
	for _, r := range rec.reviews {
		out = append(out, cloneReview(r))
	}
	return out, nil
}

// ListBySeller returns reviews across all of a seller's products, newest first.
func (c *Catalog) ListBySeller(ctx context.Context, sellerID string) ([]entity.SellerReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	recs := make([]*productRecord, 0, len(c.order))
	for _, id := range c.order {
		recs = append(recs, c.records[id])
	}
	c.mu.RUnlock()

	out := make([]entity.SellerReview, 0)
	for _, rec := range recs {
		rec.mu.Lock()
		if rec.product.SellerID == sellerID {
			for _, r := range rec.reviews {
				out = append(out, entity.SellerReview{
					Review:       cloneReview(r),
					ProductName:  rec.product.Name,
					ProductImage: rec.product.Image,
				})
			}
		}
		rec.mu.Unlock()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c *Catalog) SetResponse(ctx context.Context, productID, reviewID string, resp entity.SellerResponse) (*entity.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := c.record(productID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := range rec.reviews {
		if rec.reviews[i].ID == reviewID {
			rec.reviews[i].SellerResponse = &resp
			r := cloneReview(rec.reviews[i])
			return &r, nil
		}
	}
	return nil, entity.NewNotFoundError("review", reviewID)
}
