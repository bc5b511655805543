package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NewProductWindow is how long after creation a product is flagged as new.
const NewProductWindow = 30 * 24 * time.Hour

// Product represents a product in the store.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	Image         string           `json:"image"`
	Category      string           `json:"category"`
	Subcategory   string           `json:"subcategory,omitempty"`
	CountInStock  int              `json:"countInStock"`
	Rating        float64          `json:"rating"`
	NumReviews    int              `json:"numReviews"`
	IsNew         bool             `json:"isNew"`
	IsSale        bool             `json:"isSale"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	SellerID      string           `json:"sellerId"`
	SellerName    string           `json:"sellerName"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// MarkNew sets IsNew relative to now.
func (p *Product) MarkNew(now time.Time) {
	p.IsNew = !p.CreatedAt.IsZero() && now.Sub(p.CreatedAt) <= NewProductWindow
}

// Validate checks the fields a seller controls.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "cannot be empty", p.Name)
	}
	if p.Price.IsNegative() {
		return NewValidationError("price", "must be non-negative", p.Price.String())
	}
	if p.CountInStock < 0 {
		return NewValidationError("countInStock", "must be non-negative", p.CountInStock)
	}
	if p.DiscountPrice != nil {
		if p.DiscountPrice.IsNegative() {
			return NewValidationError("discountPrice", "must be non-negative", p.DiscountPrice.String())
		}
		if p.DiscountPrice.GreaterThan(p.Price) {
			return NewValidationError("discountPrice", "must not exceed price", p.DiscountPrice.String())
		}
	}
	return nil
}

// SortKey selects the ordering of a product query.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps the query parameter to a SortKey. Empty and "relevance" mean featured.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortFeatured, "relevance":
		return SortFeatured, nil
	case SortPriceAsc:
		return SortPriceAsc, nil
	case SortPriceDesc:
		return SortPriceDesc, nil
	case SortRating:
		return SortRating, nil
	case SortNewest:
		return SortNewest, nil
	}
	return "", NewValidationError("sortBy", "unknown sort key", s)
}

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ProductQuery filters, sorts and paginates the catalog.
type ProductQuery struct {
	Search      string
	Category    string
	Subcategory string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	SortBy      SortKey
	Page        int
	Limit       int
}

// Normalize fills defaults and clamps paging.
func (q ProductQuery) Normalize() ProductQuery {
	if q.SortBy == "" {
		q.SortBy = SortFeatured
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Validate rejects an inverted price range.
func (q ProductQuery) Validate() error {
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return NewValidationError("minPrice", "must not exceed maxPrice", q.MinPrice.String())
	}
	return nil
}

// Matches reports whether p passes the query's filters.
func (q ProductQuery) Matches(p Product) bool {
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			return false
		}
	}
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.Subcategory != "" && !strings.EqualFold(p.Subcategory, q.Subcategory) {
		return false
	}
	if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	return true
}

// ProductPage is the single response shape of a catalog query.
type ProductPage struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// SortProducts orders ps in place. Featured keeps catalog order; ties keep it too.
func SortProducts(ps []Product, key SortKey) {
	var less func(a, b Product) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	case SortNewest:
		less = func(a, b Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

// Offset is the index of the page's first product, clamped to total.
// Pages past the end never multiply out, so huge page numbers cannot overflow.
func (q ProductQuery) Offset(total int) int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > total/q.Limit {
		return total
	}
	return min((q.Page-1)*q.Limit, total)
}

// Paginate slices an already filtered and sorted result set for q.
func Paginate(ps []Product, q ProductQuery) ProductPage {
	total := len(ps)
	start := q.Offset(total)
	end := start + q.Limit
	if end > total {
		end = total
	}
	return ProductPage{
		Products:   append([]Product{}, ps[start:end]...),
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: TotalPages(total, q.Limit),
	}
}
