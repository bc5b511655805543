package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

const productColumns = "id, name, brand, description, price, image, category, subcategory, count_in_stock, rating, num_reviews, is_sale, discount_price, seller_id, seller_name, created_at, updated_at"

// Catalog implements ProductRepository and ReviewRepository on the products and reviews tables.
type Catalog struct {
	db *sql.DB
}

var (
	_ repository.ProductRepository = (*Catalog)(nil)
	_ repository.ReviewRepository  = (*Catalog)(nil)
)

// NewCatalog creates a Catalog backed by Postgres.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (entity.Product, error) {
	var p entity.Product
	var discount decimal.NullDecimal
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Description, &p.Price, &p.Image, &p.Category, &p.Subcategory,
		&p.CountInStock, &p.Rating, &p.NumReviews, &p.IsSale, &discount, &p.SellerID, &p.SellerName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return entity.Product{}, err
	}
	if discount.Valid {
		p.DiscountPrice = &discount.Decimal
	}
	return p, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause renders the filter part of q as SQL with positional args.
func whereClause(q entity.ProductQuery) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.Search != "" {
		p := arg("%" + likeEscaper.Replace(q.Search) + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR description ILIKE %[1]s OR category ILIKE %[1]s)", p))
	}
	if q.Category != "" {
		conds = append(conds, "LOWER(category) = LOWER("+arg(q.Category)+")")
	}
	if q.Subcategory != "" {
		conds = append(conds, "LOWER(subcategory) = LOWER("+arg(q.Subcategory)+")")
	}
	if q.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*q.MaxPrice))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(key entity.SortKey) string {
	switch key {
	case entity.SortPriceAsc:
		return " ORDER BY price ASC, seq ASC"
	case entity.SortPriceDesc:
		return " ORDER BY price DESC, seq ASC"
	case entity.SortRating:
		return " ORDER BY rating DESC, seq ASC"
	case entity.SortNewest:
		return " ORDER BY created_at DESC, seq ASC"
	default:
		return " ORDER BY seq ASC"
	}
}

func (r *Catalog) Query(ctx context.Context, q entity.ProductQuery) (entity.ProductPage, error) {
	q = q.Normalize()
	where, args := whereClause(q)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return entity.ProductPage{}, fmt.Errorf("failed to count products: %w", err)
	}

	n := len(args)
	query := "SELECT " + productColumns + " FROM products" + where + orderClause(q.SortBy) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, q.Limit, q.Offset(total))

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return entity.ProductPage{}, err
	}
	return entity.ProductPage{
		Products:   products,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: entity.TotalPages(total, q.Limit),
	}, nil
}

func (r *Catalog) queryProducts(ctx context.Context, query string, args ...any) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *Catalog) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NewNotFoundError("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", id, err)
	}
	return &p, nil
}

func (r *Catalog) FindBySeller(ctx context.Context, sellerID string) ([]entity.Product, error) {
	return r.queryProducts(ctx, "SELECT "+productColumns+" FROM products WHERE seller_id = $1 ORDER BY seq ASC", sellerID)
}

func (r *Catalog) Create(ctx context.Context, p entity.Product) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO products (id, name, brand, description, price, image, category, subcategory, count_in_stock, is_sale, discount_price, seller_id, seller_name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)",
		p.ID, p.Name, p.Brand, p.Description, p.Price, p.Image, p.Category, p.Subcategory, p.CountInStock,
		p.IsSale, nullDecimal(p.DiscountPrice), p.SellerID, p.SellerName, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.NewValidationError("id", "product already exists", p.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
	}
	return nil
}

func (r *Catalog) Update(ctx context.Context, p entity.Product) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET name = $1, brand = $2, description = $3, price = $4, image = $5, category = $6, subcategory = $7, count_in_stock = $8, is_sale = $9, discount_price = $10, seller_name = $11, updated_at = $12 WHERE id = $13",
		p.Name, p.Brand, p.Description, p.Price, p.Image, p.Category, p.Subcategory, p.CountInStock,
		p.IsSale, nullDecimal(p.DiscountPrice), p.SellerName, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", p.ID, err)
	}
	return expectOneRow(res, "product", p.ID)
}

func (r *Catalog) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return expectOneRow(res, "product", id)
}

func expectOneRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return entity.NewNotFoundError(resource, id)
	}
	return nil
}

// DecrementStock relies on the row lock taken by the conditional UPDATE; of two racing
// buyers for the last unit exactly one sees an affected row.
func (r *Catalog) DecrementStock(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return entity.NewValidationError("quantity", "must be at least 1", quantity)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET count_in_stock = count_in_stock - $1 WHERE id = $2 AND count_in_stock >= $1",
		quantity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update product stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	var available int
	err = r.db.QueryRowContext(ctx, "SELECT count_in_stock FROM products WHERE id = $1", id).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.NewNotFoundError("product", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read stock for product %s: %w", id, err)
	}
	return entity.NewInsufficientStockError(id, quantity, available)
}

func (r *Catalog) Seed(ctx context.Context, products []entity.Product, reviews []entity.Review) error {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil // already seeded
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO products (id, name, brand, description, price, image, category, subcategory, count_in_stock, is_sale, discount_price, seller_id, seller_name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)",
			p.ID, p.Name, p.Brand, p.Description, p.Price, p.Image, p.Category, p.Subcategory, p.CountInStock,
			p.IsSale, nullDecimal(p.DiscountPrice), p.SellerID, p.SellerName, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}
	for _, rv := range reviews {
		if err := insertReview(ctx, tx, rv); err != nil {
			return fmt.Errorf("failed to seed review %s: %w", rv.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, refreshAllRatingsSQL); err != nil {
		return fmt.Errorf("failed to compute seeded ratings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
