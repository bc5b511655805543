package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/petsupplies/internal/entity"
)

const reviewColumns = "id, product_id, author_name, rating, comment, created_at, response_text, responded_at"

const refreshRatingSQL = `UPDATE products SET
	rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = $1),
	num_reviews = (SELECT COUNT(*) FROM reviews WHERE product_id = $1)
	WHERE id = $1`

const refreshAllRatingsSQL = `UPDATE products p SET
	rating = COALESCE((SELECT AVG(r.rating) FROM reviews r WHERE r.product_id = p.id), 0),
	num_reviews = (SELECT COUNT(*) FROM reviews r WHERE r.product_id = p.id)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertReview(ctx context.Context, db execer, rv entity.Review) error {
	var respText sql.NullString
	var respAt sql.NullTime
	if rv.SellerResponse != nil {
		respText = sql.NullString{String: rv.SellerResponse.Text, Valid: true}
		respAt = sql.NullTime{Time: rv.SellerResponse.RespondedAt, Valid: true}
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO reviews (id, product_id, author_name, rating, comment, created_at, response_text, responded_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		rv.ID, rv.ProductID, rv.AuthorName, rv.Rating, rv.Comment, rv.CreatedAt, respText, respAt,
	)
	return err
}

func scanReview(row rowScanner, extra ...any) (entity.Review, error) {
	var rv entity.Review
	var respText sql.NullString
	var respAt sql.NullTime
	dest := append([]any{&rv.ID, &rv.ProductID, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.CreatedAt, &respText, &respAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return entity.Review{}, err
	}
	if respText.Valid {
		rv.SellerResponse = &entity.SellerResponse{Text: respText.String, RespondedAt: respAt.Time}
	}
	return rv, nil
}

// Append locks the product row so concurrent reviews recompute the rating one at a time.
func (r *Catalog) Append(ctx context.Context, rv entity.Review) (*entity.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked string
	err = tx.QueryRowContext(ctx, "SELECT id FROM products WHERE id = $1 FOR UPDATE", rv.ProductID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NewNotFoundError("product", rv.ProductID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock product %s: %w", rv.ProductID, err)
	}

	if err := insertReview(ctx, tx, rv); err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}
	if _, err := tx.ExecContext(ctx, refreshRatingSQL, rv.ProductID); err != nil {
		return nil, fmt.Errorf("failed to refresh product rating: %w", err)
	}

	p, err := scanProduct(tx.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", rv.ProductID))
	if err != nil {
		return nil, fmt.Errorf("failed to reload product %s: %w", rv.ProductID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &p, nil
}

func (r *Catalog) ListByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	if _, err := r.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE product_id = $1 ORDER BY created_at ASC", productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]entity.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}
	return reviews, nil
}

func (r *Catalog) ListBySeller(ctx context.Context, sellerID string) ([]entity.SellerReview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.product_id, r.author_name, r.rating, r.comment, r.created_at, r.response_text, r.responded_at, p.name, p.image
		FROM reviews r JOIN products p ON p.id = r.product_id
		WHERE p.seller_id = $1 ORDER BY r.created_at DESC`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seller reviews: %w", err)
	}
	defer rows.Close()

	out := make([]entity.SellerReview, 0)
	for rows.Next() {
		var sr entity.SellerReview
		rv, err := scanReview(rows, &sr.ProductName, &sr.ProductImage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller review: %w", err)
		}
		sr.Review = rv
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seller review rows: %w", err)
	}
	return out, nil
}

func (r *Catalog) SetResponse(ctx context.Context, productID, reviewID string, resp entity.SellerResponse) (*entity.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx,
		"UPDATE reviews SET response_text = $1, responded_at = $2 WHERE id = $3 AND product_id = $4 RETURNING "+reviewColumns,
		resp.Text, resp.RespondedAt, reviewID, productID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NewNotFoundError("review", reviewID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set review response: %w", err)
	}
	return &rv, nil
}
