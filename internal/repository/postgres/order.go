package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

const orderColumns = "id, customer_details, total_amount, status, created_at, updated_at"

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o entity.Order) error {
	details, err := json.Marshal(o.CustomerDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal customer details: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO orders (id, customer_details, total_amount, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		o.ID, details, o.TotalAmount, string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.NewValidationError("id", "order already exists", o.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO order_items (order_id, position, product_id, name, price, quantity, image, seller_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, item := range o.Items {
		_, err = stmt.ExecContext(ctx, o.ID, i, item.ProductID, item.Name, item.Price, item.Quantity, item.Image, item.SellerID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanOrder(row rowScanner) (entity.Order, error) {
	var o entity.Order
	var details []byte
	var status string
	if err := row.Scan(&o.ID, &details, &o.TotalAmount, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return entity.Order{}, err
	}
	o.Status = entity.OrderStatus(status)
	if err := json.Unmarshal(details, &o.CustomerDetails); err != nil {
		return entity.Order{}, fmt.Errorf("failed to decode customer details: %w", err)
	}
	return o, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.NewNotFoundError("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order %s: %w", id, err)
	}
	orders := []entity.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]entity.Order, error) {
	return r.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id ASC")
}

func (r *orderRepository) FindBySeller(ctx context.Context, sellerID string) ([]entity.Order, error) {
	return r.queryOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id IN (SELECT order_id FROM order_items WHERE seller_id = $1) ORDER BY created_at DESC, id ASC",
		sellerID,
	)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]entity.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the line items of every order in one round trip.
func (r *orderRepository) attachItems(ctx context.Context, orders []entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT order_id, product_id, name, price, quantity, image, seller_id FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position",
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item entity.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.Image, &item.SellerID); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, at time.Time) (*entity.Order, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3", string(status), at, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if err := expectOneRow(res, "order", id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
