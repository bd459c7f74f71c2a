package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ErrStockShort is returned by Create when a line asks for more than is on hand.
var ErrStockShort = errors.New("insufficient stock")

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- Admin list summary ----------
type OrderSummary struct {
	ID            string          `db:"id"`
	SessionID     string          `db:"session_id"`
	CustomerName  string          `db:"customer_name"`
	CustomerEmail string          `db:"customer_email"`
	Guest         bool            `db:"guest"`
	Total         decimal.Decimal `db:"total"`
	Status        string          `db:"status"`
	CreatedAt     string          `db:"created_at"`
}

// ---------- Order detail (used by /order/:id) ----------
type OrderRow struct {
	ID        string          `db:"id"`
	SessionID string          `db:"session_id"`
	UserID    string          `db:"user_id"`
	Guest     bool            `db:"guest"`
	Customer  string          `db:"customer_name"`
	Email     string          `db:"customer_email"`
	Phone     string          `db:"phone"`
	Address   string          `db:"address"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
}

type OrderItemRow struct {
	ProductID string          `db:"product_id"`
	Name      string          `db:"name"`
	Qty       int             `db:"qty"`
	Price     decimal.Decimal `db:"price"`
}

func (it OrderItemRow) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
}

// Create writes the header and lines in one transaction. With decrementStock set,
// each line also takes its quantity off products.stock_quantity and the whole
// order fails with ErrStockShort if any product cannot cover it.
func (r *OrderRepo) Create(ctx context.Context, o OrderRow, items []OrderItemRow, decrementStock bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var userID any
	if o.UserID != "" {
		userID = o.UserID
	}
	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, session_id, user_id, guest, customer_name, customer_email, phone, address, total, status, created_at)
	  VALUES
	    (?,  ?,          ?,       ?,     ?,             ?,              ?,     ?,       ?,     'PLACED', CURRENT_TIMESTAMP)
	`, o.ID, o.SessionID, userID, o.Guest, o.Customer, o.Email, o.Phone, o.Address, o.Total.String()); err != nil {
		return err
	}

	for _, it := range items {
		if decrementStock {
			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity - ?, updated_at = CURRENT_TIMESTAMP
				WHERE id = ? AND stock_quantity >= ?
			`, it.Qty, it.ProductID, it.Qty)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w for %s", ErrStockShort, it.ProductID)
			}
		}
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, product_id, name, qty, price)
		  VALUES(?, ?, ?, ?, ?)
		`, o.ID, it.ProductID, it.Name, it.Qty, it.Price.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	if err := r.db.Get(&o, `
		SELECT id, COALESCE(session_id,'') AS session_id, COALESCE(user_id,'') AS user_id, guest,
		       COALESCE(customer_name,'') AS customer_name, COALESCE(customer_email,'') AS customer_email,
		       COALESCE(phone,'') AS phone, COALESCE(address,'') AS address, total, status, created_at
		FROM orders
		WHERE id = ?
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	var items []OrderItemRow
	if err := r.db.Select(&items, `
		SELECT product_id, name, qty, price
		FROM order_items
		WHERE order_id = ?
		ORDER BY name
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	return o, items, nil
}

const summaryCols = `id, COALESCE(session_id,'') AS session_id, COALESCE(customer_name,'') AS customer_name,
		       COALESCE(customer_email,'') AS customer_email, guest, total, status, created_at`

func (r *OrderRepo) ListLatest(limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT `+summaryCols+`
		FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) ListByUser(userID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT `+summaryCols+`
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

// ListBySession returns orders placed from a session, signed in or not.
func (r *OrderRepo) ListBySession(sessionID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT `+summaryCols+`
		FROM orders
		WHERE session_id = ?
		ORDER BY datetime(created_at) DESC
	`, sessionID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	res, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s not found", id)
	}
	return nil
}
