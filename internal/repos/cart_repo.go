package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartItem struct {
	ProductID  string          `db:"product_id"`
	Name       string          `db:"name"`
	Qty        int             `db:"qty"`
	PriceAtAdd decimal.Decimal `db:"price_at_add"`
}

func (it CartItem) Subtotal() decimal.Decimal {
	return it.PriceAtAdd.Mul(decimal.NewFromInt(int64(it.Qty)))
}

// EnsureCart returns the cart id for a session, creating the cart on first use.
func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// UpsertItem adds qty to the line, keeping the first price seen.
func (r *CartRepo) UpsertItem(cartID, productID, name string, qty int, price decimal.Decimal) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,product_id,name,qty,price_at_add,created_at)
		VALUES(?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id) DO UPDATE
		SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, productID, name, qty, price.String())
	return err
}

func (r *CartRepo) Items(cartID string) ([]CartItem, error) {
	out := []CartItem{}
	err := r.db.Select(&out, `
	  SELECT product_id, name, qty, price_at_add
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY created_at, product_id
	`, cartID)
	return out, err
}

// Count is the total number of units in the cart.
func (r *CartRepo) Count(cartID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COALESCE(SUM(qty),0) FROM cart_items WHERE cart_id = ?`, cartID)
	return n, err
}

func (r *CartRepo) Clear(cartID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}

// MergeForLogin folds the anonymous session cart into the user's latest cart,
// or adopts it when the user has none.
func (r *CartRepo) MergeForLogin(userID, sid string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var anonID, userCartID sql.NullString

	if err := tx.Get(&anonID, `SELECT id FROM carts WHERE session_id=?`, sid); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err := tx.Get(&userCartID, `SELECT id FROM carts WHERE user_id=? AND id<>? ORDER BY updated_at DESC LIMIT 1`, userID, sid); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if !anonID.Valid {
		return tx.Commit()
	}

	if !userCartID.Valid {
		if _, err := tx.Exec(`UPDATE carts SET user_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, userID, anonID.String); err != nil {
			return err
		}
		return tx.Commit()
	}

	// Move the anonymous lines into the user cart, then re-point the session at it
	// by swapping ids: the session keeps its cart id, the old user cart goes away.
	if _, err := tx.Exec(`
		INSERT INTO cart_items(cart_id, product_id, name, qty, price_at_add, created_at, updated_at)
		SELECT ?, product_id, name, qty, price_at_add, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
		FROM cart_items WHERE cart_id = ?
		ON CONFLICT(cart_id, product_id) DO UPDATE SET
		  qty = cart_items.qty + excluded.qty,
		  updated_at = CURRENT_TIMESTAMP
	`, userCartID.String, anonID.String); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id=?`, anonID.String); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO cart_items(cart_id, product_id, name, qty, price_at_add, created_at, updated_at)
		SELECT ?, product_id, name, qty, price_at_add, created_at, updated_at
		FROM cart_items WHERE cart_id = ?
	`, anonID.String, userCartID.String); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM carts WHERE id=?`, userCartID.String); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE carts SET user_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, userID, anonID.String); err != nil {
		return err
	}
	return tx.Commit()
}
