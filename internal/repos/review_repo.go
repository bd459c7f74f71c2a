package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// List returns the newest reviews; an empty productID lists across the store.
func (r *ReviewRepo) List(ctx context.Context, productID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 50
	}
	where := `1=1`
	args := []any{}
	if productID != "" {
		where = `product_id = ?`
		args = append(args, productID)
	}
	args = append(args, limit)

	var out []domain.Review
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, COALESCE(product_id,'') AS product_id, user_id, author_name, rating,
	         COALESCE(comment,'') AS comment, created_at
	  FROM reviews
	  WHERE `+where+`
	  ORDER BY datetime(created_at) DESC, rowid DESC
	  LIMIT ?`, args...)
	return out, err
}

// StoreWide returns the newest reviews not tied to a product.
func (r *ReviewRepo) StoreWide(ctx context.Context, limit int) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, '' AS product_id, user_id, author_name, rating,
	         COALESCE(comment,'') AS comment, created_at
	  FROM reviews
	  WHERE product_id IS NULL
	  ORDER BY datetime(created_at) DESC, rowid DESC
	  LIMIT ?`, limit)
	return out, err
}

func (r *ReviewRepo) Create(ctx context.Context, rv domain.Review) error {
	var pid any
	if rv.ProductID != "" {
		pid = rv.ProductID
	}
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO reviews(id, product_id, user_id, author_name, rating, comment, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, rv.ID, pid, rv.UserID, rv.AuthorName, rv.Rating, rv.Comment)
	return err
}
