package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
    id, name, COALESCE(description,'') AS description, price, offer_price,
    COALESCE(category,'') AS category, is_active, stock_quantity,
    COALESCE(image_url,'') AS image_url, COALESCE(image_urls,'') AS image_urls,
    featured, COALESCE(created_at,'') AS created_at`

// ActiveProducts lists active products by category (untagged last) then newest first.
func (r *ProductRepo) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+productCols+`
  FROM products
  WHERE is_active = 1
  ORDER BY products.category IS NULL, products.category ASC, datetime(products.created_at) DESC
`)
	if err != nil {
		return nil, err
	}
	return hydrate(out), nil
}

func (r *ProductRepo) FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+productCols+`
  FROM products
  WHERE featured = 1 AND is_active = 1
  ORDER BY datetime(created_at) DESC
  LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	return hydrate(out), nil
}

func (r *ProductRepo) Product(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT`+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return hydrate([]domain.Product{p})[0], nil
}

// All lists every product, active or not, for the admin stock page.
func (r *ProductRepo) All(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `SELECT`+productCols+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return hydrate(out), nil
}

// SetStock overwrites the stock level of one product.
func (r *ProductRepo) SetStock(ctx context.Context, id string, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET stock_quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, qty, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func hydrate(ps []domain.Product) []domain.Product {
	for i := range ps {
		if ps[i].ImageURLsJSON == "" {
			continue
		}
		var urls []string
		if err := json.Unmarshal([]byte(ps[i].ImageURLsJSON), &urls); err == nil {
			ps[i].ImageURLs = urls
		}
	}
	return ps
}
