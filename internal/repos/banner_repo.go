package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type BannerRepo struct{ db *sqlx.DB }

func NewBannerRepo(db *sqlx.DB) *BannerRepo { return &BannerRepo{db: db} }

func (r *BannerRepo) Banners(ctx context.Context) ([]domain.Banner, error) {
	var out []domain.Banner
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, title, COALESCE(subtitle,'') AS subtitle, COALESCE(image_url,'') AS image_url,
	         COALESCE(button_text,'') AS button_text, COALESCE(button_link,'') AS button_link,
	         COALESCE(secondary_button_text,'') AS secondary_button_text,
	         COALESCE(secondary_button_link,'') AS secondary_button_link,
	         is_active, is_published, display_order
	  FROM banner_settings
	  WHERE is_active = 1 AND is_published = 1
	  ORDER BY display_order ASC
	`)
	return out, err
}
