package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string              `db:"id" json:"id"`
	Name          string              `db:"name" json:"name"`
	Description   string              `db:"description" json:"description"`
	Price         decimal.Decimal     `db:"price" json:"price"`
	OfferPrice    decimal.NullDecimal `db:"offer_price" json:"offer_price"`
	Category      string              `db:"category" json:"category"` // empty when untagged
	Active        bool                `db:"is_active" json:"is_active"`
	StockQuantity int                 `db:"stock_quantity" json:"stock_quantity"`
	ImageURL      string              `db:"image_url" json:"image_url"`
	ImageURLsJSON string              `db:"image_urls" json:"-"`
	ImageURLs     []string            `db:"-" json:"image_urls"`
	Featured      bool                `db:"featured" json:"featured"`
	CreatedAt     string              `db:"created_at" json:"created_at"`
}

// HasOffer reports whether a non-zero offer price is set strictly below the base price.
func (p Product) HasOffer() bool {
	return p.OfferPrice.Valid && !p.OfferPrice.Decimal.IsZero() && p.OfferPrice.Decimal.LessThan(p.Price)
}

// DisplayPrice is the charged price: the offer when it undercuts the base price.
func (p Product) DisplayPrice() decimal.Decimal {
	if p.HasOffer() {
		return p.OfferPrice.Decimal
	}
	return p.Price
}

// DiscountPercent is the whole-number discount of an active offer, 0 otherwise.
func (p Product) DiscountPercent() int64 {
	if !p.HasOffer() || p.Price.IsZero() {
		return 0
	}
	pct := p.Price.Sub(p.OfferPrice.Decimal).Div(p.Price).Mul(decimal.NewFromInt(100))
	return pct.Round(0).IntPart()
}

// InStock gates the purchase actions; the product stays listed either way.
func (p Product) InStock() bool { return p.StockQuantity > 0 }

// MediaURL resolves a stored image reference for the browser. Absolute http(s)
// URLs from hosted storage pass through; relative paths are served from /media.
func MediaURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return ref
	}
	return "/media/" + strings.TrimLeft(ref, "/")
}

// Image is the primary image URL, empty when there is none.
func (p Product) Image() string { return MediaURL(p.ImageURL) }

// Images lists the primary image followed by the gallery as browser URLs,
// skipping blanks and repeats.
func (p Product) Images() []string {
	out := make([]string, 0, 1+len(p.ImageURLs))
	seen := map[string]bool{}
	for _, u := range append([]string{p.ImageURL}, p.ImageURLs...) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, MediaURL(u))
	}
	return out
}

// QuantityChoices is 1..min(10, stock) for the detail page selector.
func (p Product) QuantityChoices() []int {
	n := p.StockQuantity
	if n > 10 {
		n = 10
	}
	out := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, i)
	}
	return out
}

type Banner struct {
	ID                  string `db:"id" json:"id"`
	Title               string `db:"title" json:"title"`
	Subtitle            string `db:"subtitle" json:"subtitle"`
	ImageURL            string `db:"image_url" json:"image_url"`
	ButtonText          string `db:"button_text" json:"button_text"`
	ButtonLink          string `db:"button_link" json:"button_link"`
	SecondaryButtonText string `db:"secondary_button_text" json:"secondary_button_text"`
	SecondaryButtonLink string `db:"secondary_button_link" json:"secondary_button_link"`
	Active              bool   `db:"is_active" json:"is_active"`
	Published           bool   `db:"is_published" json:"is_published"`
	DisplayOrder        int    `db:"display_order" json:"display_order"`
}

func (b Banner) Image() string { return MediaURL(b.ImageURL) }

type Review struct {
	ID         string `db:"id"`
	ProductID  string `db:"product_id"` // empty for store-wide reviews
	UserID     string `db:"user_id"`
	AuthorName string `db:"author_name"`
	Rating     int    `db:"rating"`
	Comment    string `db:"comment"`
	CreatedAt  string `db:"created_at"`
}
