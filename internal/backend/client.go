// Package backend reads catalog rows from the hosted backend-as-a-service over its
// REST query interface.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker/v2"

	"storefront/internal/domain"
)

var ErrStatus = errors.New("backend: unexpected status")

const (
	productColumns = "id,name,description,price,offer_price,category,is_active,stock_quantity,image_url,image_urls,featured,created_at"
	bannerColumns  = "id,title,subtitle,image_url,button_text,button_link,secondary_button_text,secondary_button_link,is_active,is_published,display_order"

	acceptList   = "application/json"
	acceptSingle = "application/vnd.pgrst.object+json"
)

type Client struct {
	baseURL string
	key     string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[[]byte]
}

func New(baseURL, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		timeout: timeout,
		cb:      newBreaker("backend"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	// a missing row is an answer, not an outage
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, domain.ErrNotFound)
	}
	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// ActiveProducts fetches every active product, category ascending then newest first.
func (c *Client) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("select", productColumns)
	q.Set("is_active", "eq.true")
	q.Set("order", "category.asc,created_at.desc")
	var out []domain.Product
	if err := c.fetch(ctx, "products", q, acceptList, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("select", productColumns)
	q.Set("featured", "eq.true")
	q.Set("is_active", "eq.true")
	q.Set("limit", strconv.Itoa(limit))
	var out []domain.Product
	if err := c.fetch(ctx, "products", q, acceptList, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	q := url.Values{}
	q.Set("select", productColumns)
	q.Set("id", "eq."+id)
	var p domain.Product
	if err := c.fetch(ctx, "products", q, acceptSingle, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Banners lists active, published banners by display order.
func (c *Client) Banners(ctx context.Context) ([]domain.Banner, error) {
	q := url.Values{}
	q.Set("select", bannerColumns)
	q.Set("is_active", "eq.true")
	q.Set("is_published", "eq.true")
	q.Set("order", "display_order.asc")
	var out []domain.Banner
	if err := c.fetch(ctx, "banner_settings", q, acceptList, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, table string, q url.Values, accept string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	endpoint := c.baseURL + "/rest/v1/" + table + "?" + q.Encode()

	body, err := c.cb.Execute(func() ([]byte, error) {
		a := fiber.Get(endpoint)
		a.Set("apikey", c.key)
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.key)
		a.Set(fiber.HeaderAccept, accept)
		a.Timeout(timeout)
		if err := a.Parse(); err != nil {
			// Bytes releases the agent; nothing else will on this path
			fiber.ReleaseAgent(a)
			return nil, err
		}
		code, body, errs := a.Bytes()
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		switch {
		case code == fiber.StatusOK:
			return body, nil
		case code == fiber.StatusNotAcceptable && accept == acceptSingle:
			// zero rows for a single-object request
			return nil, domain.ErrNotFound
		default:
			return nil, fmt.Errorf("%w %d: %s", ErrStatus, code, snippet(body))
		}
	})
	if err != nil {
		return fmt.Errorf("backend %s: %w", table, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("backend %s: decode: %w", table, err)
	}
	return nil
}

func snippet(b []byte) string {
	const limit = 200
	if len(b) > limit {
		b = b[:limit]
	}
	return strings.TrimSpace(string(b))
}
