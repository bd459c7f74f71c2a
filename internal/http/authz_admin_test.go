package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"storefront/internal/http/handlers"
)

func stockOf(t *testing.T, db *sqlx.DB, id string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT stock_quantity FROM products WHERE id = ?`, id); err != nil {
		t.Fatal(err)
	}
	return n
}

// Every admin page needs the ADMIN role; shoppers cannot restock.
func TestAdminGuardCoversStock(t *testing.T) {
	sa := newStoreApp(t, nil)
	paths := []string{"/admin", "/admin/orders", "/admin/stock"}

	anon := newSession(t, sa.app)
	for _, p := range paths {
		resp := anon.get(p)
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
			t.Fatalf("anonymous %s: want redirect to /login, got %d", p, resp.StatusCode)
		}
	}

	shopper := newSession(t, sa.app)
	shopper.cookies["sid"] = "sid-user"
	_ = sa.users.BindSession("sid-user", "u-alice")
	for _, p := range paths {
		if resp := shopper.get(p); resp.StatusCode != http.StatusForbidden {
			t.Fatalf("shopper %s: want 403, got %d", p, resp.StatusCode)
		}
	}
	if resp := shopper.post("/admin/stock", url.Values{"product_id": {"curry-001"}, "qty": {"50"}}, false); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("shopper restock: want 403, got %d", resp.StatusCode)
	}
	if n := stockOf(t, sa.db, "curry-001"); n != 0 {
		t.Fatalf("shopper must not change stock, got %d", n)
	}

	admin := newSession(t, sa.app)
	admin.cookies["sid"] = "sid-admin"
	_ = sa.users.BindSession("sid-admin", "u-admin")
	for _, p := range paths {
		if resp := admin.get(p); resp.StatusCode != http.StatusOK {
			t.Fatalf("admin %s: want 200, got %d", p, resp.StatusCode)
		}
	}
	if page := body(t, admin.get("/admin/stock")); !strings.Contains(page, "Chicken Curry") {
		t.Fatal("stock page should list products")
	}

	// a restock makes the item buyable from a fresh shop view
	admin.post("/admin/stock", url.Values{"product_id": {"curry-001"}, "qty": {"5"}}, false)
	s := newSession(t, sa.app)
	s.get("/shop")
	if resp := s.post("/shop/buy", url.Values{"productId": {"curry-001"}}, false); resp.StatusCode != http.StatusFound {
		t.Fatalf("restocked item should be buyable, got %d", resp.StatusCode)
	}
}

// With a hosted backend the stock pages are unavailable, but the rest of admin works.
func TestAdminStockNeedsLocalStore(t *testing.T) {
	sa := newStoreApp(t, func(db *sqlx.DB) handlers.Store {
		return handlers.Store{Products: downStore{}, Banners: downStore{}}
	})
	admin := newSession(t, sa.app)
	admin.cookies["sid"] = "sid-admin"
	_ = sa.users.BindSession("sid-admin", "u-admin")

	if resp := admin.get("/admin"); resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: want 200, got %d", resp.StatusCode)
	}
	resp := admin.get("/admin/stock")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body(t, resp), "Stock is managed by the hosted backend") {
		t.Fatalf("stock page: want 404 with explanation, got %d", resp.StatusCode)
	}
	if resp := admin.post("/admin/stock", url.Values{"product_id": {"curry-001"}, "qty": {"5"}}, false); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stock save: want 404, got %d", resp.StatusCode)
	}
}
