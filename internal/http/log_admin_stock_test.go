package handlers_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
)

// Admin stock changes are audited with product and qty.
func TestAdminStockLogs(t *testing.T) {
	sa := newStoreApp(t, nil)
	s := newSession(t, sa.app)

	// Bind admin session
	s.cookies["sid"] = "sid-admin"
	if err := sa.users.BindSession("sid-admin", "u-admin"); err != nil {
		t.Fatalf("bind admin session: %v", err)
	}

	entries := captureAccessLogs(t, func() {
		s.post("/admin/stock", url.Values{"product_id": {"curry-001"}, "qty": {"9"}}, false)
	})

	found := false
	for _, e := range entries {
		if e.Action == "admin.stock.save" {
			found = true
			if _, ok := e.Fields["product"]; !ok {
				t.Fatalf("admin.stock.save missing product")
			}
			if _, ok := e.Fields["qty"]; !ok {
				t.Fatalf("admin.stock.save missing qty")
			}
			if e.UserID != "u-admin" {
				t.Fatalf("admin.stock.save should carry the admin id, got %q", e.UserID)
			}
		}
	}
	if !found {
		t.Fatalf("admin.stock.save log not found")
	}

	var stock int
	if err := sa.db.GetContext(context.Background(), &stock, `SELECT stock_quantity FROM products WHERE id='curry-001'`); err != nil {
		t.Fatal(err)
	}
	if stock != 9 {
		t.Fatalf("want stock 9, got %d", stock)
	}

	// negative stock is rejected
	if resp := s.post("/admin/stock", url.Values{"product_id": {"curry-001"}, "qty": {"-1"}}, false); resp.StatusCode != 400 {
		t.Fatalf("negative stock expected 400, got %d", resp.StatusCode)
	}
}

func TestAdminOrderStatus(t *testing.T) {
	sa := newStoreApp(t, nil)
	s := newSession(t, sa.app)
	s.cookies["sid"] = "sid-admin"
	_ = sa.users.BindSession("sid-admin", "u-admin")

	s.post("/cart", url.Values{"productId": {"chutney-001"}, "qty": {"1"}}, false)
	resp := s.post("/orders", url.Values{"name": {"Admin"}, "email": {"admin@storefront.test"}, "phone": {"9876543210"}, "address": {"HQ"}}, false)
	if resp.StatusCode != 302 {
		t.Fatalf("order expected redirect, got %d", resp.StatusCode)
	}
	oid := resp.Header.Get("Location")[len("/order/"):]

	if resp := s.post("/admin/orders/"+oid+"/status", url.Values{"status": {"shipped"}}, false); resp.StatusCode != 302 {
		t.Fatalf("status update expected redirect, got %d", resp.StatusCode)
	}
	o, _, err := sa.orders.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != "SHIPPED" {
		t.Fatalf("want SHIPPED, got %s", o.Status)
	}
	if resp := s.post("/admin/orders/"+oid+"/status", url.Values{"status": {"LOST"}}, false); resp.StatusCode != 400 {
		t.Fatalf("unknown status expected 400, got %d", resp.StatusCode)
	}
	if page := body(t, s.get("/admin/orders")); !strings.Contains(page, oid) {
		t.Fatal("admin orders page should list the order")
	}
}
