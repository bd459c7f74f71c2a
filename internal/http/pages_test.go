package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestHomeShowsLatestStoreReviews(t *testing.T) {
	sa := newStoreApp(t, nil)
	sa.db.MustExec(`
		INSERT INTO reviews(id, product_id, user_id, author_name, rating, comment, created_at) VALUES
		  ('r1', NULL, 'u-bob', 'Bob', 5, 'oldest store note', '2025-01-01 10:00:00'),
		  ('r2', NULL, 'u-bob', 'Bob', 4, 'second store note', '2025-01-02 10:00:00'),
		  ('r3', NULL, 'u-bob', 'Bob', 5, 'third store note', '2025-01-03 10:00:00'),
		  ('r4', NULL, 'u-bob', 'Bob', 3, 'newest store note', '2025-01-04 10:00:00'),
		  ('r5', 'pickle-001', 'u-bob', 'Bob', 5, 'pickle only note', '2025-01-05 10:00:00')`)
	s := newSession(t, sa.app)

	home := body(t, s.get("/"))
	for _, want := range []string{"newest store note", "third store note", "second store note"} {
		if !strings.Contains(home, want) {
			t.Fatalf("home missing review %q", want)
		}
	}
	if strings.Contains(home, "oldest store note") {
		t.Fatal("home should show only the three newest store reviews")
	}
	if strings.Contains(home, "pickle only note") {
		t.Fatal("product reviews do not belong on the home page")
	}
	if strings.Index(home, "newest store note") > strings.Index(home, "second store note") {
		t.Fatal("home reviews should be newest first")
	}
}

func TestAboutAndContactPages(t *testing.T) {
	sa := newStoreApp(t, nil)
	s := newSession(t, sa.app)

	// the seeded banner links to /about
	resp := s.get("/about")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("about: status %d", resp.StatusCode)
	}
	if page := body(t, resp); !strings.Contains(page, "Our Story") || !strings.Contains(page, "Bringing comfort and tradition") {
		t.Fatalf("about page missing brand copy; body=%s", page)
	}

	page := body(t, s.get("/contact"))
	for _, want := range []string{"Contact Us", "hello@googoofoods.example", "Order Question"} {
		if !strings.Contains(page, want) {
			t.Fatalf("contact page missing %q", want)
		}
	}

	form := url.Values{"name": {"Alice"}, "email": {"alice@storefront.test"}, "subject": {"order"}, "message": {"Where is my chutney?"}}
	entries := captureAccessLogs(t, func() {
		resp = s.post("/contact", form, false)
	})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body(t, resp), "Thank you for your message") {
		t.Fatalf("contact submit expected thank-you page, got %d", resp.StatusCode)
	}
	if !hasAction(entries, "contact.message") {
		t.Fatal("contact.message not logged")
	}

	form.Set("subject", "wholesale")
	if resp := s.post("/contact", form, false); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown subject expected 400, got %d", resp.StatusCode)
	}
}
