package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type storeApp struct {
	app    *fiber.App
	db     *sqlx.DB
	users  *repos.UserRepo
	orders *repos.OrderRepo
	views  *catalog.Views
}

// newStoreApp wires the real routes over an in-memory database. pick may swap
// the catalog store; nil keeps the local tables.
func newStoreApp(t *testing.T, pick func(db *sqlx.DB) handlers.Store) storeApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := handlers.LocalStore(db)
	if pick != nil {
		store = pick(db)
	}
	brand, _ := catalog.BrandFor("food")
	views := catalog.NewViews(store.Products, brand.Labels, 0)

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo, Carts: repos.NewCartRepo(db)}
	deps := handlers.NewDeps(db, authSvc, store, views)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorPage})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(limiter.New(limiter.Config{Max: 1000, Expiration: 0}))
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax", ErrorHandler: handlers.CSRFFailed}))
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(handlers.Site(brand, deps.CartSvc))
	deps.Register(app, authSvc)

	return storeApp{app: app, db: db, users: userRepo, orders: repos.NewOrderRepo(db), views: views}
}

// session is a tiny cookie jar for app.Test round trips.
type session struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newSession(t *testing.T, app *fiber.App) *session {
	s := &session{t: t, app: app, cookies: map[string]string{}}
	s.get("/login") // csrf cookie
	if s.cookies["csrf_"] == "" {
		t.Fatal("csrf token missing")
	}
	return s
}

func (s *session) do(req *http.Request) *http.Response {
	s.t.Helper()
	for k, v := range s.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatal(err)
	}
	for _, c := range resp.Cookies() {
		s.cookies[c.Name] = c.Value
	}
	return resp
}

func (s *session) get(path string) *http.Response {
	return s.do(httptest.NewRequest("GET", path, nil))
}

func (s *session) post(path string, form url.Values, xhr bool) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", s.cookies["csrf_"])
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if xhr {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	return s.do(req)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// downStore fails every read, like an unreachable backend.
type downStore struct{}

var errDown = errors.New("dial tcp: connection refused")

func (downStore) ActiveProducts(context.Context) ([]domain.Product, error) { return nil, errDown }
func (downStore) FeaturedProducts(context.Context, int) ([]domain.Product, error) {
	return nil, errDown
}
func (downStore) Product(context.Context, string) (domain.Product, error) {
	return domain.Product{}, errDown
}
func (downStore) Banners(context.Context) ([]domain.Banner, error) { return nil, errDown }
