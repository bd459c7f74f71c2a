package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

// Register mounts the storefront routes. Global middlewares (csrf, helmet, user
// locals) are the caller's business.
func (d *Deps) Register(app *fiber.App, auth *services.AuthService) {
	// Public pages
	app.Get("/", d.Home.Home)
	app.Get("/about", d.Page.About)
	app.Get("/contact", d.Page.ContactForm)
	app.Post("/contact", d.Page.Contact)
	app.Get("/shop", d.Shop.Page)
	app.Get("/shop/view", d.Shop.Refine)
	app.Post("/shop/quantity", d.Shop.Quantity)
	app.Post("/shop/buy", d.Shop.BuyNow)
	app.Post("/shop/cart", d.Shop.AddToCart)

	// Product pages
	app.Get("/product", func(c *fiber.Ctx) error {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	})
	app.Get("/product/:id", d.Product.Detail)
	app.Get("/reviews", d.Review.List)
	app.Post("/reviews", RequireUser(auth), d.Review.Submit)

	// API
	api := app.Group("/api/v1")
	apiLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|api"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/shop/listing", apiLimiter, d.Shop.Listing)
	api.Get("/cart/count", apiLimiter, d.Cart.Count)

	// Cart & Orders
	app.Get("/cart", d.Cart.View)
	app.Post("/cart", d.Cart.Add)
	app.Get("/checkout", d.Order.Checkout)
	app.Post("/orders", d.Order.Place)
	app.Get("/checkout/guest", d.Order.GuestCheckout)
	app.Post("/checkout/guest", d.Order.PlaceGuest)
	app.Get("/order/:id", d.Order.View)
	app.Get("/orders", RequireUser(auth), d.Order.History)

	// Auth routes (login throttled)
	app.Get("/login", d.Auth.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.Auth.Login)
	app.Post("/logout", d.Auth.Logout)

	// Admin
	admin := app.Group("/admin", RequireAdmin(auth))
	admin.Get("/", d.Admin.Dashboard)
	admin.Get("/orders", d.Admin.OrdersPage)
	admin.Post("/orders/:id/status", d.Admin.UpdateOrderStatus)
	admin.Get("/stock", d.Admin.StockPage)
	admin.Post("/stock", d.Admin.UpdateStock)
}
