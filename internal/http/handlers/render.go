package handlers

import (
	"errors"
	"net/http"

	"storefront/internal/catalog"
	applog "storefront/internal/log"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if b, ok := c.Locals("brand").(catalog.Brand); ok {
		data["Brand"] = b
		data["SiteName"] = b.Name
	}
	if n, ok := c.Locals("cartCount").(int); ok {
		data["CartCount"] = n
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		// Fall back to the cookie so hidden fields are never empty.
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// notFound renders the friendly error page; msg is shown as-is.
func notFound(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render("notfound", fiber.Map{"Message": msg})
}

// Site puts the brand and the cart badge count into Locals for page renders.
func Site(brand catalog.Brand, cart *services.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("brand", brand)
		if c.Method() == fiber.MethodGet && cart != nil {
			if sid := c.Cookies("sid"); sid != "" {
				if n, err := cart.Count(sid); err == nil {
					c.Locals("cartCount", n)
				}
			}
		}
		return c.Next()
	}
}

// ErrorPage is the app-wide fiber ErrorHandler. Details go to the log only.
func ErrorPage(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		msg = http.StatusText(code)
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// CSRFFailed answers a missing or stale form token.
func CSRFFailed(c *fiber.Ctx, err error) error {
	applog.Security(c, "csrf.fail", applog.Fields{"path": c.Path()})
	return notFound(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
}
