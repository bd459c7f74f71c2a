package handlers

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/catalog"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

// ShopHandler serves the product catalog page. Each session owns one
// catalog.View; GET /shop mounts a fresh one, everything else works on it.
type ShopHandler struct {
	Views *catalog.Views
	Cart  *services.CartService
}

// shopQuery reads q and category from the query string or the form.
func shopQuery(c *fiber.Ctx) (term, category string, ok bool) {
	rawQ, rawCat := c.Query("q"), c.Query("category")
	if c.Method() == fiber.MethodPost {
		rawQ, rawCat = c.FormValue("q"), c.FormValue("category")
	}
	if term, ok = validate.Term(rawQ); !ok {
		applog.Security(c, "validation.fail", applog.Fields{"field": "q"})
		return "", "", false
	}
	if category, ok = validate.Category(rawCat); !ok {
		applog.Security(c, "validation.fail", applog.Fields{"field": "category"})
		return "", "", false
	}
	return term, category, true
}

func shopURL(path, term, category string) string {
	v := url.Values{}
	if term != "" {
		v.Set("q", term)
	}
	if category != "" && category != catalog.AllCategories {
		v.Set("category", category)
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// GET /shop
func (h *ShopHandler) Page(c *fiber.Ctx) error {
	term, category, ok := shopQuery(c)
	if !ok {
		return notFound(c, fiber.StatusBadRequest, "Invalid search")
	}
	sid := ensureSID(c)
	v := h.Views.Open(sid)
	// a failed load is logged and surfaces as a notification with an empty list
	if err := v.Load(c.UserContext()); errors.Is(err, catalog.ErrStale) {
		// a newer mount on this session replaced ours; show that one
		if cur, ok := h.Views.Get(sid); ok {
			v = cur
		}
	}
	return h.renderShop(c, v, term, category)
}

// GET /shop/view re-derives the listing from the mounted view without refetching.
func (h *ShopHandler) Refine(c *fiber.Ctx) error {
	term, category, ok := shopQuery(c)
	if !ok {
		return notFound(c, fiber.StatusBadRequest, "Invalid search")
	}
	v, ok := h.Views.Get(c.Cookies("sid"))
	if !ok {
		return c.Redirect(shopURL("/shop", term, category))
	}
	return h.renderShop(c, v, term, category)
}

func (h *ShopHandler) renderShop(c *fiber.Ctx, v *catalog.View, term, category string) error {
	listing := v.Apply(term, category)
	return render(c, "shop", fiber.Map{
		"Listing":       listing,
		"Options":       v.Options(),
		"Term":          term,
		"Category":      category,
		"AllCategories": catalog.AllCategories,
		"Quantities":    v.Quantities(),
		"Notes":         v.Notifications(),
		"Loading":       v.Loading(),
	})
}

type sectionJSON struct {
	Label    string `json:"label"`
	Products any    `json:"products"`
}

// GET /api/v1/shop/listing
func (h *ShopHandler) Listing(c *fiber.Ctx) error {
	term, category, ok := shopQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid query"})
	}
	v, ok := h.Views.Get(c.Cookies("sid"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no catalog loaded"})
	}
	listing := v.Apply(term, category)
	sections := make([]sectionJSON, 0, len(listing.Sections))
	for _, s := range listing.Sections {
		sections = append(sections, sectionJSON{Label: s.Label, Products: s.Products})
	}
	return c.JSON(fiber.Map{
		"sections":      sections,
		"count":         listing.Count,
		"quantities":    v.Quantities(),
		"notifications": v.Notifications(),
	})
}

func (h *ShopHandler) mounted(c *fiber.Ctx) (*catalog.View, string, bool) {
	sid := c.Cookies("sid")
	if sid == "" {
		return nil, "", false
	}
	v, ok := h.Views.Get(sid)
	return v, sid, ok
}

func (h *ShopHandler) back(c *fiber.Ctx) error {
	term, category, ok := shopQuery(c)
	if !ok {
		term, category = "", catalog.AllCategories
	}
	return c.Redirect(shopURL("/shop/view", term, category))
}

// POST /shop/quantity
func (h *ShopHandler) Quantity(c *fiber.Ctx) error {
	v, _, ok := h.mounted(c)
	if !ok {
		return c.Redirect("/shop")
	}
	id, okID := validate.ID(c.FormValue("productId"))
	delta, okDelta := validate.Delta(c.FormValue("delta"))
	if !okID || !okDelta {
		applog.Security(c, "validation.fail", applog.Fields{"field": "quantity"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid quantity change")
	}
	n, err := v.AdjustQuantity(id, delta)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("product not in listing")
	}
	if c.XHR() {
		return c.JSON(fiber.Map{"productId": id, "quantity": n})
	}
	return h.back(c)
}

// POST /shop/buy
func (h *ShopHandler) BuyNow(c *fiber.Ctx) error {
	v, sid, ok := h.mounted(c)
	if !ok {
		return c.Redirect("/shop")
	}
	id, okID := validate.ID(c.FormValue("productId"))
	if !okID {
		applog.Security(c, "validation.fail", applog.Fields{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid product")
	}
	authenticated := c.Locals("user") != nil
	ho, err := v.BuyNow(c.UserContext(), id, authenticated, services.SessionCart{Svc: h.Cart, SessionID: sid})
	switch {
	case errors.Is(err, catalog.ErrOutOfStock):
		return c.Status(fiber.StatusConflict).SendString("This item is out of stock")
	case errors.Is(err, catalog.ErrUnknownProduct):
		return c.Status(fiber.StatusNotFound).SendString("product not in listing")
	case err != nil:
		// the view queued the user-facing notification
		return h.back(c)
	}

	if ho.Kind == catalog.HandoffGuestCheckout {
		applog.Info(c, "shop.buy_now.guest", applog.Fields{"product": ho.Product.ID, "qty": ho.Quantity})
		q := url.Values{}
		q.Set("productId", ho.Product.ID)
		q.Set("qty", strconv.Itoa(ho.Quantity))
		return c.Redirect("/checkout/guest?" + q.Encode())
	}
	applog.Audit(c, "shop.buy_now", applog.Fields{"product": ho.Product.ID, "qty": ho.Quantity})
	return c.Redirect("/checkout")
}

// POST /shop/cart
func (h *ShopHandler) AddToCart(c *fiber.Ctx) error {
	v, sid, ok := h.mounted(c)
	if !ok {
		return c.Redirect("/shop")
	}
	id, okID := validate.ID(c.FormValue("productId"))
	if !okID {
		applog.Security(c, "validation.fail", applog.Fields{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid product")
	}
	cart := services.SessionCart{Svc: h.Cart, SessionID: sid}
	err := v.AddToCart(c.UserContext(), id, cart)
	switch {
	case errors.Is(err, catalog.ErrOutOfStock):
		return c.Status(fiber.StatusConflict).SendString("This item is out of stock")
	case errors.Is(err, catalog.ErrUnknownProduct):
		return c.Status(fiber.StatusNotFound).SendString("product not in listing")
	case err != nil:
		if c.XHR() {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"notifications": v.Notifications()})
		}
		return h.back(c)
	}
	applog.Audit(c, "shop.add_to_cart", applog.Fields{"product": id})
	if c.XHR() {
		n, _ := cart.Count(c.UserContext())
		return c.JSON(fiber.Map{"ok": true, "cartCount": n})
	}
	return h.back(c)
}
