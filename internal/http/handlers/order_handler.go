package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Cart    *services.CartService
	Order   *services.OrderService
	Catalog *services.CatalogService
	Repo    *repos.OrderRepo
	Auth    *services.AuthService
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	cv, err := h.Cart.View(ensureSID(c))
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load your cart")
	}
	return render(c, "checkout", fiber.Map{"Cart": cv})
}

// contactForm validates the delivery contact fields shared by both checkouts.
func contactForm(c *fiber.Ctx) (services.Contact, string, bool) {
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return services.Contact{}, "name", false
	}
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return services.Contact{}, "email", false
	}
	phone, ok := validate.Phone(c.FormValue("phone"))
	if !ok {
		return services.Contact{}, "phone", false
	}
	address, ok := validate.Text(c.FormValue("address"), 200)
	if !ok || address == "" {
		return services.Contact{}, "address", false
	}
	return services.Contact{Name: name, Email: email, Phone: phone, Address: address}, "", true
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	contact, field, ok := contactForm(c)
	if !ok {
		applog.Security(c, "validation.fail", applog.Fields{"field": field})
		return c.Status(fiber.StatusBadRequest).SendString("invalid " + field)
	}

	var userID string
	if u, _ := c.Locals("user").(*domain.User); u != nil {
		userID = u.ID
	}
	placed, err := h.Order.Place(c.UserContext(), sid, userID, contact)
	if err != nil {
		// business rule errors (e.g., insufficient stock) surface as 400
		applog.Security(c, "order.place.fail", applog.Fields{"sid": sid, "error": err.Error()})
		if errors.Is(err, services.ErrEmptyCart) {
			return c.Redirect("/cart")
		}
		return c.Status(fiber.StatusBadRequest).SendString("Could not place order. Please review quantities and try again.")
	}
	applog.Audit(c, "order.place", applog.Fields{"order_id": placed.OrderID, "total": placed.Total.StringFixed(2)})
	return c.Redirect("/order/" + placed.OrderID)
}

// guestLine reads the handed-over product and quantity from the query or form.
func (h *OrderHandler) guestLine(c *fiber.Ctx) (domain.Product, int, error) {
	rawID, rawQty := c.Query("productId"), c.Query("qty")
	if c.Method() == fiber.MethodPost {
		rawID, rawQty = c.FormValue("productId"), c.FormValue("qty")
	}
	id, ok := validate.ID(rawID)
	if !ok {
		applog.Security(c, "validation.fail", applog.Fields{"field": "productId"})
		return domain.Product{}, 0, domain.ErrNotFound
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return domain.Product{}, 0, err
	}
	return p, validate.Qty(rawQty), nil
}

// GET /checkout/guest
func (h *OrderHandler) GuestCheckout(c *fiber.Ctx) error {
	p, qty, err := h.guestLine(c)
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	total := p.DisplayPrice().Mul(decimal.NewFromInt(int64(qty)))
	return render(c, "checkout_guest", fiber.Map{"P": p, "Qty": qty, "Total": total})
}

// POST /checkout/guest
func (h *OrderHandler) PlaceGuest(c *fiber.Ctx) error {
	sid := ensureSID(c)
	p, qty, err := h.guestLine(c)
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	contact, field, ok := contactForm(c)
	if !ok {
		applog.Security(c, "validation.fail", applog.Fields{"field": field})
		return c.Status(fiber.StatusBadRequest).SendString("invalid " + field)
	}
	placed, err := h.Order.PlaceGuest(c.UserContext(), sid, p.ID, qty, contact)
	if err != nil {
		applog.Security(c, "order.guest.fail", applog.Fields{"sid": sid, "error": err.Error()})
		return c.Status(fiber.StatusBadRequest).SendString("Could not place order. Please review quantities and try again.")
	}
	applog.Audit(c, "order.guest.place", applog.Fields{"order_id": placed.OrderID, "total": placed.Total.StringFixed(2)})
	return c.Redirect("/order/" + placed.OrderID)
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}

	o, items, err := h.Repo.Get(oid)
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}

	// Ownership check: placing session or the signed-in owner; admins allowed
	sid := c.Cookies("sid")
	var u *domain.User
	if h.Auth != nil && sid != "" {
		u, _ = h.Auth.CurrentUser(sid)
	}
	ownsSession := sid != "" && sid == o.SessionID
	ownsOrder := u != nil && o.UserID != "" && u.ID == o.UserID
	if !ownsSession && !ownsOrder && !u.IsAdmin() {
		applog.Security(c, "access.denied.order", applog.Fields{"order_id": oid})
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}

	return render(c, "order", fiber.Map{"Order": o, "Items": items})
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	// If RequireUser is used, user is guaranteed; fallback to 404
	if u == nil {
		return notFound(c, fiber.StatusNotFound, "Orders not available")
	}
	orders, err := h.Repo.ListByUser(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load orders")
	}
	// Fallback: show session orders if none linked to user (e.g., pre-login)
	if len(orders) == 0 {
		if sid := c.Cookies("sid"); sid != "" {
			if sessOrders, err := h.Repo.ListBySession(sid); err == nil && len(sessOrders) > 0 {
				orders = sessOrders
			}
		}
	}
	return render(c, "order_history", fiber.Map{"Orders": orders})
}
