package handlers

import (
	"errors"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", applog.Fields{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))

	err := h.Cart.Add(c.UserContext(), sid, productID, qty)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	case errors.Is(err, services.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).SendString("This item is out of stock")
	case err != nil:
		applog.Error(c, "cart.add.fail", err, applog.Fields{"product": productID})
		return notFound(c, fiber.StatusInternalServerError, "Failed to add item to cart. Please try again.")
	}
	applog.Audit(c, "cart.add", applog.Fields{"product": productID, "qty": qty})
	return c.Redirect("/cart")
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(sid)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load your cart")
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

// GET /api/v1/cart/count
func (h *CartHandler) Count(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid == "" {
		return c.JSON(fiber.Map{"count": 0})
	}
	n, err := h.Cart.Count(sid)
	if err != nil {
		applog.Error(c, "cart.count.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "unavailable"})
	}
	return c.JSON(fiber.Map{"count": n})
}
