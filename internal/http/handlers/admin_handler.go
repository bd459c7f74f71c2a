package handlers

import (
	"errors"
	"strconv"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	OrderRepo *repos.OrderRepo
	// Stock is nil when a hosted backend owns the product table.
	Stock *repos.ProductRepo
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	return render(c, "admin_dashboard", fiber.Map{"StockEditable": h.Stock != nil})
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.OrderRepo.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load orders")
	}
	return render(c, "admin_orders", fiber.Map{"Orders": ords})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	status, okStatus := validate.OrderStatus(c.FormValue("status"))
	if !okID || !okStatus {
		applog.Security(c, "validation.fail", applog.Fields{"field": "status"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid id or status")
	}
	if err := h.OrderRepo.UpdateStatus(id, status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, applog.Fields{"order_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("could not update status")
	}
	applog.Audit(c, "admin.orders.update", applog.Fields{"order_id": id, "status": status})
	return c.Redirect("/admin/orders")
}

// GET /admin/stock
func (h *AdminHandler) StockPage(c *fiber.Ctx) error {
	if h.Stock == nil {
		return notFound(c, fiber.StatusNotFound, "Stock is managed by the hosted backend")
	}
	ps, err := h.Stock.All(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.stock.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load products")
	}
	return render(c, "admin_stock", fiber.Map{"Products": ps})
}

// POST /admin/stock
func (h *AdminHandler) UpdateStock(c *fiber.Ctx) error {
	if h.Stock == nil {
		return notFound(c, fiber.StatusNotFound, "Stock is managed by the hosted backend")
	}
	pid, okID := validate.ID(c.FormValue("product_id"))
	qty, err := strconv.Atoi(c.FormValue("qty"))
	if !okID || err != nil || qty < 0 || qty > 100000 {
		applog.Security(c, "validation.fail", applog.Fields{"field": "stock"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	if err := h.Stock.SetStock(c.UserContext(), pid, qty); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("unknown product")
		}
		applog.Error(c, "admin.stock.save.fail", err, applog.Fields{"product": pid, "qty": qty})
		return c.Status(fiber.StatusBadRequest).SendString("could not save stock")
	}
	applog.Audit(c, "admin.stock.save", applog.Fields{"product": pid, "qty": qty})
	return c.Redirect("/admin/stock")
}
