package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

// GET /reviews
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	rs, err := h.Reviews.List(c.UserContext(), "")
	if err != nil {
		applog.Error(c, "reviews.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load reviews")
	}
	return render(c, "reviews", fiber.Map{"Reviews": rs})
}

// POST /reviews (signed in). productId is optional.
func (h *ReviewHandler) Submit(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Redirect("/login")
	}
	var productID string
	if raw := c.FormValue("productId"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			applog.Security(c, "validation.fail", applog.Fields{"field": "productId"})
			return c.Status(fiber.StatusBadRequest).SendString("invalid product")
		}
		productID = id
	}
	rating, ok := validate.Rating(c.FormValue("rating"))
	if !ok {
		applog.Security(c, "validation.fail", applog.Fields{"field": "rating"})
		return c.Status(fiber.StatusBadRequest).SendString("rating must be between 1 and 5")
	}
	comment, ok := validate.Text(c.FormValue("comment"), 500)
	if !ok {
		applog.Security(c, "validation.fail", applog.Fields{"field": "comment"})
		return c.Status(fiber.StatusBadRequest).SendString("comment too long")
	}

	rv, err := h.Reviews.Submit(c.UserContext(), u, productID, rating, comment)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	case err != nil:
		applog.Error(c, "reviews.submit.fail", err, applog.Fields{"product": productID})
		return notFound(c, fiber.StatusInternalServerError, "Could not save your review")
	}
	applog.Audit(c, "reviews.submit", applog.Fields{"review_id": rv.ID, "product": productID, "rating": rating})
	if productID != "" {
		return c.Redirect("/product/" + productID)
	}
	return c.Redirect("/reviews")
}
