package handlers

import (
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Reviews *services.ReviewService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", log.Fields{"field": "product"})
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	reviews, err := h.Reviews.List(c.UserContext(), p.ID)
	if err != nil {
		log.Error(c, "product.reviews.fail", err, log.Fields{"product": p.ID})
	}
	return render(c, "product", fiber.Map{"P": p, "Reviews": reviews})
}
