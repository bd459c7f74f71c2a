package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

const homeReviews = 3

type HomeHandler struct {
	Catalog *services.CatalogService
	Reviews *services.ReviewService
}

// GET /
// Banners, featured products and reviews are optional sections; a failing store
// leaves them empty rather than failing the page.
func (h *HomeHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	banners, err := h.Catalog.HomeBanners(ctx)
	if err != nil {
		applog.Error(c, "home.banners.fail", err, nil)
	}
	featured, err := h.Catalog.Featured(ctx)
	if err != nil {
		applog.Error(c, "home.featured.fail", err, nil)
	}
	reviews, err := h.Reviews.Latest(ctx, homeReviews)
	if err != nil {
		applog.Error(c, "home.reviews.fail", err, nil)
	}
	return render(c, "home", fiber.Map{"Banners": banners, "Featured": featured, "Reviews": reviews})
}
