package handlers

import (
	"storefront/internal/catalog"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/jmoiron/sqlx"
)

// Store is where the catalog reads products and banners from.
type Store struct {
	Products services.ProductStore
	Banners  services.BannerStore
	// Local is set when the products table in db is the source of truth.
	Local *repos.ProductRepo
}

// LocalStore serves the catalog from the local database.
func LocalStore(db *sqlx.DB) Store {
	prodRepo := repos.NewProductRepo(db)
	return Store{Products: prodRepo, Banners: repos.NewBannerRepo(db), Local: prodRepo}
}

type Deps struct {
	Auth    *AuthHandler
	Home    *HomeHandler
	Page    *PageHandler
	Shop    *ShopHandler
	Product *ProductHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Review  *ReviewHandler
	Admin   *AdminHandler

	CartSvc *services.CartService
	Views   *catalog.Views
}

func NewDeps(db *sqlx.DB, auth *services.AuthService, store Store, views *catalog.Views) *Deps {
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	reviewRepo := repos.NewReviewRepo(db)

	catalogSvc := services.NewCatalogService(store.Products, store.Banners)
	cartSvc := services.NewCartService(cartRepo, store.Products)
	orderSvc := services.NewOrderService(cartRepo, orderRepo, store.Products, store.Local != nil)
	reviewSvc := services.NewReviewService(reviewRepo, store.Products)

	return &Deps{
		Auth:    &AuthHandler{Auth: auth, Views: views},
		Home:    &HomeHandler{Catalog: catalogSvc, Reviews: reviewSvc},
		Page:    &PageHandler{},
		Shop:    &ShopHandler{Views: views, Cart: cartSvc},
		Product: &ProductHandler{Catalog: catalogSvc, Reviews: reviewSvc},
		Cart:    &CartHandler{Cart: cartSvc},
		Order:   &OrderHandler{Cart: cartSvc, Order: orderSvc, Catalog: catalogSvc, Repo: orderRepo, Auth: auth},
		Review:  &ReviewHandler{Reviews: reviewSvc},
		Admin:   &AdminHandler{OrderRepo: orderRepo, Stock: store.Local},
		CartSvc: cartSvc,
		Views:   views,
	}
}
