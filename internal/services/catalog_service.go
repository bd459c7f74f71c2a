package services

import (
	"context"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

const featuredLimit = 6

// ProductStore is the product side of the backing store: the hosted backend or
// the local database.
type ProductStore interface {
	catalog.Source
	FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
}

type BannerStore interface {
	Banners(ctx context.Context) ([]domain.Banner, error)
}

type CatalogService struct {
	Products ProductStore
	Banners  BannerStore
}

func NewCatalogService(products ProductStore, banners BannerStore) *CatalogService {
	return &CatalogService{Products: products, Banners: banners}
}

func (s *CatalogService) Featured(ctx context.Context) ([]domain.Product, error) {
	return s.Products.FeaturedProducts(ctx, featuredLimit)
}

// Product returns an active product; inactive rows read as not found.
func (s *CatalogService) Product(ctx context.Context, id string) (domain.Product, error) {
	return activeProduct(ctx, s.Products, id)
}

func activeProduct(ctx context.Context, store ProductStore, id string) (domain.Product, error) {
	p, err := store.Product(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !p.Active {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *CatalogService) HomeBanners(ctx context.Context) ([]domain.Banner, error) {
	return s.Banners.Banners(ctx)
}
