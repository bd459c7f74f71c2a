package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

var ErrBadRating = errors.New("rating must be between 1 and 5")

type ReviewService struct {
	Reviews  *repos.ReviewRepo
	Products ProductStore
}

func NewReviewService(reviews *repos.ReviewRepo, products ProductStore) *ReviewService {
	return &ReviewService{Reviews: reviews, Products: products}
}

func (s *ReviewService) List(ctx context.Context, productID string) ([]domain.Review, error) {
	return s.Reviews.List(ctx, productID, 50)
}

// Latest is the newest n store-wide reviews, for the home page.
func (s *ReviewService) Latest(ctx context.Context, n int) ([]domain.Review, error) {
	return s.Reviews.StoreWide(ctx, n)
}

// Submit stores a review by u. An empty productID is a store-wide review.
func (s *ReviewService) Submit(ctx context.Context, u *domain.User, productID string, rating int, comment string) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		return domain.Review{}, ErrBadRating
	}
	if productID != "" {
		if _, err := activeProduct(ctx, s.Products, productID); err != nil {
			return domain.Review{}, err
		}
	}
	rv := domain.Review{
		ID:         uuid.NewString(),
		ProductID:  productID,
		UserID:     u.ID,
		AuthorName: u.Name,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.Reviews.Create(ctx, rv); err != nil {
		return domain.Review{}, err
	}
	return rv, nil
}
