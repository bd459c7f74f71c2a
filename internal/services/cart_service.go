package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"storefront/internal/repos"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type CartService struct {
	Carts    *repos.CartRepo
	Products ProductStore
}

func NewCartService(carts *repos.CartRepo, products ProductStore) *CartService {
	return &CartService{Carts: carts, Products: products}
}

// Add puts qty units of an active, in-stock product into the session cart at its
// current display price.
func (s *CartService) Add(ctx context.Context, sessionID, productID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	p, err := activeProduct(ctx, s.Products, productID)
	if err != nil {
		return err
	}
	if !p.InStock() {
		return ErrInsufficientStock
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.UpsertItem(cartID, p.ID, p.Name, qty, p.DisplayPrice())
}

func (s *CartService) Count(sessionID string) (int, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return 0, err
	}
	return s.Carts.Count(cartID)
}

type CartView struct {
	Items []repos.CartItem
	Total decimal.Decimal
}

func (cv CartView) Empty() bool { return len(cv.Items) == 0 }

func (s *CartService) View(sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return CartView{}, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return CartView{Items: items, Total: total}, nil
}

// SessionCart binds the cart service to one session for the shop view.
type SessionCart struct {
	Svc       *CartService
	SessionID string
}

func (c SessionCart) Add(ctx context.Context, productID string, qty int) error {
	return c.Svc.Add(ctx, c.SessionID, productID, qty)
}

func (c SessionCart) Count(ctx context.Context) (int, error) {
	return c.Svc.Count(c.SessionID)
}
