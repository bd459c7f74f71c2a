package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/repos"
)

var ErrEmptyCart = errors.New("cart empty")

type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type OrderService struct {
	Carts    *repos.CartRepo
	Orders   *repos.OrderRepo
	Products ProductStore
	// DecrementStock is set when the local database owns stock levels.
	DecrementStock bool
}

func NewOrderService(carts *repos.CartRepo, orders *repos.OrderRepo, products ProductStore, decrementStock bool) *OrderService {
	return &OrderService{Carts: carts, Orders: orders, Products: products, DecrementStock: decrementStock}
}

// Placed is the outcome of a successful order.
type Placed struct {
	OrderID string
	Total   decimal.Decimal
}

// Place turns the session cart into an order at current prices and empties the cart.
func (s *OrderService) Place(ctx context.Context, sessionID, userID string, contact Contact) (Placed, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return Placed{}, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return Placed{}, err
	}
	if len(items) == 0 {
		return Placed{}, ErrEmptyCart
	}

	lines := make([]repos.OrderItemRow, 0, len(items))
	for _, it := range items {
		lines = append(lines, repos.OrderItemRow{ProductID: it.ProductID, Name: it.Name, Qty: it.Qty, Price: it.PriceAtAdd})
	}
	placed, err := s.create(ctx, sessionID, userID, false, contact, lines)
	if err != nil {
		return Placed{}, err
	}
	_ = s.Carts.Clear(cartID)
	return placed, nil
}

// PlaceGuest orders a single product handed over from a guest buy-now. The price
// is read fresh from the store, never from the request.
func (s *OrderService) PlaceGuest(ctx context.Context, sessionID, productID string, qty int, contact Contact) (Placed, error) {
	if qty < 1 {
		qty = 1
	}
	p, err := activeProduct(ctx, s.Products, productID)
	if err != nil {
		return Placed{}, err
	}
	line := repos.OrderItemRow{ProductID: p.ID, Name: p.Name, Qty: qty, Price: p.DisplayPrice()}
	return s.create(ctx, sessionID, "", true, contact, []repos.OrderItemRow{line})
}

func (s *OrderService) create(ctx context.Context, sessionID, userID string, guest bool, contact Contact, lines []repos.OrderItemRow) (Placed, error) {
	// Reprice every line from the store and pre-check stock; stored cart prices
	// are display hints only.
	for i, l := range lines {
		p, err := activeProduct(ctx, s.Products, l.ProductID)
		if err != nil {
			return Placed{}, fmt.Errorf("product %s: %w", l.ProductID, err)
		}
		if p.StockQuantity < l.Qty {
			return Placed{}, fmt.Errorf("%w for %s (need %d, have %d)", ErrInsufficientStock, l.ProductID, l.Qty, p.StockQuantity)
		}
		lines[i].Name = p.Name
		lines[i].Price = p.DisplayPrice()
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}

	o := repos.OrderRow{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		Guest:     guest,
		Customer:  contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Address:   contact.Address,
		Total:     total,
	}
	if err := s.Orders.Create(ctx, o, lines, s.DecrementStock); err != nil {
		if errors.Is(err, repos.ErrStockShort) {
			return Placed{}, fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		}
		return Placed{}, err
	}
	return Placed{OrderID: o.ID, Total: total}, nil
}
