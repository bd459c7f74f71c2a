package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

var (
	ErrOutOfStock     = errors.New("product is out of stock")
	ErrUnknownProduct = errors.New("product not in the current listing")
	ErrStale          = errors.New("product load superseded")
	ErrHandoff        = errors.New("purchase handoff failed")
)

const (
	msgLoadFailed     = "Failed to load products. Please try again later."
	msgPurchaseFailed = "Failed to process purchase. Please try again."
	msgAddFailed      = "Failed to add item to cart. Please try again."
)

// Source answers the active-product query: is_active = true ordered by
// category ascending then created_at descending, unpaginated.
type Source interface {
	ActiveProducts(ctx context.Context) ([]domain.Product, error)
}

// Cart is the session cart the purchase actions hand off to.
type Cart interface {
	Add(ctx context.Context, productID string, qty int) error
	Count(ctx context.Context) (int, error)
}

// Notification is a user-visible message raised by the view.
type Notification struct {
	Title       string
	Description string
	Destructive bool
}

type HandoffKind int

const (
	// HandoffCheckout: the cart already holds the line, go to checkout.
	HandoffCheckout HandoffKind = iota + 1
	// HandoffGuestCheckout: no cart write, the line travels with the navigation.
	HandoffGuestCheckout
)

type Handoff struct {
	Kind     HandoffKind
	Product  domain.Product
	Quantity int
}

// View is the shop page state: the fetched product set and the quantity selection
// derived from it. Listings are recomputed from that state on demand.
type View struct {
	src    Source
	labels Labels

	mu       sync.Mutex
	gen      uint64
	loading  bool
	closed   bool
	products []domain.Product
	qty      quantities
	notes    []Notification
	touched  time.Time
}

func NewView(src Source, labels Labels) *View {
	return &View{src: src, labels: labels, qty: quantities{}, touched: time.Now()}
}

// Load fetches the active products once. On failure the list is left empty and a
// single notification is queued. A result that arrives after a newer Load or
// after Close is dropped with ErrStale.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrStale
	}
	v.gen++
	gen := v.gen
	v.loading = true
	v.touched = time.Now()
	v.mu.Unlock()

	products, err := v.src.ActiveProducts(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return ErrStale
	}
	v.loading = false
	if err != nil {
		applog.Error(nil, "catalog.load.fail", err, nil)
		v.products = nil
		v.qty = quantities{}
		v.notify(msgLoadFailed)
		return fmt.Errorf("load products: %w", err)
	}
	v.products = products
	v.qty = newQuantities(products)
	applog.Info(nil, "catalog.load", map[string]any{"count": len(products)})
	return nil
}

func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Apply derives the grouped listing for term and category.
func (v *View) Apply(term, category string) Listing {
	v.mu.Lock()
	products := v.products
	v.touched = time.Now()
	v.mu.Unlock()
	return Apply(products, term, category, v.labels)
}

// Options lists the category selector entries for the loaded products.
func (v *View) Options() []Option {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Options(v.products, v.labels)
}

func (v *View) Labels() Labels { return v.labels }

// Quantities returns a copy of the current selection.
func (v *View) Quantities() map[string]int {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]int, len(v.qty))
	for k, n := range v.qty {
		out[k] = n
	}
	return out
}

func (v *View) Quantity(id string) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.qty.get(id)
}

// AdjustQuantity moves the selection for id by delta with a floor of 1.
func (v *View) AdjustQuantity(id string, delta int) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touched = time.Now()
	n, ok := v.qty.adjust(id, delta)
	if !ok {
		return 0, ErrUnknownProduct
	}
	return n, nil
}

// BuyNow hands the product and its selected quantity onward. Signed-in sessions
// write the cart first and only then get a checkout handoff; guests get the line
// back as navigation state with nothing persisted.
func (v *View) BuyNow(ctx context.Context, id string, authenticated bool, cart Cart) (Handoff, error) {
	p, qty, err := v.purchasable(id)
	if err != nil {
		return Handoff{}, err
	}
	if !authenticated {
		return Handoff{Kind: HandoffGuestCheckout, Product: p, Quantity: qty}, nil
	}
	if err := cart.Add(ctx, p.ID, qty); err != nil {
		applog.Error(nil, "catalog.buy_now.fail", err, map[string]any{"product": p.ID, "qty": qty})
		v.mu.Lock()
		v.notify(msgPurchaseFailed)
		v.mu.Unlock()
		return Handoff{}, fmt.Errorf("%w: %v", ErrHandoff, err)
	}
	return Handoff{Kind: HandoffCheckout, Product: p, Quantity: qty}, nil
}

// AddToCart hands the product and its selected quantity to the cart.
func (v *View) AddToCart(ctx context.Context, id string, cart Cart) error {
	p, qty, err := v.purchasable(id)
	if err != nil {
		return err
	}
	if err := cart.Add(ctx, p.ID, qty); err != nil {
		applog.Error(nil, "catalog.add_to_cart.fail", err, map[string]any{"product": p.ID, "qty": qty})
		v.mu.Lock()
		v.notify(msgAddFailed)
		v.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrHandoff, err)
	}
	return nil
}

func (v *View) purchasable(id string) (domain.Product, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touched = time.Now()
	for _, p := range v.products {
		if p.ID != id {
			continue
		}
		if !p.InStock() {
			return domain.Product{}, 0, ErrOutOfStock
		}
		qty, ok := v.qty.get(id)
		if !ok {
			qty = 1
		}
		return p, qty, nil
	}
	return domain.Product{}, 0, ErrUnknownProduct
}

// Notifications drains the queued messages.
func (v *View) Notifications() []Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.notes
	v.notes = nil
	return out
}

// Close discards the state; an in-flight Load completes as ErrStale.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.gen++
	v.loading = false
	v.products = nil
	v.qty = quantities{}
	v.notes = nil
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.touched
}

// caller holds v.mu
func (v *View) notify(desc string) {
	v.notes = append(v.notes, Notification{Title: "Error", Description: desc, Destructive: true})
}
