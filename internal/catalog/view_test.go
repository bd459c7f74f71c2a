package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type staticSource struct {
	products []domain.Product
	err      error
	calls    int
}

func (s *staticSource) ActiveProducts(context.Context) ([]domain.Product, error) {
	s.calls++
	return s.products, s.err
}

type fakeCart struct {
	mu    sync.Mutex
	err   error
	lines map[string]int
}

func (c *fakeCart) Add(_ context.Context, id string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.lines == nil {
		c.lines = map[string]int{}
	}
	c.lines[id] += qty
	return nil
}

func (c *fakeCart) Count(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, q := range c.lines {
		n += q
	}
	return n, nil
}

func loadedView(t *testing.T, products []domain.Product) *View {
	t.Helper()
	v := NewView(&staticSource{products: products}, FoodLabels)
	require.NoError(t, v.Load(context.Background()))
	return v
}

func TestLoadStartsEveryQuantityAtOne(t *testing.T) {
	v := loadedView(t, sampleListing())
	assert.Equal(t, map[string]int{"1": 1, "2": 1}, v.Quantities())
	assert.False(t, v.Loading())
	assert.Empty(t, v.Notifications())
}

func TestQuantityFloorIsOne(t *testing.T) {
	v := loadedView(t, sampleListing())
	for i := 0; i < 5; i++ {
		n, err := v.AdjustQuantity("1", -1)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	n, _ := v.Quantity("1")
	assert.Equal(t, 1, n)
}

func TestQuantityIsNotCappedByStock(t *testing.T) {
	v := loadedView(t, sampleListing())
	var n int
	for i := 0; i < 4; i++ {
		n, _ = v.AdjustQuantity("1", 1)
	}
	assert.Equal(t, 5, n) // stock is 3
}

func TestAdjustUnknownProduct(t *testing.T) {
	v := loadedView(t, sampleListing())
	_, err := v.AdjustQuantity("nope", 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestQuantitiesReturnsACopy(t *testing.T) {
	v := loadedView(t, sampleListing())
	q := v.Quantities()
	q["1"] = 42
	n, _ := v.Quantity("1")
	assert.Equal(t, 1, n)
}

func TestLoadFailureNotifiesOnce(t *testing.T) {
	src := &staticSource{err: errors.New("connection refused")}
	v := NewView(src, FoodLabels)

	err := v.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, src.calls)

	lst := v.Apply("", AllCategories)
	assert.True(t, lst.Empty())
	assert.Empty(t, lst.Sections)
	assert.Empty(t, v.Options())

	notes := v.Notifications()
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Destructive)
	assert.Equal(t, "Failed to load products. Please try again later.", notes[0].Description)
	assert.Empty(t, v.Notifications(), "notifications drain")
}

func TestApplyDoesNotRefetch(t *testing.T) {
	src := &staticSource{products: mixedListing()}
	v := NewView(src, FoodLabels)
	require.NoError(t, v.Load(context.Background()))

	v.Apply("pickle", AllCategories)
	v.Apply("", "chicken")
	v.Apply("tea", "red_meat")
	assert.Equal(t, 1, src.calls)
}

func TestBuyNowOutOfStock(t *testing.T) {
	v := loadedView(t, sampleListing())
	cart := &fakeCart{}

	_, err := v.BuyNow(context.Background(), "2", true, cart)
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.ErrorIs(t, v.AddToCart(context.Background(), "2", cart), ErrOutOfStock)
	assert.Empty(t, cart.lines)
}

func TestBuyNowSignedInWritesCartFirst(t *testing.T) {
	v := loadedView(t, sampleListing())
	_, _ = v.AdjustQuantity("1", 1)
	cart := &fakeCart{}

	ho, err := v.BuyNow(context.Background(), "1", true, cart)
	require.NoError(t, err)
	assert.Equal(t, HandoffCheckout, ho.Kind)
	assert.Equal(t, 2, ho.Quantity)
	assert.Equal(t, map[string]int{"1": 2}, cart.lines)
}

func TestBuyNowGuestLeavesCartAlone(t *testing.T) {
	v := loadedView(t, sampleListing())
	cart := &fakeCart{}

	ho, err := v.BuyNow(context.Background(), "1", false, cart)
	require.NoError(t, err)
	assert.Equal(t, HandoffGuestCheckout, ho.Kind)
	assert.Equal(t, "1", ho.Product.ID)
	assert.Equal(t, 1, ho.Quantity)
	assert.Empty(t, cart.lines)
}

func TestBuyNowCartFailureNotifies(t *testing.T) {
	v := loadedView(t, sampleListing())
	cart := &fakeCart{err: errors.New("db locked")}

	_, err := v.BuyNow(context.Background(), "1", true, cart)
	assert.ErrorIs(t, err, ErrHandoff)

	notes := v.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Failed to process purchase. Please try again.", notes[0].Description)
}

func TestAddToCartUsesSelectedQuantity(t *testing.T) {
	v := loadedView(t, sampleListing())
	_, _ = v.AdjustQuantity("1", 1)
	_, _ = v.AdjustQuantity("1", 1)
	cart := &fakeCart{}

	require.NoError(t, v.AddToCart(context.Background(), "1", cart))
	n, _ := cart.Count(context.Background())
	assert.Equal(t, 3, n)
}

func TestPurchaseOfUnknownProduct(t *testing.T) {
	v := loadedView(t, sampleListing())
	_, err := v.BuyNow(context.Background(), "99", false, &fakeCart{})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

// blockingSource holds the first call until released.
type blockingSource struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	first   []domain.Product
	later   []domain.Product
}

func (s *blockingSource) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	if n == 1 {
		close(s.started)
		<-s.release
		return s.first, nil
	}
	return s.later, nil
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	src := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		first:   []domain.Product{product("old", "Old Stock", "chicken", 1)},
		later:   sampleListing(),
	}
	v := NewView(src, FoodLabels)

	done := make(chan error, 1)
	go func() { done <- v.Load(context.Background()) }()
	<-src.started

	require.NoError(t, v.Load(context.Background()))
	close(src.release)
	assert.ErrorIs(t, <-done, ErrStale)

	assert.ElementsMatch(t, []string{"1", "2"}, idsOf(v.Apply("", AllCategories)))
}

func TestCloseDropsInFlightLoad(t *testing.T) {
	src := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		first:   sampleListing(),
	}
	v := NewView(src, FoodLabels)

	done := make(chan error, 1)
	go func() { done <- v.Load(context.Background()) }()
	<-src.started
	v.Close()
	close(src.release)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.True(t, v.Apply("", AllCategories).Empty())
	assert.ErrorIs(t, v.Load(context.Background()), ErrStale)
}

func idsOf(l Listing) []string {
	var out []string
	for _, s := range l.Sections {
		out = append(out, ids(s.Products)...)
	}
	return out
}
