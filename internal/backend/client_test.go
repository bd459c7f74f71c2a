package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

const productsJSON = `[
  {"id":"p1","name":"Spicy Pickle","description":null,"price":180,"offer_price":"150","category":"chilli_condiments","is_active":true,"stock_quantity":3,"image_url":"a.jpg","image_urls":["b.jpg"],"featured":true,"created_at":"2025-01-10T09:00:00Z"},
  {"id":"p2","name":"Chicken Curry","description":"hot","price":350,"offer_price":null,"category":null,"is_active":true,"stock_quantity":null,"image_url":null,"image_urls":null,"featured":false,"created_at":"2025-01-12T09:00:00Z"}
]`

func TestActiveProductsQuery(t *testing.T) {
	var gotPath, gotQuery, gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsJSON))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "anon-key", time.Second)
	ps, err := c.ActiveProducts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/products", gotPath)
	assert.Contains(t, gotQuery, "is_active=eq.true")
	assert.Contains(t, gotQuery, "order=category.asc%2Ccreated_at.desc")
	assert.Equal(t, "anon-key", gotKey)
	assert.Equal(t, "Bearer anon-key", gotAuth)

	require.Len(t, ps, 2)
	assert.Equal(t, "150", ps[0].DisplayPrice().String())
	assert.Equal(t, []string{"b.jpg"}, ps[0].ImageURLs)
	assert.Equal(t, "", ps[1].Category)
	assert.Equal(t, 0, ps[1].StockQuantity)
	assert.False(t, ps[1].InStock())
	assert.Equal(t, "350", ps[1].DisplayPrice().String())
}

func TestProductNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))
		assert.Equal(t, "eq.missing", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNotAcceptable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).Product(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServerErrorIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).Banners(context.Background())
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "500")
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", time.Second)
	for i := 0; i < 3; i++ {
		_, err := c.ActiveProducts(context.Background())
		require.ErrorIs(t, err, ErrStatus)
	}
	_, err := c.ActiveProducts(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), hits.Load())
}

func TestMissingRowsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", time.Second)
	for i := 0; i < 5; i++ {
		_, err := c.Product(context.Background(), "gone")
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("http://127.0.0.1:1", "k", time.Second).ActiveProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnsupportedSchemeFailsEachCall(t *testing.T) {
	c := New("ftp://backend.test", "k", time.Second)
	for i := 0; i < 2; i++ {
		_, err := c.Banners(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported protocol")
	}
}
