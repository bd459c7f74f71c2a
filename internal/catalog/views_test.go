package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewsOpenReplacesPrevious(t *testing.T) {
	vs := NewViews(&staticSource{products: sampleListing()}, FoodLabels, time.Minute)

	first := vs.Open("sid-1")
	require.NoError(t, first.Load(context.Background()))
	_, _ = first.AdjustQuantity("1", 1)

	second := vs.Open("sid-1")
	assert.Equal(t, 1, vs.Len())
	assert.ErrorIs(t, first.Load(context.Background()), ErrStale)

	require.NoError(t, second.Load(context.Background()))
	n, _ := second.Quantity("1")
	assert.Equal(t, 1, n, "a fresh mount resets the selection")

	got, ok := vs.Get("sid-1")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestViewsClose(t *testing.T) {
	vs := NewViews(&staticSource{}, FoodLabels, 0)
	vs.Open("a")
	vs.Close("a")
	vs.Close("missing")

	_, ok := vs.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, vs.Len())
}

func TestViewsSweepDropsIdle(t *testing.T) {
	vs := NewViews(&staticSource{products: sampleListing()}, FoodLabels, time.Minute)
	vs.Open("idle")
	vs.Open("busy")

	assert.Equal(t, 0, vs.Sweep(time.Now()))

	later := time.Now().Add(2 * time.Minute)
	assert.Equal(t, 2, vs.Sweep(later))
	assert.Equal(t, 0, vs.Len())
}
