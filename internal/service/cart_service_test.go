package service

import (
	"context"
	"io"
	"testing"
	"time"

	"gymdesk/internal/domain"
	"gymdesk/internal/models"
	"gymdesk/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCartService(t *testing.T, bus *mockEventBus) *CartService {
	t.Helper()
	catalog := NewProductCatalog([]models.Product{
		{ID: "protein-bar", Name: "Protein Bar", Price: 5, IsActive: true},
		{ID: "day-pass", Name: "Day Pass", Price: 15, IsActive: true},
	})
	repo := repository.NewMemoryCartRepository(time.Hour)
	logger := zerolog.New(io.Discard)
	var publisher domain.EventPublisher
	if bus != nil {
		publisher = bus
	}
	return NewCartService(repo, catalog, publisher, 100, 60, &logger)
}

func TestCartService(t *testing.T) {
	ctx := context.Background()

	t.Run("AddAndSummary", func(t *testing.T) {
		svc := newCartService(t, nil)

		c, err := svc.AddItem(ctx, "s1", "protein-bar", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, c.Quantities["protein-bar"])

		_, err = svc.AddItem(ctx, "s1", "day-pass", 1)
		require.NoError(t, err)

		summary, err := svc.GetSummary(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 3, summary.TotalItems)
		assert.InDelta(t, 25.0, summary.TotalPrice, 0.001)
		assert.Len(t, summary.Lines, 2)
	})

	t.Run("AddRejectsNonPositive", func(t *testing.T) {
		svc := newCartService(t, nil)

		_, err := svc.AddItem(ctx, "s1", "protein-bar", 0)
		assert.Error(t, err)
		_, err = svc.AddItem(ctx, "s1", "protein-bar", -3)
		assert.Error(t, err)
	})

	t.Run("RemoveDeletesAtZero", func(t *testing.T) {
		svc := newCartService(t, nil)

		_, err := svc.AddItem(ctx, "s1", "protein-bar", 2)
		require.NoError(t, err)

		c, err := svc.RemoveItem(ctx, "s1", "protein-bar", 2)
		require.NoError(t, err)
		_, exists := c.Quantities["protein-bar"]
		assert.False(t, exists)
	})

	t.Run("SetQuantity", func(t *testing.T) {
		svc := newCartService(t, nil)

		c, err := svc.SetItemQuantity(ctx, "s1", "day-pass", 4)
		require.NoError(t, err)
		assert.Equal(t, 4, c.Quantities["day-pass"])

		c, err = svc.SetItemQuantity(ctx, "s1", "day-pass", 0)
		require.NoError(t, err)
		_, exists := c.Quantities["day-pass"]
		assert.False(t, exists)
	})

	t.Run("UnknownProductPricedAsZero", func(t *testing.T) {
		svc := newCartService(t, nil)

		_, err := svc.AddItem(ctx, "s1", "discontinued", 3)
		require.NoError(t, err)

		summary, err := svc.GetSummary(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 3, summary.TotalItems)
		assert.Zero(t, summary.TotalPrice)
		assert.Equal(t, []string{"discontinued"}, summary.MissingProducts)
	})

	t.Run("ClearCart", func(t *testing.T) {
		svc := newCartService(t, nil)

		_, err := svc.AddItem(ctx, "s1", "protein-bar", 1)
		require.NoError(t, err)
		require.NoError(t, svc.ClearCart(ctx, "s1"))

		summary, err := svc.GetSummary(ctx, "s1")
		require.NoError(t, err)
		assert.Zero(t, summary.TotalItems)

		// Повторная очистка безопасна
		require.NoError(t, svc.ClearCart(ctx, "s1"))
	})

	t.Run("SessionsAreIsolated", func(t *testing.T) {
		svc := newCartService(t, nil)

		_, err := svc.AddItem(ctx, "s1", "protein-bar", 1)
		require.NoError(t, err)

		summary, err := svc.GetSummary(ctx, "s2")
		require.NoError(t, err)
		assert.Zero(t, summary.TotalItems)
	})

	t.Run("Checkout", func(t *testing.T) {
		bus := new(mockEventBus)
		bus.On("PublishJSON", "cart_checkout", mock.Anything).Return(nil).Once()
		svc := newCartService(t, bus)

		_, err := svc.AddItem(ctx, "s1", "day-pass", 2)
		require.NoError(t, err)

		summary, err := svc.Checkout(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 2, summary.TotalItems)
		assert.InDelta(t, 30.0, summary.TotalPrice, 0.001)
		bus.AssertExpectations(t)

		after, err := svc.GetSummary(ctx, "s1")
		require.NoError(t, err)
		assert.Zero(t, after.TotalItems)
	})

	t.Run("RateLimit", func(t *testing.T) {
		catalog := NewProductCatalog([]models.Product{{ID: "protein-bar", Name: "Protein Bar", Price: 5, IsActive: true}})
		repo := repository.NewMemoryCartRepository(time.Hour)
		logger := zerolog.New(io.Discard)
		svc := NewCartService(repo, catalog, nil, 2, 60, &logger)

		_, err := svc.AddItem(ctx, "s1", "protein-bar", 1)
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, "s1", "protein-bar", 1)
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, "s1", "protein-bar", 1)
		assert.ErrorIs(t, err, ErrRateLimited)

		// Другая сессия не задета
		_, err = svc.AddItem(ctx, "s2", "protein-bar", 1)
		assert.NoError(t, err)
	})
}

func TestProductCatalog(t *testing.T) {
	catalog := NewProductCatalog([]models.Product{
		{ID: "b", Name: "Second", SortOrder: 2, IsActive: true},
		{ID: "a", Name: "First", SortOrder: 1, IsActive: true},
		{ID: "c", Name: "Hidden", SortOrder: 0, IsActive: false},
	})

	t.Run("Lookup", func(t *testing.T) {
		p, ok := catalog.Product("a")
		assert.True(t, ok)
		assert.Equal(t, "First", p.Name)

		_, ok = catalog.Product("missing")
		assert.False(t, ok)
	})

	t.Run("InactiveInvisible", func(t *testing.T) {
		_, ok := catalog.Product("c")
		assert.False(t, ok)
	})

	t.Run("SortedBySortOrder", func(t *testing.T) {
		products := catalog.ActiveProducts()
		require.Len(t, products, 2)
		assert.Equal(t, "a", products[0].ID)
		assert.Equal(t, "b", products[1].ID)
	})

	t.Run("Replace", func(t *testing.T) {
		catalog.Replace([]models.Product{{ID: "z", Name: "Only", IsActive: true}})
		_, ok := catalog.Product("a")
		assert.False(t, ok)
		_, ok = catalog.Product("z")
		assert.True(t, ok)
	})
}
