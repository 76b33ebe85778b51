package cart

import (
	"testing"

	"gymdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCatalog map[string]models.Product

func (m mapCatalog) Product(id string) (models.Product, bool) {
	p, ok := m[id]
	return p, ok
}

func TestCart_AddAndRemove(t *testing.T) {
	c := New("session-1")

	require.NoError(t, c.Add("protein", 1))
	require.NoError(t, c.Add("protein", 2))
	assert.Equal(t, 3, c.Quantities["protein"])

	require.NoError(t, c.Remove("protein", 1))
	assert.Equal(t, 2, c.Quantities["protein"])

	// removing more than present deletes the key, never stores <= 0
	require.NoError(t, c.Remove("protein", 5))
	_, ok := c.Quantities["protein"]
	assert.False(t, ok)
}

func TestCart_RemoveAbsentKeyIsNoop(t *testing.T) {
	c := New("session-1")
	require.NoError(t, c.Remove("ghost", 1))
	assert.Empty(t, c.Quantities)
}

func TestCart_RejectsNonPositiveDelta(t *testing.T) {
	c := New("session-1")
	assert.ErrorIs(t, c.Add("protein", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add("protein", -1), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Remove("protein", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.SetQuantity("protein", -1), ErrInvalidQuantity)
	assert.Empty(t, c.Quantities)
}

func TestCart_SetQuantity(t *testing.T) {
	c := New("session-1")

	require.NoError(t, c.SetQuantity("shaker", 4))
	assert.Equal(t, 4, c.Quantities["shaker"])

	require.NoError(t, c.SetQuantity("shaker", 2))
	assert.Equal(t, 2, c.Quantities["shaker"])

	// same value is a no-op
	require.NoError(t, c.SetQuantity("shaker", 2))
	assert.Equal(t, 2, c.Quantities["shaker"])

	require.NoError(t, c.SetQuantity("shaker", 0))
	_, ok := c.Quantities["shaker"]
	assert.False(t, ok)
}

func TestCart_RemoveAddRoundTrip(t *testing.T) {
	c := New("session-1")
	require.NoError(t, c.Add("towel", 5))

	require.NoError(t, c.Remove("towel", 2))
	require.NoError(t, c.Add("towel", 2))
	assert.Equal(t, 5, c.Quantities["towel"])
}

func TestCart_QuantitiesAlwaysPositive(t *testing.T) {
	c := New("session-1")

	ops := []func() error{
		func() error { return c.Add("a", 3) },
		func() error { return c.Remove("a", 1) },
		func() error { return c.SetQuantity("b", 2) },
		func() error { return c.Remove("b", 2) },
		func() error { return c.Add("c", 1) },
		func() error { return c.SetQuantity("a", 0) },
		func() error { return c.Remove("c", 10) },
	}
	for _, op := range ops {
		require.NoError(t, op())
		for id, qty := range c.Quantities {
			assert.Greater(t, qty, 0, "product %s", id)
		}
	}
}

func TestCart_Totals(t *testing.T) {
	catalog := mapCatalog{
		"A": {ID: "A", Name: "Whey Protein", Price: 10},
		"B": {ID: "B", Name: "Creatine", Price: 5},
	}

	c := New("session-1")
	require.NoError(t, c.Add("A", 2))
	require.NoError(t, c.Add("B", 3))

	assert.Equal(t, 5, c.TotalItems())

	total, missing := c.TotalPrice(catalog)
	assert.Equal(t, 35.0, total)
	assert.Empty(t, missing)
}

func TestCart_TotalPriceSkipsMissingCatalogEntries(t *testing.T) {
	catalog := mapCatalog{
		"A": {ID: "A", Name: "Whey Protein", Price: 10},
	}

	c := New("session-1")
	require.NoError(t, c.Add("A", 1))
	require.NoError(t, c.Add("discontinued", 7))

	total, missing := c.TotalPrice(catalog)
	assert.Equal(t, 10.0, total)
	assert.Equal(t, []string{"discontinued"}, missing)

	lines := c.Lines(catalog)
	require.Len(t, lines, 1)
	assert.Equal(t, "A", lines[0].ProductID)
}

func TestCart_Summarize(t *testing.T) {
	catalog := mapCatalog{
		"A": {ID: "A", Name: "Whey Protein", Price: 10},
	}

	c := New("session-1")
	require.NoError(t, c.Add("A", 2))
	require.NoError(t, c.Add("gone", 1))

	s := c.Summarize(catalog)
	assert.Equal(t, "session-1", s.SessionID)
	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, 20.0, s.TotalPrice)
	assert.Equal(t, []string{"gone"}, s.MissingProducts)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, "A", s.Lines[0].ProductID)
}

func TestCart_ClearIsIdempotent(t *testing.T) {
	c := New("session-1")
	require.NoError(t, c.Add("A", 2))

	c.Clear()
	assert.Empty(t, c.Quantities)
	assert.Equal(t, 0, c.TotalItems())

	c.Clear()
	assert.Empty(t, c.Quantities)
	assert.Equal(t, 0, c.TotalItems())
}

func TestCart_EmptyTotals(t *testing.T) {
	c := New("session-1")
	assert.Equal(t, 0, c.TotalItems())

	total, missing := c.TotalPrice(mapCatalog{})
	assert.Zero(t, total)
	assert.Empty(t, missing)
}
