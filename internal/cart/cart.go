package cart

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gymdesk/internal/models"
)

// ErrInvalidQuantity rejects non-positive deltas and negative targets.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Cart keeps per-session product quantities. A product key exists only while
// its quantity is positive; removing the last unit deletes the key. The cart
// is owned by exactly one session and is not safe for concurrent use.
type Cart struct {
	SessionID  string         `json:"session_id"`
	Quantities map[string]int `json:"quantities"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Line is a cart row joined against the catalog.
type Line struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// Catalog is a read-only product lookup. Missing IDs are tolerated: the cart
// never validates existence, it only skips unknown lines when pricing.
type Catalog interface {
	Product(id string) (models.Product, bool)
}

// Summary is the checkout view of a cart. MissingProducts lists cart lines
// that had no catalog entry; they are a warning for the caller, not an error.
type Summary struct {
	SessionID       string    `json:"session_id"`
	Lines           []Line    `json:"lines"`
	TotalItems      int       `json:"total_items"`
	TotalPrice      float64   `json:"total_price"`
	MissingProducts []string  `json:"missing_products,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func New(sessionID string) *Cart {
	now := time.Now()
	return &Cart{
		SessionID:  sessionID,
		Quantities: make(map[string]int),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Add increases the quantity for productID by delta. Unknown product IDs are
// accepted; catalog validation is the caller's concern.
func (c *Cart) Add(productID string, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("add: %w: delta must be positive, got %d", ErrInvalidQuantity, delta)
	}
	if c.Quantities == nil {
		c.Quantities = make(map[string]int)
	}
	c.Quantities[productID] += delta
	c.UpdatedAt = time.Now()
	return nil
}

// Remove decreases the quantity for productID by delta, deleting the key when
// it would drop to zero or below. Removing an absent key is a no-op.
func (c *Cart) Remove(productID string, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("remove: %w: delta must be positive, got %d", ErrInvalidQuantity, delta)
	}
	current, ok := c.Quantities[productID]
	if !ok {
		return nil
	}
	if current-delta <= 0 {
		delete(c.Quantities, productID)
	} else {
		c.Quantities[productID] = current - delta
	}
	c.UpdatedAt = time.Now()
	return nil
}

// SetQuantity moves productID to an absolute quantity. It is expressed as the
// difference from the current quantity so a target value never double-counts
// on top of what the cart already holds. Zero deletes the key.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("set quantity: %w: must be non-negative, got %d", ErrInvalidQuantity, quantity)
	}
	current := c.Quantities[productID]
	switch {
	case quantity > current:
		return c.Add(productID, quantity-current)
	case quantity < current:
		return c.Remove(productID, current-quantity)
	default:
		return nil
	}
}

// Clear empties the cart. Confirmation prompts belong to the caller.
func (c *Cart) Clear() {
	c.Quantities = make(map[string]int)
	c.UpdatedAt = time.Now()
}

// TotalItems returns the sum of all quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, qty := range c.Quantities {
		total += qty
	}
	return total
}

// TotalPrice sums quantity*price over the catalog. Lines whose product is
// missing from the catalog contribute nothing and come back in missing so the
// caller can surface a warning; a loading catalog is not an error here.
func (c *Cart) TotalPrice(catalog Catalog) (total float64, missing []string) {
	for id, qty := range c.Quantities {
		product, ok := catalog.Product(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		total += float64(qty) * product.Price
	}
	sort.Strings(missing)
	return total, missing
}

// Lines joins the cart against the catalog in a stable product-ID order.
// Unknown products are skipped, mirroring TotalPrice.
func (c *Cart) Lines(catalog Catalog) []Line {
	ids := make([]string, 0, len(c.Quantities))
	for id := range c.Quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]Line, 0, len(ids))
	for _, id := range ids {
		product, ok := catalog.Product(id)
		if !ok {
			continue
		}
		qty := c.Quantities[id]
		lines = append(lines, Line{
			ProductID: id,
			Name:      product.Name,
			Quantity:  qty,
			UnitPrice: product.Price,
			LineTotal: float64(qty) * product.Price,
		})
	}
	return lines
}

// Summarize builds the checkout view of the cart against a catalog snapshot.
func (c *Cart) Summarize(catalog Catalog) *Summary {
	total, missing := c.TotalPrice(catalog)
	return &Summary{
		SessionID:       c.SessionID,
		Lines:           c.Lines(catalog),
		TotalItems:      c.TotalItems(),
		TotalPrice:      total,
		MissingProducts: missing,
		UpdatedAt:       c.UpdatedAt,
	}
}
