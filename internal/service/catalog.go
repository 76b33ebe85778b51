package service

import (
	"sort"
	"sync"

	"gymdesk/internal/models"
)

// ProductCatalog is an in-memory product lookup loaded from configuration.
// It satisfies the cart's catalog interface; inactive products are invisible.
type ProductCatalog struct {
	products   []models.Product
	productMap map[string]models.Product
	mu         sync.RWMutex
}

func NewProductCatalog(products []models.Product) *ProductCatalog {
	c := &ProductCatalog{}
	c.Replace(products)
	return c
}

// Product returns the active product for the ID. The bool result follows the
// comma-ok convention: false means the cart line should be skipped, not failed.
func (c *ProductCatalog) Product(id string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.productMap[id]
	return p, ok
}

func (c *ProductCatalog) ActiveProducts() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products
}

// Replace swaps the whole catalog, keeping display order by SortOrder.
func (c *ProductCatalog) Replace(products []models.Product) {
	active := make([]models.Product, 0, len(products))
	productMap := make(map[string]models.Product, len(products))
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		active = append(active, p)
		productMap[p.ID] = p
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].SortOrder < active[j].SortOrder
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = active
	c.productMap = productMap
}
