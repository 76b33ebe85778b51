package repository

import (
	"context"
	"sync"
	"time"

	"gymdesk/internal/cart"
)

type MemoryCartRepository struct {
	carts      sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

type cartEntry struct {
	cart      *cart.Cart
	expiresAt time.Time
}

func NewMemoryCartRepository(ttl time.Duration) *MemoryCartRepository {
	return &MemoryCartRepository{
		ttl: ttl,
	}
}

func (r *MemoryCartRepository) GetCart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	val, ok := r.carts.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*cartEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.carts.Delete(sessionID)
		return nil, nil
	}
	return entry.cart, nil
}

func (r *MemoryCartRepository) SaveCart(ctx context.Context, c *cart.Cart) error {
	r.carts.Store(c.SessionID, &cartEntry{cart: c, expiresAt: time.Now().Add(r.ttl)})
	return nil
}

func (r *MemoryCartRepository) ClearCart(ctx context.Context, sessionID string) error {
	r.carts.Delete(sessionID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryCartRepository) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(sessionID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(sessionID, entry)
	return entry.count <= limit, nil
}
