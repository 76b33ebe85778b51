package repository

import (
	"context"
	"sync/atomic"
	"time"

	"gymdesk/internal/cart"
	"gymdesk/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverCartRepository serves carts from the primary store and degrades to
// the fallback when the primary errors, probing for recovery once a minute.
type FailoverCartRepository struct {
	primary   domain.CartRepository
	fallback  domain.CartRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverCartRepository(primary, fallback domain.CartRepository, logger *zerolog.Logger) *FailoverCartRepository {
	return &FailoverCartRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCartRepository) GetCart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if !r.isDown.Load() {
		c, err := r.primary.GetCart(ctx, sessionID)
		if err == nil {
			return c, nil
		}
		r.logger.Error().Err(err).Msg("Primary cart repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		c, err := r.primary.GetCart(ctx, sessionID)
		if err == nil {
			r.isDown.Store(false)
			return c, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetCart(ctx, sessionID)
}

func (r *FailoverCartRepository) SaveCart(ctx context.Context, c *cart.Cart) error {
	if !r.isDown.Load() {
		err := r.primary.SaveCart(ctx, c)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary cart repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SaveCart(ctx, c)
}

func (r *FailoverCartRepository) ClearCart(ctx context.Context, sessionID string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearCart(ctx, sessionID)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary cart repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.ClearCart(ctx, sessionID)
}

func (r *FailoverCartRepository) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, sessionID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary cart repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.CheckRateLimit(ctx, sessionID, limit, window)
}
