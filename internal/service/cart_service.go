package service

import (
	"context"
	"errors"
	"time"

	"gymdesk/internal/cart"
	"gymdesk/internal/domain"
	"gymdesk/internal/events"
	"gymdesk/internal/metrics"
	"gymdesk/internal/models"

	"github.com/rs/zerolog"
)

var ErrRateLimited = errors.New("too many cart requests")

// CartService owns per-session carts. Mutations load the cart, apply the
// change and persist the whole cart back, so a session must not issue
// concurrent mutations.
type CartService struct {
	carts     domain.CartRepository
	catalog   cart.Catalog
	eventBus  domain.EventPublisher
	rateLimit int
	rateWin   time.Duration
	logger    *zerolog.Logger
}

func NewCartService(carts domain.CartRepository, catalog cart.Catalog, eventBus domain.EventPublisher, rateLimit, rateWindowSeconds int, logger *zerolog.Logger) *CartService {
	if rateLimit <= 0 {
		rateLimit = models.RateLimitRequests
	}
	if rateWindowSeconds <= 0 {
		rateWindowSeconds = models.RateLimitWindow
	}
	return &CartService{
		carts:     carts,
		catalog:   catalog,
		eventBus:  eventBus,
		rateLimit: rateLimit,
		rateWin:   time.Duration(rateWindowSeconds) * time.Second,
		logger:    logger,
	}
}

func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*cart.Cart, error) {
	return s.mutate(ctx, sessionID, "add", func(c *cart.Cart) error {
		return c.Add(productID, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string, quantity int) (*cart.Cart, error) {
	return s.mutate(ctx, sessionID, "remove", func(c *cart.Cart) error {
		return c.Remove(productID, quantity)
	})
}

func (s *CartService) SetItemQuantity(ctx context.Context, sessionID, productID string, quantity int) (*cart.Cart, error) {
	return s.mutate(ctx, sessionID, "set_quantity", func(c *cart.Cart) error {
		return c.SetQuantity(productID, quantity)
	})
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.allow(ctx, sessionID); err != nil {
		return err
	}
	metrics.IncCartOp("clear")
	return s.carts.ClearCart(ctx, sessionID)
}

func (s *CartService) GetSummary(ctx context.Context, sessionID string) (*cart.Summary, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.Summarize(s.catalog), nil
}

// Checkout snapshots the cart, publishes the checkout event and empties the
// session. The summary is returned even when the event publish fails.
func (s *CartService) Checkout(ctx context.Context, sessionID string) (*cart.Summary, error) {
	if err := s.allow(ctx, sessionID); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := c.Summarize(s.catalog)

	if s.eventBus != nil {
		payload := events.CartEventPayload{
			SessionID:  sessionID,
			TotalItems: summary.TotalItems,
			TotalPrice: summary.TotalPrice,
		}
		if err := s.eventBus.PublishJSON(events.EventCartCheckout, payload); err != nil {
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("publish checkout event error")
		}
	}

	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		return nil, err
	}
	metrics.IncCartOp("checkout")

	return summary, nil
}

func (s *CartService) mutate(ctx context.Context, sessionID, op string, apply func(*cart.Cart) error) (*cart.Cart, error) {
	if err := s.allow(ctx, sessionID); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := apply(c); err != nil {
		return nil, err
	}

	if err := s.carts.SaveCart(ctx, c); err != nil {
		return nil, err
	}
	metrics.IncCartOp(op)

	return c, nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	c, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = cart.New(sessionID)
	}
	return c, nil
}

func (s *CartService) allow(ctx context.Context, sessionID string) error {
	allowed, err := s.carts.CheckRateLimit(ctx, sessionID, s.rateLimit, s.rateWin)
	if err != nil {
		// Деградируем в сторону доступности: лимитер сломан, корзина жива.
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("rate limit check error")
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}
