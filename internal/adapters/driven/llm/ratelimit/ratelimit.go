// Package ratelimit throttles model calls with a token bucket.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ModelClient = (*Client)(nil)

// DefaultBackoff is applied after a provider reports a rate limit.
const DefaultBackoff = 30 * time.Second

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size. Defaults to 1.
	BurstSize int
	// Backoff is the pause after a 429 response. Defaults to DefaultBackoff.
	Backoff time.Duration
}

// Client wraps a ModelClient and waits for a token before every call.
type Client struct {
	next    driven.ModelClient
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
}

// Wrap returns next throttled to cfg. A non-positive rate returns next unchanged.
func Wrap(next driven.ModelClient, cfg Config) driven.ModelClient {
	if next == nil || cfg.RequestsPerSecond <= 0 {
		return next
	}
	return New(next, cfg)
}

// New creates a throttled client.
func New(next driven.ModelClient, cfg Config) *Client {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &Client{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		backoff: cfg.Backoff,
	}
}

// Call waits for the limiter, then delegates.
func (c *Client) Call(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := c.next.Call(ctx, req)
	if err != nil && isRateLimited(err) {
		c.recordRateLimit()
		return nil, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return resp, err
}

// wait blocks until the backoff window has passed and a token is available.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	retryAt := c.retryAt
	c.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) recordRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retryAt = time.Now().Add(c.backoff)
}

// isRateLimited recognises 429 responses in adapter error messages.
func isRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "status 429") || strings.Contains(msg, "rate_limit")
}

// ModelName returns the wrapped model name.
func (c *Client) ModelName() string {
	return c.next.ModelName()
}

// Ping delegates without consuming a token.
func (c *Client) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

// Close closes the wrapped client.
func (c *Client) Close() error {
	return c.next.Close()
}
