package bitable

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RefreshMargin is how long before expiry a token stops being reused.
const RefreshMargin = 5 * time.Minute

// ExchangeFunc trades the app credentials for a token and its lifetime in seconds.
type ExchangeFunc func(ctx context.Context) (token string, expireSeconds int, err error)

// TokenCache holds the tenant access token until it is about to expire.
// Concurrent refreshes collapse into a single exchange.
type TokenCache struct {
	exchange ExchangeFunc
	now      func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

// NewTokenCache builds a cache around exchange. A nil clock uses time.Now.
func NewTokenCache(exchange ExchangeFunc, now func() time.Time) *TokenCache {
	if now == nil {
		now = time.Now
	}
	return &TokenCache{exchange: exchange, now: now}
}

// Token returns a valid token, exchanging credentials when the cached one is
// missing or within RefreshMargin of its expiry. Errors are returned as is.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if tok, ok := c.cached(); ok {
		return tok, nil
	}

	// The shared exchange outlives any single caller: one caller giving up
	// must not fail the others waiting on it. The client timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan("token", func() (any, error) {
		// Another caller may have refreshed while we waited.
		if tok, ok := c.cached(); ok {
			return tok, nil
		}
		start := c.now()
		tok, expire, err := c.exchange(shared)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.token = tok
		c.expiresAt = start.Add(time.Duration(expire) * time.Second)
		c.mu.Unlock()
		return tok, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

// ExpiresAt returns the expiry of the cached token (zero if none).
func (c *TokenCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

// Reset drops the cached token.
func (c *TokenCache) Reset() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", false
	}
	if !c.now().Before(c.expiresAt.Add(-RefreshMargin)) {
		return "", false
	}
	return c.token, true
}
