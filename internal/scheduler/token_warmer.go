package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// TokenSource is the cached tenant token of the table service.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ExpiresAt() time.Time
	Reset()
}

// TokenWarmer keeps the tenant token fresh in the background so requests
// rarely pay the credential exchange. Failures are logged only: the next
// request retries through the cache anyway.
type TokenWarmer struct {
	tokens        TokenSource
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewTokenWarmer creates a warmer. manualTrigger forces a fresh exchange.
func NewTokenWarmer(
	tokens TokenSource,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *TokenWarmer {
	return &TokenWarmer{
		tokens:        tokens,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start warms once, then on every tick and manual trigger.
func (tw *TokenWarmer) Start(ctx context.Context) error {
	if tw.interval <= 0 {
		return fmt.Errorf("token warmer interval must be positive, got %s", tw.interval)
	}

	if err := tw.Warm(ctx); err != nil {
		tw.logger.Warn("initial token exchange failed", logger.Error(err))
	}

	ticker := time.NewTicker(tw.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := tw.Warm(ctx); err != nil {
					tw.logger.Error("failed to warm tenant token", logger.Error(err))
				}
			case <-tw.manualTrigger:
				tw.logger.Info("manual token refresh triggered")
				if err := tw.Refresh(ctx); err != nil {
					tw.logger.Error("failed to refresh tenant token", logger.Error(err))
				}
			case <-tw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the warmer.
func (tw *TokenWarmer) Stop() {
	close(tw.stopCh)
}

// Warm asks the cache for a token. The cache exchanges only when the
// current one is inside its refresh margin.
func (tw *TokenWarmer) Warm(ctx context.Context) error {
	before := tw.tokens.ExpiresAt()
	if _, err := tw.tokens.Token(ctx); err != nil {
		return fmt.Errorf("warm token: %w", err)
	}
	if after := tw.tokens.ExpiresAt(); !after.Equal(before) {
		tw.logger.Info("tenant token refreshed", logger.Time("expires_at", after))
	}
	return nil
}

// Refresh drops the cached token and exchanges a new one.
func (tw *TokenWarmer) Refresh(ctx context.Context) error {
	tw.tokens.Reset()
	return tw.Warm(ctx)
}
