package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/logger"
)

type fakeTokens struct {
	mu        sync.Mutex
	exchanges int
	expiresAt time.Time
	err       error
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.expiresAt.IsZero() {
		f.exchanges++
		f.expiresAt = time.Unix(int64(7200*f.exchanges), 0)
	}
	return "t", nil
}

func (f *fakeTokens) ExpiresAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiresAt
}

func (f *fakeTokens) Reset() {
	f.mu.Lock()
	f.expiresAt = time.Time{}
	f.mu.Unlock()
}

func (f *fakeTokens) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchanges
}

func TestTokenWarmer_WarmAndRefresh(t *testing.T) {
	tokens := &fakeTokens{}
	tw := NewTokenWarmer(tokens, logger.Nop(), time.Minute, nil)

	if err := tw.Warm(context.Background()); err != nil {
		t.Fatalf("Warm failed: %v", err)
	}
	if err := tw.Warm(context.Background()); err != nil {
		t.Fatalf("Warm failed: %v", err)
	}
	if got := tokens.count(); got != 1 {
		t.Errorf("Expected 1 exchange, got %d", got)
	}

	if err := tw.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := tokens.count(); got != 2 {
		t.Errorf("Expected 2 exchanges after refresh, got %d", got)
	}
}

func TestTokenWarmer_ManualTrigger(t *testing.T) {
	tokens := &fakeTokens{}
	trigger := make(chan struct{}, 1)
	tw := NewTokenWarmer(tokens, logger.Nop(), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := tw.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tw.Stop()

	trigger <- struct{}{}
	deadline := time.Now().Add(2 * time.Second)
	for tokens.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := tokens.count(); got != 2 {
		t.Errorf("Expected manual trigger to exchange again, got %d exchanges", got)
	}
}

func TestTokenWarmer_StartToleratesFailure(t *testing.T) {
	tokens := &fakeTokens{err: errors.New("invalid app secret")}
	tw := NewTokenWarmer(tokens, logger.Nop(), time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := tw.Start(ctx); err != nil {
		t.Fatalf("Start should not fail on exchange errors: %v", err)
	}
	tw.Stop()

	if err := NewTokenWarmer(tokens, logger.Nop(), 0, nil).Start(ctx); err == nil {
		t.Error("Expected an error for a zero interval")
	}
}
