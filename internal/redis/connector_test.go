package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/navsite/internal/logger"
)

func testOptions(addr string) Options {
	return Options{
		Addr:           addr,
		DialTimeout:    100 * time.Millisecond,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  20 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), testOptions(mr.Addr()), logger.Nop())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}
}

func TestConnectGivesUp(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	start := time.Now()
	_, err := Connect(context.Background(), testOptions(addr), logger.Nop())
	if err == nil {
		t.Fatal("expected an error for a closed server")
	}
	if !strings.Contains(err.Error(), "redis unavailable") {
		t.Errorf("error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("gave up after %v, want about the connect timeout", elapsed)
	}
}

func TestConnectRejectsBadOptions(t *testing.T) {
	opts := testOptions("localhost:6379")
	opts.RetryInterval = 0
	opts.PingTimeout = 0

	_, err := Connect(context.Background(), opts, logger.Nop())
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"retry interval", "ping timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
