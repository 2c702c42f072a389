package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/navsite/internal/favicon"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	redisstore "github.com/MrSnakeDoc/navsite/internal/store/redis"
)

func TestGarbageCollector_Collect(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	store := redisstore.NewStore(client, logger.Nop())
	ctx := context.Background()

	icon := favicon.Icon{ContentType: "image/png", Data: []byte{1}}
	if err := store.SaveIcon(ctx, "short.example", icon, time.Minute); err != nil {
		t.Fatalf("SaveIcon failed: %v", err)
	}
	if err := store.SaveIcon(ctx, "long.example", icon, time.Hour); err != nil {
		t.Fatalf("SaveIcon failed: %v", err)
	}
	for _, host := range []string{"short.example", "long.example"} {
		if _, err := store.GetIcon(ctx, host); err != nil {
			t.Fatalf("GetIcon failed: %v", err)
		}
	}

	// Expire the short-lived icon
	mr.FastForward(2 * time.Minute)

	gc := NewGarbageCollector(store, logger.Nop(), time.Hour)
	if err := gc.Collect(ctx); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	stats, err := store.GetUsageStats(ctx)
	if err != nil {
		t.Fatalf("GetUsageStats failed: %v", err)
	}
	if len(stats) != 1 {
		t.Errorf("Expected 1 counter after GC, got %d", len(stats))
	}
	if stats["long.example"] != 1 {
		t.Errorf("Counter of cached host was incorrectly removed: %v", stats)
	}
	if _, ok := stats["short.example"]; ok {
		t.Error("Counter of expired host was not removed")
	}
}
