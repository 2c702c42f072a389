package redis

import (
	"testing"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/favicon"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, logger.Nop()), mr
}

func TestIconRoundTrip(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := t.Context()

	miss, err := s.GetIcon(ctx, "github.com")
	require.NoError(t, err)
	assert.Nil(t, miss)

	icon := favicon.Icon{ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	require.NoError(t, s.SaveIcon(ctx, "GitHub.com", icon, time.Hour))

	got, err := s.GetIcon(ctx, "github.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, icon, *got)

	stats, err := s.GetUsageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["github.com"])

	mr.FastForward(2 * time.Hour)
	got, err = s.GetIcon(ctx, "github.com")
	require.NoError(t, err)
	assert.Nil(t, got, "expired icon must be a miss")
}

func TestGetIconServesHitWhenCounterFails(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := t.Context()

	icon := favicon.Icon{ContentType: "image/x-icon", Data: []byte{0, 0, 1, 0}}
	require.NoError(t, s.SaveIcon(ctx, "example.com", icon, time.Hour))
	// A string under the counter key makes HINCRBY fail with WRONGTYPE.
	require.NoError(t, mr.Set(KeyFaviconHits, "corrupt"))

	got, err := s.GetIcon(ctx, "example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, icon, *got)
}

func TestFlushIcons(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := t.Context()

	for _, host := range []string{"a.example", "b.example"} {
		require.NoError(t, s.SaveIcon(ctx, host, favicon.Icon{ContentType: "image/png", Data: []byte("x")}, time.Hour))
	}

	hosts, err := s.CachedHosts(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.example", "b.example"}, hosts)

	n, err := s.FlushIcons(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hosts, err = s.CachedHosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestInvalidateIcon(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.SaveIcon(ctx, "a.example", favicon.Icon{Data: []byte("x")}, time.Hour))
	require.NoError(t, s.InvalidateIcon(ctx, "a.example"))
	got, err := s.GetIcon(ctx, "a.example")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExtractHost(t *testing.T) {
	host, err := ExtractHost(FaviconKey("Example.com"))
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)

	_, err = ExtractHost("other:key")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, s.Ping(t.Context()))

	mr.Close()
	assert.Error(t, s.Ping(t.Context()))
}
