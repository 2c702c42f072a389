package favicon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu    sync.Mutex
	icons map[string]Icon
}

func (m *mapCache) GetIcon(ctx context.Context, host string) (*Icon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if icon, ok := m.icons[host]; ok {
		return &icon, nil
	}
	return nil, nil
}

func (m *mapCache) SaveIcon(ctx context.Context, host string, icon Icon, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.icons == nil {
		m.icons = map[string]Icon{}
	}
	m.icons[host] = icon
	return nil
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"https://GitHub.com/foo", "github.com", false},
		{"http://localhost:8080", "localhost", false},
		{"", "", true},
		{"not a url", "", true},
		{"ftp://example.com", "", true},
		{"javascript:alert(1)", "", true},
		{"https://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTarget(tt.raw)
			if tt.wantErr {
				var v *domain.ValidationError
				require.ErrorAs(t, err, &v)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchCachesUpstream(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "github.com", r.URL.Query().Get("domain"))
		w.Header().Set("Content-Type", "image/x-icon")
		_, _ = w.Write([]byte("ICON"))
	}))
	defer upstream.Close()

	cache := &mapCache{}
	p := New(Options{Endpoint: upstream.URL + "/?domain=%s", Cache: cache}, logger.Nop())

	icon, err := p.Fetch(t.Context(), "github.com")
	require.NoError(t, err)
	assert.Equal(t, "image/x-icon", icon.ContentType)
	assert.Equal(t, []byte("ICON"), icon.Data)

	_, err = p.Fetch(t.Context(), "github.com")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	p := New(Options{Endpoint: upstream.URL + "/?domain=%s"}, logger.Nop())
	_, err := p.Fetch(t.Context(), "nowhere.invalid")
	var perr *domain.ProxyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "nowhere.invalid", perr.Host)
}

func TestFetchTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer upstream.Close()

	p := New(Options{Endpoint: upstream.URL + "/?domain=%s", Timeout: 20 * time.Millisecond}, logger.Nop())
	_, err := p.Fetch(t.Context(), "slow.example")
	var perr *domain.ProxyError
	require.ErrorAs(t, err, &perr)
}

func TestFallbackPNG(t *testing.T) {
	assert.Equal(t, "image/png", http.DetectContentType(FallbackPNG))
}
