package deps

import (
	"time"

	"github.com/MrSnakeDoc/navsite/internal/bitable"
	"github.com/MrSnakeDoc/navsite/internal/favicon"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/MrSnakeDoc/navsite/internal/navigation"
	redisstore "github.com/MrSnakeDoc/navsite/internal/store/redis"
	"github.com/MrSnakeDoc/navsite/internal/version"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Build     version.Info
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed on the mutation endpoints
	AllowedCIDRS []string // IPs allowed to access healthz/readyz/infra
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins  []string // origins allowed to call /api

	RateLimitBurst     int // mutation bucket size per client IP
	RateLimitPerMinute int // mutation refill per client IP per minute

	Navigation   *navigation.Service // record reads/writes with fallback
	Favicons     *favicon.Proxy      // upstream favicon proxy
	FaviconStore *redisstore.Store   // favicon byte cache (nil when Redis is disabled)
	Tokens       *bitable.TokenCache // nil for the sqlite backend
	TokenRefresh chan struct{}       // manual token refresh trigger (nil for the sqlite backend)
	Location     *time.Location      // page clock time zone
}

// Now returns the configured clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
