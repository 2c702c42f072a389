package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Table backends
const (
	BackendBitable = "bitable"
	BackendSQLite  = "sqlite"
)

type Config struct {
	ListenPort      string        // ex: ":3000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline for handlers

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Table backend
	TableBackend string // "bitable" | "sqlite"
	SQLitePath   string // sqlite database file (sqlite backend)
	FallbackFile string // optional yaml dataset served when the backend fails (empty = built-in)

	// Feishu bitable
	FeishuBaseURL   string        // ex: https://open.feishu.cn
	FeishuAppID     string        // app id
	FeishuAppSecret string        // app secret
	FeishuAppToken  string        // bitable app token
	FeishuTableID   string        // table id
	FeishuTimeout   time.Duration // per remote call
	FeishuMaxPages  int           // page cap when listing records
	TokenWarmEvery  time.Duration // token warmer interval (0 = disabled)

	// Favicon proxy
	FaviconEndpoint string        // upstream template, %s = hostname
	FaviconTimeout  time.Duration // upstream timeout (default 5s)
	FaviconGCEvery  time.Duration // hit counter pruning interval (Redis only)

	Location *time.Location // time zone used for dateInfo

	// Redis (optional favicon cache, empty addr = disabled)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 10s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Mutation rate limit
	RateLimitBurst     int // bucket size per client IP
	RateLimitPerMinute int // refill per client IP per minute

	CORSOrigins  []string // allowed origins for /api ("*" = any)
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict infra endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("NAV_LISTEN_PORT", ":3000"),
		ShutdownTimeout: mustDuration("NAV_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("NAV_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("NAV_LOG_LEVEL", "info"),
		PrettyLog: mustBool("NAV_PRETTY_LOG", true),

		// Backend
		TableBackend: strings.ToLower(getenv("NAV_TABLE_BACKEND", BackendBitable)),
		SQLitePath:   getenv("NAV_SQLITE_PATH", "navsite.db"),
		FallbackFile: getenv("NAV_FALLBACK_FILE", ""),

		FeishuBaseURL:  getenv("NAV_FEISHU_BASE_URL", "https://open.feishu.cn"),
		FeishuTimeout:  mustDuration("NAV_FEISHU_TIMEOUT", 10*time.Second),
		FeishuMaxPages: getenvInt("NAV_BITABLE_MAX_PAGES", 10),
		TokenWarmEvery: mustDuration("NAV_TOKEN_WARM_INTERVAL", time.Minute),

		FaviconEndpoint: getenv("NAV_FAVICON_ENDPOINT", "https://www.google.com/s2/favicons?domain=%s&size=32"),
		FaviconTimeout:  mustDuration("NAV_FAVICON_TIMEOUT", 5*time.Second),
		FaviconGCEvery:  mustDuration("NAV_FAVICON_GC_INTERVAL", time.Hour),

		Location: mustLocation("NAV_TIMEZONE", "Asia/Shanghai"),

		// Redis settings
		RedisAddr:           getenv("NAV_REDIS_ADDR", ""),
		RedisUser:           getenv("NAV_REDIS_USERNAME", ""),
		RedisPassword:       getenv("NAV_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("NAV_REDIS_DB", 0),
		RedisDT:             mustDuration("NAV_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("NAV_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("NAV_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("NAV_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("NAV_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("NAV_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("NAV_REDIS_CONNECT_TIMEOUT", 10*time.Second),
		RedisRetryInterval:  mustDuration("NAV_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("NAV_REDIS_WARN_THRESHOLD", 3),

		RateLimitBurst:     getenvInt("NAV_RATE_LIMIT_BURST", 10),
		RateLimitPerMinute: getenvInt("NAV_RATE_LIMIT_PER_MINUTE", 30),

		// Access restrictions
		CORSOrigins:  splitAndTrim(getenv("NAV_CORS_ORIGINS", "*")),
		AllowedHosts: splitAndTrim(getenv("NAV_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("NAV_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("NAV_TRUST_PROXY", false),
	}

	switch cfg.TableBackend {
	case BackendBitable:
		cfg.FeishuAppID = requireEnv("NAV_FEISHU_APP_ID")
		cfg.FeishuAppSecret = requireEnv("NAV_FEISHU_APP_SECRET")
		cfg.FeishuAppToken = requireEnv("NAV_FEISHU_APP_TOKEN")
		cfg.FeishuTableID = requireEnv("NAV_FEISHU_TABLE_ID")
	case BackendSQLite:
	default:
		panic(fmt.Sprintf("❌ FATAL: unknown NAV_TABLE_BACKEND %q (want %s or %s)",
			cfg.TableBackend, BackendBitable, BackendSQLite))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.FeishuAppSecret != "" {
		cp.FeishuAppSecret = "***REDACTED***"
	}
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func mustLocation(key, def string) *time.Location {
	name := getenv(key, def)
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Fixed offset fallback for images without tzdata
		if name == "Asia/Shanghai" {
			return time.FixedZone("CST", 8*3600)
		}
		panic(fmt.Sprintf("❌ FATAL: Invalid time zone for %s: %s", key, name))
	}
	return loc
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
