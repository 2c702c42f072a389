package favicon

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// DefaultEndpoint is the upstream favicon service. %s is the hostname.
const DefaultEndpoint = "https://www.google.com/s2/favicons?domain=%s&size=32"

const (
	// MaxAge is the client cache lifetime of a proxied icon.
	MaxAge = 24 * time.Hour
	// FallbackMaxAge is the client cache lifetime of the placeholder.
	FallbackMaxAge = 5 * time.Minute

	maxIconBytes = 1 << 20
)

// FallbackPNG is a 1x1 transparent PNG served whenever the upstream fails.
var FallbackPNG = mustDecode("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func mustDecode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Icon is an image body and its content type.
type Icon struct {
	ContentType string
	Data        []byte
}

// Cache stores fetched icons by hostname. Implementations must treat a
// miss as (nil, nil).
type Cache interface {
	GetIcon(ctx context.Context, host string) (*Icon, error)
	SaveIcon(ctx context.Context, host string, icon Icon, ttl time.Duration) error
}

// Options configures a Proxy.
type Options struct {
	Endpoint   string        // upstream URL template with one %s for the hostname
	Timeout    time.Duration // per upstream call (0 = 5s)
	HTTPClient *http.Client  // optional, for tests
	Cache      Cache         // optional
}

// Proxy fetches favicons from an upstream service.
type Proxy struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
	cache    Cache
	logger   logger.Logger
}

// New creates a Proxy.
func New(opts Options, log logger.Logger) *Proxy {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Proxy{
		endpoint: opts.Endpoint,
		timeout:  opts.Timeout,
		http:     hc,
		cache:    opts.Cache,
		logger:   log,
	}
}

// ParseTarget validates the url query parameter and returns its hostname.
func ParseTarget(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &domain.ValidationError{Field: "url", Message: "missing url parameter"}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "", &domain.ValidationError{Field: "url", Message: "invalid url format"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &domain.ValidationError{Field: "url", Message: "only http and https urls are supported"}
	}
	if u.Hostname() == "" {
		return "", &domain.ValidationError{Field: "url", Message: "invalid url format"}
	}
	return strings.ToLower(u.Hostname()), nil
}

// Fetch returns the icon for host, from the cache when possible. Every
// failure is a *domain.ProxyError.
func (p *Proxy) Fetch(ctx context.Context, host string) (Icon, error) {
	if p.cache != nil {
		cached, err := p.cache.GetIcon(ctx, host)
		if err != nil {
			p.logger.Warn("favicon cache read failed", logger.String("host", host), logger.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	icon, err := p.fetchUpstream(ctx, host)
	if err != nil {
		return Icon{}, &domain.ProxyError{Host: host, Err: err}
	}

	if p.cache != nil {
		if err := p.cache.SaveIcon(ctx, host, icon, MaxAge); err != nil {
			p.logger.Warn("favicon cache write failed", logger.String("host", host), logger.Error(err))
		}
	}
	return icon, nil
}

func (p *Proxy) fetchUpstream(ctx context.Context, host string) (Icon, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(p.endpoint, url.QueryEscape(host)), nil)
	if err != nil {
		return Icon{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return Icon{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Icon{}, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes+1))
	if err != nil {
		return Icon{}, fmt.Errorf("failed to read icon: %w", err)
	}
	if len(data) > maxIconBytes {
		return Icon{}, errors.New("icon exceeds size limit")
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return Icon{ContentType: ct, Data: data}, nil
}
