package portal

import (
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// FaviconTTL is how long a persisted favicon url stays valid.
const FaviconTTL = 24 * time.Hour

type faviconEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// FaviconResolver maps a site url to its proxied favicon url, memoised in
// memory and persisted per hostname.
type FaviconResolver struct {
	proxyURL func(siteURL string) string
	storage  Storage
	now      func() time.Time
	logger   logger.Logger

	mu   sync.Mutex
	memo map[string]string
}

// NewFaviconResolver builds a resolver. proxyURL turns a site url into the
// favicon endpoint address.
func NewFaviconResolver(proxyURL func(string) string, storage Storage, now func() time.Time, log logger.Logger) *FaviconResolver {
	if now == nil {
		now = time.Now
	}
	return &FaviconResolver{
		proxyURL: proxyURL,
		storage:  storage,
		now:      now,
		logger:   log,
		memo:     make(map[string]string),
	}
}

// Resolve returns the favicon url for siteURL, or "" if the url has no host.
func (r *FaviconResolver) Resolve(siteURL string) string {
	host := hostOf(siteURL)
	if host == "" {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.memo[host]; ok {
		return u
	}

	key := KeyFaviconPrefix + host
	if raw, ok, err := r.storage.GetItem(key); err == nil && ok {
		var e faviconEntry
		if json.Unmarshal([]byte(raw), &e) == nil && e.URL != "" &&
			r.now().Sub(time.UnixMilli(e.Timestamp)) < FaviconTTL {
			r.memo[host] = e.URL
			return e.URL
		}
		_ = r.storage.RemoveItem(key)
	}

	u := r.proxyURL(siteURL)
	r.memo[host] = u
	data, _ := json.Marshal(faviconEntry{URL: u, Timestamp: r.now().UnixMilli()})
	if err := r.storage.SetItem(key, string(data)); err != nil {
		r.logger.Warn("favicon cache write failed", logger.String("host", host), logger.Error(err))
	}
	return u
}

// Flush clears the memo and every persisted favicon entry.
func (r *FaviconResolver) Flush() error {
	r.mu.Lock()
	r.memo = make(map[string]string)
	r.mu.Unlock()

	keys, err := r.storage.Keys(KeyFaviconPrefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := r.storage.RemoveItem(k); err != nil {
			return err
		}
	}
	return nil
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
