package portal

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// CacheTTL is how long a navigation payload is served from cache.
const CacheTTL = 5 * time.Minute

// NavigationCache holds the last good navigation payload.
type NavigationCache interface {
	// Get returns the payload if it was stored less than CacheTTL before now.
	Get(now time.Time) (Payload, bool)
	Set(p Payload, now time.Time)
	Invalidate()
}

// MemoryCache keeps the payload in process memory.
type MemoryCache struct {
	mu        sync.Mutex
	payload   Payload
	timestamp time.Time
	valid     bool
}

func (c *MemoryCache) Get(now time.Time) (Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || now.Sub(c.timestamp) >= CacheTTL {
		return Payload{}, false
	}
	return c.payload, true
}

func (c *MemoryCache) Set(p Payload, now time.Time) {
	c.mu.Lock()
	c.payload = p
	c.timestamp = now
	c.valid = true
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate() {
	c.mu.Lock()
	c.payload = Payload{}
	c.valid = false
	c.mu.Unlock()
}

type storedEntry struct {
	Data      Payload `json:"data"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
}

// StorageCache persists the payload under KeyNavigationCache. Expired or
// unreadable entries are removed when read.
type StorageCache struct {
	storage Storage
	logger  logger.Logger
}

// NewStorageCache wraps a Storage.
func NewStorageCache(storage Storage, log logger.Logger) *StorageCache {
	return &StorageCache{storage: storage, logger: log}
}

func (c *StorageCache) Get(now time.Time) (Payload, bool) {
	raw, ok, err := c.storage.GetItem(KeyNavigationCache)
	if err != nil {
		c.logger.Warn("navigation cache read failed", logger.Error(err))
		return Payload{}, false
	}
	if !ok {
		return Payload{}, false
	}

	var entry storedEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Data.Data == nil {
		c.logger.Warn("evicting unreadable navigation cache entry")
		c.Invalidate()
		return Payload{}, false
	}
	if now.Sub(time.UnixMilli(entry.Timestamp)) >= CacheTTL {
		c.Invalidate()
		return Payload{}, false
	}
	return entry.Data, true
}

func (c *StorageCache) Set(p Payload, now time.Time) {
	data, err := json.Marshal(storedEntry{Data: p, Timestamp: now.UnixMilli()})
	if err != nil {
		c.logger.Warn("navigation cache encode failed", logger.Error(err))
		return
	}
	if err := c.storage.SetItem(KeyNavigationCache, string(data)); err != nil {
		c.logger.Warn("navigation cache write failed", logger.Error(err))
	}
}

func (c *StorageCache) Invalidate() {
	if err := c.storage.RemoveItem(KeyNavigationCache); err != nil {
		c.logger.Warn("navigation cache eviction failed", logger.Error(err))
	}
}
