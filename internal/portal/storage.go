// Package portal holds the client side of the navigation portal: the data
// manager with its TTL cache, icon and badge resolution, theme state, search
// and the install prompt. State that a browser keeps in localStorage goes
// through the Storage interface.
package portal

import (
	"sort"
	"strings"
	"sync"
)

// Persisted keys.
const (
	KeyNavigationCache = "navsite_navigation_cache"
	KeyTheme           = "theme"
	KeySkin            = "skin-theme"
	KeyInstallDismiss  = "pwa-install-dismissed"
	KeyFaviconPrefix   = "favicon_"
)

// Storage is a string key/value store. A missing key is ("", false, nil).
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Keys(prefix string) ([]string, error)
}

// MemoryStorage is a Storage kept in memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}
