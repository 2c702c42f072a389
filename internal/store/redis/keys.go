package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixFavicon is the prefix for cached favicon hashes
	KeyPrefixFavicon = "navsite:favicon:"
	// KeyFaviconHits is the hash of cache hits per hostname
	KeyFaviconHits = "navsite:favicon-hits"
)

// FaviconKey returns the Redis key for a hostname's icon
func FaviconKey(host string) string {
	return KeyPrefixFavicon + strings.ToLower(host)
}

// ExtractHost extracts the hostname from a favicon key
func ExtractHost(key string) (string, error) {
	if len(key) <= len(KeyPrefixFavicon) || !strings.HasPrefix(key, KeyPrefixFavicon) {
		return "", fmt.Errorf("invalid favicon key: %s", key)
	}
	return key[len(KeyPrefixFavicon):], nil
}
