package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/favicon"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/redis/go-redis/v9"
)

const (
	fieldContentType = "ct"
	fieldData        = "data"
)

// SaveIcon stores an icon for a hostname
func (s *Store) SaveIcon(ctx context.Context, host string, icon favicon.Icon, ttl time.Duration) error {
	key := FaviconKey(host)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fieldContentType, icon.ContentType, fieldData, icon.Data)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache icon: %w", err)
	}
	return nil
}

// GetIcon retrieves a cached icon. A miss returns (nil, nil).
func (s *Store) GetIcon(ctx context.Context, host string) (*favicon.Icon, error) {
	vals, err := s.client.HGetAll(ctx, FaviconKey(host)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached icon: %w", err)
	}
	data, ok := vals[fieldData]
	if !ok {
		return nil, nil // Cache miss
	}

	// Hit counting is best effort.
	if err := s.recordHit(ctx, host); err != nil {
		s.logger.Warn("failed to record favicon hit", logger.String("host", host), logger.Error(err))
	}
	return &favicon.Icon{ContentType: vals[fieldContentType], Data: []byte(data)}, nil
}

// InvalidateIcon removes a cached icon
func (s *Store) InvalidateIcon(ctx context.Context, host string) error {
	if err := s.client.Del(ctx, FaviconKey(host)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate icon: %w", err)
	}
	return nil
}

// FlushIcons removes all cached icons and returns how many were deleted
func (s *Store) FlushIcons(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixFavicon+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return n, fmt.Errorf("failed to delete icon key: %w", err)
		}
		n++
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("failed to flush icons: %w", err)
	}
	return n, nil
}

// CachedHosts lists the hostnames that currently have an icon cached
func (s *Store) CachedHosts(ctx context.Context) ([]string, error) {
	var hosts []string
	iter := s.client.Scan(ctx, 0, KeyPrefixFavicon+"*", 0).Iterator()
	for iter.Next(ctx) {
		host, err := ExtractHost(iter.Val())
		if err != nil {
			continue
		}
		hosts = append(hosts, host)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan icons: %w", err)
	}
	return hosts, nil
}
