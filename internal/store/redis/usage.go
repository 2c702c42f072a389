package redis

import (
	"context"
	"fmt"
	"strconv"
)

// recordHit increments the cache hit counter for a hostname
func (s *Store) recordHit(ctx context.Context, host string) error {
	if err := s.client.HIncrBy(ctx, KeyFaviconHits, host, 1).Err(); err != nil {
		return fmt.Errorf("failed to record icon hit: %w", err)
	}
	return nil
}

// GetUsageStats retrieves cache hit counts per hostname
func (s *Store) GetUsageStats(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, KeyFaviconHits).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get icon hits: %w", err)
	}

	stats := make(map[string]int64, len(raw))
	for host, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		stats[host] = n
	}

	return stats, nil
}

// PruneHits removes hit counters of hosts that no longer have an icon
// cached and returns how many were removed.
func (s *Store) PruneHits(ctx context.Context) (int, error) {
	stats, err := s.GetUsageStats(ctx)
	if err != nil {
		return 0, err
	}
	cached, err := s.CachedHosts(ctx)
	if err != nil {
		return 0, err
	}

	keep := make(map[string]bool, len(cached))
	for _, h := range cached {
		keep[h] = true
	}
	var stale []string
	for host := range stats {
		if !keep[host] {
			stale = append(stale, host)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := s.client.HDel(ctx, KeyFaviconHits, stale...).Err(); err != nil {
		return 0, fmt.Errorf("failed to prune icon hits: %w", err)
	}
	return len(stale), nil
}
