// Package redis caches proxied favicon bytes per hostname, with a hit
// counter hash pruned by the garbage collector.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/navsite/internal/favicon"
	"github.com/MrSnakeDoc/navsite/internal/logger"
)

var _ favicon.Cache = (*Store)(nil)

// Store is the favicon cache.
type Store struct {
	client *redis.Client
	logger logger.Logger
}

// NewStore wraps client. A nil logger discards.
func NewStore(client *redis.Client, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{client: client, logger: log}
}

// Ping reports whether the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
