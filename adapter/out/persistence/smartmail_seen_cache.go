package persistence

import (
	"context"
	"time"

	"smartmail_server/pkg/cache"
)

const seenKeyPrefix = "smartmail:seen:"

// SeenCacheAdapter implements out.SeenCache over Redis. Entries expire so a
// pruned mailbox can be re-analyzed eventually.
type SeenCacheAdapter struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewSeenCacheAdapter creates the dedupe cache.
func NewSeenCacheAdapter(c *cache.RedisCache, ttl time.Duration) *SeenCacheAdapter {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SeenCacheAdapter{cache: c, ttl: ttl}
}

func (s *SeenCacheAdapter) Seen(ctx context.Context, messageID string) (bool, error) {
	return s.cache.Exists(ctx, seenKeyPrefix+messageID)
}

func (s *SeenCacheAdapter) MarkSeen(ctx context.Context, messageID string) error {
	return s.cache.Set(ctx, seenKeyPrefix+messageID, "1", s.ttl)
}
