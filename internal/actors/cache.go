package actors

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
)

const cacheKeyPrefix = "sct:actor:"

// cachedDirectory keeps resolved names in redis. Only hits are cached so a
// newly imported actor shows up on the next lookup.
type cachedDirectory struct {
	redis adapter.RedisClient
	next  Directory
	ttl   time.Duration
}

// NewCachedDirectory wraps next with a redis read-through cache.
// Redis failures are logged and the lookup falls through to next.
func NewCachedDirectory(client adapter.RedisClient, next Directory, ttl time.Duration) Directory {
	return &cachedDirectory{redis: client, next: next, ttl: ttl}
}

func (d *cachedDirectory) Lookup(ctx context.Context, address string) (*string, error) {
	if address == "" {
		return nil, nil
	}
	key := cacheKey(address)

	name, found, err := d.redis.Get(ctx, key)
	if err != nil {
		logger.WarnCtx(ctx, "Actor cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		return &name, nil
	}

	resolved, err := d.next.Lookup(ctx, address)
	if err != nil || resolved == nil {
		return resolved, err
	}

	if err := d.redis.Set(ctx, key, *resolved, d.ttl); err != nil {
		logger.WarnCtx(ctx, "Actor cache write failed", zap.String("key", key), zap.Error(err))
	}
	return resolved, nil
}

func cacheKey(address string) string {
	return fmt.Sprintf("%s%s", cacheKeyPrefix, domain.NormalizeAddress(address))
}
