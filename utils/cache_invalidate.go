package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheInvalidator drops cached feed responses after event mutations.
type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

// PurgeEventFeeds deletes every cached events-feed key.
func (ci *CacheInvalidator) PurgeEventFeeds(ctx context.Context) {
	iter := ci.rdb.Scan(ctx, 0, "cache:events:*", 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}
