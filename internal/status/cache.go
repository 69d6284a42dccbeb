package status

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/vehicle-fleet-service/internal/model"
)

// RedisCache keeps resolved statuses in Redis under
// vehicle:status:<id>. Entries expire so a stale value cannot outlive
// a missed invalidation for long. Every operation degrades silently:
// when Redis is down, reads report a miss and writes are dropped, and
// callers fall back to the database.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a connected Redis client. ttl <= 0 falls back to
// five minutes.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func statusKey(vehicleID uint64) string {
	return fmt.Sprintf("vehicle:status:%d", vehicleID)
}

// Get returns the cached status and whether it was present and valid.
func (c *RedisCache) Get(ctx context.Context, vehicleID uint64) (model.VehicleStatus, bool) {
	val, err := c.client.Get(ctx, statusKey(vehicleID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("status-cache: get vehicle %d failed: %v", vehicleID, err)
		}
		return "", false
	}
	s := model.VehicleStatus(val)
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// Set stores the status under the cache TTL.
func (c *RedisCache) Set(ctx context.Context, vehicleID uint64, s model.VehicleStatus) {
	if err := c.client.Set(ctx, statusKey(vehicleID), string(s), c.ttl).Err(); err != nil {
		log.Printf("status-cache: set vehicle %d failed: %v", vehicleID, err)
	}
}

// Invalidate drops the cached entry.
func (c *RedisCache) Invalidate(ctx context.Context, vehicleID uint64) {
	if err := c.client.Del(ctx, statusKey(vehicleID)).Err(); err != nil {
		log.Printf("status-cache: invalidate vehicle %d failed: %v", vehicleID, err)
	}
}
