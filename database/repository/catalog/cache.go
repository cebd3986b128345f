// File: database/repository/catalog/cache.go
package catalogRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meetingroom/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const catalogCachePrefix = "catalog:"

// CachedCatalog is a read-through Redis cache in front of another CatalogRepository.
// The catalog is static after seeding so entries are only expired by TTL.
type CachedCatalog struct {
	next   CatalogRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedCatalog(next CatalogRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCatalog{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) ListBuildings(ctx context.Context) (map[string]int, error) {
	key := catalogCachePrefix + "buildings"
	var out map[string]int
	if c.get(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.ListBuildings(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

func (c *CachedCatalog) ListFloors(ctx context.Context, buildingID int) (map[int]int, error) {
	key := fmt.Sprintf("%sfloors:%d", catalogCachePrefix, buildingID)
	var out map[int]int
	if c.get(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.ListFloors(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

func (c *CachedCatalog) ListRooms(ctx context.Context, buildingID, floorID int) (map[string]int, error) {
	key := fmt.Sprintf("%srooms:%d:%d", catalogCachePrefix, buildingID, floorID)
	var out map[string]int
	if c.get(ctx, key, &out) {
		return out, nil
	}
	// ErrNotFound is not cached.
	out, err := c.next.ListRooms(ctx, buildingID, floorID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

// SeedIfEmpty delegates and drops any cached entries when a seed actually happened.
func (c *CachedCatalog) SeedIfEmpty(ctx context.Context, catalog models.Catalog) (bool, error) {
	seeded, err := c.next.SeedIfEmpty(ctx, catalog)
	if err != nil || !seeded {
		return seeded, err
	}
	c.Invalidate(ctx)
	return true, nil
}

// Invalidate removes every catalog entry from the cache.
func (c *CachedCatalog) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, catalogCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("catalog cache scan failed", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("catalog cache invalidation failed", zap.Error(err))
		}
	}
}

// get reports a hit. Redis failures degrade to a miss.
func (c *CachedCatalog) get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedCatalog) set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
