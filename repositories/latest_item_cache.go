package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/thu-HZML/SmartPaste-sub000/models"

	"github.com/redis/go-redis/v9"
)

// MemoryLatestItemCache is the default single-process slot.
type MemoryLatestItemCache struct {
	mu   sync.RWMutex
	item *models.ClipboardItem
}

func NewMemoryLatestItemCache() *MemoryLatestItemCache {
	return &MemoryLatestItemCache{}
}

func (c *MemoryLatestItemCache) Set(_ context.Context, item models.ClipboardItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := item
	c.item = &copied
	return nil
}

func (c *MemoryLatestItemCache) Get(_ context.Context) (*models.ClipboardItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.item == nil {
		return nil, nil
	}
	copied := *c.item
	return &copied, nil
}

// RedisLatestItemCache shares the slot across processes when redis is
// configured.
type RedisLatestItemCache struct {
	redis *redis.Client
}

func NewRedisLatestItemCache(redisClient *redis.Client) *RedisLatestItemCache {
	return &RedisLatestItemCache{redis: redisClient}
}

const latestItemKey = "smartpaste:latest_item"

func (c *RedisLatestItemCache) Set(ctx context.Context, item models.ClipboardItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, latestItemKey, data, 0).Err()
}

func (c *RedisLatestItemCache) Get(ctx context.Context) (*models.ClipboardItem, error) {
	data, err := c.redis.Get(ctx, latestItemKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var item models.ClipboardItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
