package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/redis/go-redis/v9"
)

const settingsCacheKey = "menusphere:affiliate:settings"

// RedisSettingsCache keeps the settings row in redis for a short TTL
type RedisSettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSettingsCache creates a redis backed SettingsCache
func NewRedisSettingsCache(client *redis.Client, ttl time.Duration) *RedisSettingsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisSettingsCache{client: client, ttl: ttl}
}

func (c *RedisSettingsCache) Get(ctx context.Context) (*models.AffiliateSettings, error) {
	raw, err := c.client.Get(ctx, settingsCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var out models.AffiliateSettings
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RedisSettingsCache) Set(ctx context.Context, settings *models.AffiliateSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, settingsCacheKey, raw, c.ttl).Err()
}

func (c *RedisSettingsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, settingsCacheKey).Err()
}
