package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores verified coverage records between submissions so repeat
// validations inside the refresh window skip the upstream call.
type Cache interface {
	Get(ctx context.Context, key string) (*Record, bool)
	Set(ctx context.Context, key string, record *Record, ttl time.Duration)
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a Redis client as a coverage-record cache shared
// across service instances.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Record, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		return nil, false
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	return &record, true
}

func (c *redisCache) Set(ctx context.Context, key string, record *Record, ttl time.Duration) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, ttl)
}

func cacheKey(payerCode, memberID string) string {
	return fmt.Sprintf("eligibility:%s:%s", payerCode, memberID)
}
