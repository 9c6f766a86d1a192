package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type RedisRateCache struct {
	client *redis.Client
}

func NewRedisRateCache(addr string, password string, db int) *RedisRateCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisRateCache{client: client}
}

func (c *RedisRateCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisRateCache) Close() error {
	return c.client.Close()
}

func (c *RedisRateCache) GetRate(ctx context.Context, storeID int64) (float64, bool, error) {
	val, err := c.client.Get(ctx, rateKey(storeID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, err
	}
	return rate, true, nil
}

func (c *RedisRateCache) SetRate(ctx context.Context, storeID int64, rate float64, ttl time.Duration) error {
	return c.client.Set(ctx, rateKey(storeID), strconv.FormatFloat(rate, 'f', -1, 64), ttl).Err()
}

func rateKey(storeID int64) string {
	return fmt.Sprintf("store_rate:%d", storeID)
}
