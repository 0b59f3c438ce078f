package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      redis.UniversalClient
	airportsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, airportsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		airportsTTL,
	)
}

func NewRedisCacheWithClient(client redis.UniversalClient, airportsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, airportsTTL: airportsTTL}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetAirports(ctx context.Context) ([]domain.Airport, error) {
	data, err := c.client.Get(ctx, airportsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var airports []domain.Airport
	if err := json.Unmarshal(data, &airports); err != nil {
		return nil, err
	}
	return airports, nil
}

func (c *RedisCache) SetAirports(ctx context.Context, airports []domain.Airport) error {
	payload, err := json.Marshal(airports)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, airportsKey(), payload, c.airportsTTL).Err()
}

// AcquireFareLock takes a short exclusive hold on a fare class while its seats are counted down.
func (c *RedisCache) AcquireFareLock(ctx context.Context, fareID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, fareLockKey(fareID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseFareLock(ctx context.Context, fareID int64) error {
	return c.client.Del(ctx, fareLockKey(fareID)).Err()
}

func (c *RedisCache) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedTokenKey(tokenID), "1", ttl).Err()
}

func (c *RedisCache) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func airportsKey() string {
	return "cache:airports"
}

func fareLockKey(fareID int64) string {
	return fmt.Sprintf("lock:fare:%d", fareID)
}

func revokedTokenKey(tokenID string) string {
	return fmt.Sprintf("auth:revoked:%s", tokenID)
}
