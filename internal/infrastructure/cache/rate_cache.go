package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RateCache stores BNR reference rates per currency and publication day.
type RateCache interface {
	Get(ctx context.Context, currency string, day time.Time) (decimal.Decimal, bool, error)
	Set(ctx context.Context, currency string, day time.Time, rate decimal.Decimal, ttl time.Duration) error
}

func rateKey(currency string, day time.Time) string {
	return "documentiulia:fx:" + currency + ":" + day.Format(time.DateOnly)
}

type RedisRateCache struct {
	client redis.UniversalClient
}

func NewRedisRateCache(client redis.UniversalClient) *RedisRateCache {
	return &RedisRateCache{client: client}
}

func (c *RedisRateCache) Get(ctx context.Context, currency string, day time.Time) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, rateKey(currency, day)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read cached rate: %w", err)
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt cached rate %q: %w", raw, err)
	}
	return rate, true, nil
}

func (c *RedisRateCache) Set(ctx context.Context, currency string, day time.Time, rate decimal.Decimal, ttl time.Duration) error {
	if err := c.client.Set(ctx, rateKey(currency, day), rate.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rate: %w", err)
	}
	return nil
}

type cachedRate struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

type InMemoryRateCache struct {
	mu    sync.RWMutex
	rates map[string]cachedRate
}

func NewInMemoryRateCache() *InMemoryRateCache {
	return &InMemoryRateCache{rates: make(map[string]cachedRate)}
}

func (c *InMemoryRateCache) Get(_ context.Context, currency string, day time.Time) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.rates[rateKey(currency, day)]
	if !ok || time.Now().After(entry.expiresAt) {
		return decimal.Zero, false, nil
	}
	return entry.rate, true, nil
}

func (c *InMemoryRateCache) Set(_ context.Context, currency string, day time.Time, rate decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[rateKey(currency, day)] = cachedRate{rate: rate, expiresAt: time.Now().Add(ttl)}
	return nil
}

var (
	_ RateCache = (*RedisRateCache)(nil)
	_ RateCache = (*InMemoryRateCache)(nil)
)
