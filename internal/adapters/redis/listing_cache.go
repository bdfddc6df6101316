package redis_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	"github.com/redis/go-redis/v9"
)

// ListingCache хранит страницы объявлений в Redis.
// Ключи включают номер поколения; Invalidate увеличивает его, и старые ключи
// просто доживают свой TTL, никто их больше не читает.
type ListingCache struct {
	client commands
	prefix string
	ttl    time.Duration
}

func NewListingCache(client *redis.Client, prefix string, ttl time.Duration) (*ListingCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return newListingCache(client, prefix, ttl)
}

func newListingCache(client commands, prefix string, ttl time.Duration) (*ListingCache, error) {
	if prefix == "" {
		return nil, fmt.Errorf("cache key prefix cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	return &ListingCache{client: client, prefix: prefix, ttl: ttl}, nil
}

func (c *ListingCache) generationKey() string {
	return c.prefix + ":generation"
}

func (c *ListingCache) generation(ctx context.Context) (int64, error) {
	raw, err := c.client.Get(ctx, c.generationKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (c *ListingCache) pageKey(ctx context.Context, key string) (string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read cache generation: %w", err)
	}
	return fmt.Sprintf("%s:%d:%s", c.prefix, gen, key), nil
}

// GetListings читает страницу текущего поколения. При промахе Token указывает,
// куда записать страницу, прочитанную из БД после этого вызова.
func (c *ListingCache) GetListings(ctx context.Context, key string) (port.ListingPage, error) {
	fullKey, err := c.pageKey(ctx, key)
	if err != nil {
		return port.ListingPage{}, err
	}

	data, err := c.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return port.ListingPage{Token: fullKey}, nil
	}
	if err != nil {
		return port.ListingPage{}, fmt.Errorf("failed to read cached listings: %w", err)
	}

	var properties []domain.Property
	if err := json.Unmarshal(data, &properties); err != nil {
		return port.ListingPage{}, fmt.Errorf("failed to decode cached listings: %w", err)
	}
	return port.ListingPage{Items: properties, Hit: true, Token: fullKey}, nil
}

// SetListings не перечитывает поколение: запись идет в поколение, увиденное при чтении.
func (c *ListingCache) SetListings(ctx context.Context, token string, properties []domain.Property) error {
	if token == "" {
		return nil
	}

	data, err := json.Marshal(properties)
	if err != nil {
		return fmt.Errorf("failed to encode listings: %w", err)
	}
	if err := c.client.Set(ctx, token, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cached listings: %w", err)
	}
	return nil
}

func (c *ListingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}

// NoopListingCache используется, когда Redis выключен: каждый запрос идет в БД.
type NoopListingCache struct{}

func (NoopListingCache) GetListings(context.Context, string) (port.ListingPage, error) {
	return port.ListingPage{}, nil
}

func (NoopListingCache) SetListings(context.Context, string, []domain.Property) error { return nil }

func (NoopListingCache) Invalidate(context.Context) error { return nil }
