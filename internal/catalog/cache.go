package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

var ErrCacheMiss = errors.New("menu item not in cache")

// Cache is a read-through cache in front of the menu repository.
type Cache interface {
	Get(ctx context.Context, id string) (*domain.MenuItem, error)
	Set(ctx context.Context, item *domain.MenuItem) error
	Delete(ctx context.Context, id string) error
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *RedisCache) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	data, err := r.client.Get(ctx, menuCacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var item domain.MenuItem
	if err2 := json.Unmarshal(data, &item); err2 != nil {
		return nil, fmt.Errorf("unmarshal menu item failed: %w", err2)
	}

	return &item, nil
}

func (r *RedisCache) Set(ctx context.Context, item *domain.MenuItem) error {
	blob, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal menu item failed: %w", err)
	}

	// jitter spreads expirations so a whole menu never misses at once
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, menuCacheKey(item.ID), blob, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, menuCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func menuCacheKey(id string) string {
	return fmt.Sprintf("menu:%s", id)
}
