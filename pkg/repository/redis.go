package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/insomnia-fuel/cafe-api/pkg/config"
	"github.com/insomnia-fuel/cafe-api/pkg/models"
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

const menuListKey = "menu:all"
const menuListTTL = 5 * time.Minute

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// CacheMenu stores the public menu listing.
func (r *RedisRepository) CacheMenu(ctx context.Context, items []models.MenuItem) error {
	return r.SetJSON(ctx, menuListKey, items, menuListTTL)
}

func (r *RedisRepository) GetMenuCache(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.GetJSON(ctx, menuListKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// InvalidateMenu drops the cached listing after any menu write.
func (r *RedisRepository) InvalidateMenu(ctx context.Context) error {
	return r.Del(ctx, menuListKey)
}
