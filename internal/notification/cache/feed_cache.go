package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda o feed de notificações já montado, por usuário
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *Cache { return &Cache{R: r, TTL: ttl} }

func keyFeed(userID string) string { return "notifications:feed:" + userID }

func (c *Cache) GetFeed(ctx context.Context, userID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyFeed(userID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetFeed(ctx context.Context, userID string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyFeed(userID), b, c.TTL).Err()
}

// InvalidateFeed descarta o feed montado; a próxima leitura volta no banco
func (c *Cache) InvalidateFeed(ctx context.Context, userID string) error {
	return c.R.Del(ctx, keyFeed(userID)).Err()
}
