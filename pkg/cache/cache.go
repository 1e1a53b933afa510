package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// defaultOperationTimeout is the timeout for individual Redis operations
	defaultOperationTimeout = 5 * time.Second

	datasetTTL = 5 * time.Minute
)

var (
	ErrCacheDisabled = errors.New("cache disabled")
	ErrCacheMiss     = errors.New("key not found")
)

type Cache struct {
	client  *redis.Client
	enabled bool
}

func NewCache(addr string, enable bool) (*Cache, error) {
	if !enable {
		return &Cache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client:  client,
		enabled: true,
	}, nil
}

func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// operationContext bounds a single Redis operation.
func (c *Cache) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, defaultOperationTimeout)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, expiration).Err()
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrCacheDisabled
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrCacheMiss
	} else if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	return c.client.Del(ctx, key).Err()
}

func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// IncrementWithExpiry increments key and refreshes its TTL in one round trip.
func (c *Cache) IncrementWithExpiry(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	if !c.Enabled() {
		return 0, ErrCacheDisabled
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if expiration > 0 {
		pipe.Expire(ctx, key, expiration)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *Cache) GetInt(ctx context.Context, key string) (int64, error) {
	if !c.Enabled() {
		return 0, ErrCacheDisabled
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	val, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, ErrCacheMiss
	}
	return val, err
}

func (c *Cache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(ctx)
	defer cancel()

	return c.client.Expire(ctx, key, expiration).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func ShellStateKey(sessionID string) string {
	return fmt.Sprintf("shell:%s", sessionID)
}

func DatasetKey(slug, filtersHash string) string {
	return fmt.Sprintf("dashboard:%s:%s", slug, filtersHash)
}

func (c *Cache) CacheDataset(ctx context.Context, slug, filtersHash string, dataset interface{}) error {
	return c.Set(ctx, DatasetKey(slug, filtersHash), dataset, datasetTTL)
}

func (c *Cache) GetCachedDataset(ctx context.Context, slug, filtersHash string, dest interface{}) error {
	return c.Get(ctx, DatasetKey(slug, filtersHash), dest)
}

// DeleteDataset drops a single cached dataset, for example one that no longer
// decodes.
func (c *Cache) DeleteDataset(ctx context.Context, slug, filtersHash string) error {
	return c.Delete(ctx, DatasetKey(slug, filtersHash))
}

func (c *Cache) InvalidateDashboards(ctx context.Context) error {
	return c.DeletePattern(ctx, "dashboard:*")
}
