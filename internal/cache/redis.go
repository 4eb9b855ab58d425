package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on top of a Redis server.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	metrics   *Metrics
}

// Metrics tracks cache performance.
type Metrics struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	errors  prometheus.Counter
	sets    prometheus.Counter
	deletes prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		hits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		}),
		misses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		}),
		errors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache errors",
		}),
		sets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cache_sets_total",
			Help: "Total number of cache sets",
		}),
		deletes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cache_deletes_total",
			Help: "Total number of cache deletes",
		}),
	}
}

// RedisConfig defines the Redis connection settings.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg *RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		metrics:   newMetrics(),
	}, nil
}

func (c *RedisCache) prefixed(key string) string {
	if c.keyPrefix == "" {
		return key
	}
	return c.keyPrefix + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.prefixed(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.metrics.misses.Inc()
			return false, nil
		}
		c.metrics.errors.Inc()
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.metrics.errors.Inc()
		return false, fmt.Errorf("unmarshal cached value for %s: %w", key, err)
	}
	c.metrics.hits.Inc()
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.metrics.errors.Inc()
		return fmt.Errorf("marshal value for %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefixed(key), data, ttl).Err(); err != nil {
		c.metrics.errors.Inc()
		return err
	}
	c.metrics.sets.Inc()
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefixed(key)).Err(); err != nil {
		c.metrics.errors.Inc()
		return err
	}
	c.metrics.deletes.Inc()
	return nil
}

// DeletePattern walks matching keys with SCAN rather than KEYS so a large
// keyspace does not block the server.
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	var deleted int
	iter := c.client.Scan(ctx, 0, c.prefixed(pattern), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.metrics.errors.Inc()
			return deleted, err
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		c.metrics.errors.Inc()
		return deleted, err
	}
	c.metrics.deletes.Inc()
	return deleted, nil
}

// Close tears down the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
