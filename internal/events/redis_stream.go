package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStreamSink writes events to a Redis stream per topic. Streams give
// at-least-once hand-off to consumers without requiring a broker cluster.
type RedisStreamSink struct {
	client *redis.Client
	maxLen int64
}

func NewRedisStreamSink(addr, password string, db int) (*RedisStreamSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStreamSink{client: client, maxLen: 10000}, nil
}

func (s *RedisStreamSink) Send(ctx context.Context, topic string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{"event": body},
	}).Err()
}

func (s *RedisStreamSink) Close() error {
	return s.client.Close()
}
