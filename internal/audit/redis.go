package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-api/internal/todo"
)

// RedisRecorder stores each event under its own key with a TTL.
type RedisRecorder struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisRecorder(addr, password string, db int, ttl time.Duration, prefix string) *RedisRecorder {
	return NewRedisRecorderWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), ttl, prefix)
}

func NewRedisRecorderWithClient(client *redis.Client, ttl time.Duration, prefix string) *RedisRecorder {
	return &RedisRecorder{client: client, ttl: ttl, prefix: prefix}
}

func (r *RedisRecorder) Record(ctx context.Context, e todo.Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(e), raw, r.ttl).Err()
}

func (r *RedisRecorder) PingContext(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}

func (r *RedisRecorder) key(e todo.Event) string {
	return fmt.Sprintf("%s:%s:%d:%d", r.prefix, e.Op, e.TodoID, e.At.UnixNano())
}
