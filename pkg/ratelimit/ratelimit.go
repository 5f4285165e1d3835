package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter ограничитель запросов с фиксированным окном на Redis.
// Ключ счётчика: prefix:key:номер_окна.
type Limiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	prefix string
	now    func() time.Time
}

// New создает ограничитель: не более limit запросов за window на ключ
func New(client redis.Cmdable, limit int, window time.Duration, prefix string) *Limiter {
	return &Limiter{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: prefix,
		now:    time.Now,
	}
}

// Allow увеличивает счётчик ключа и сообщает, укладывается ли запрос в лимит
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	windowIdx := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, windowIdx)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: redis pipeline: %w", err)
	}

	return incr.Val() <= l.limit, nil
}

// NewClient создает клиент Redis и проверяет соединение
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("ratelimit: redis addr is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ratelimit: redis ping failed: %w", err)
	}

	return rdb, nil
}
