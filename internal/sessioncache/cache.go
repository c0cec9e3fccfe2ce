// Package sessioncache keeps the tail of each session's conversation log
// in Redis so history reads can skip the database.
package sessioncache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"faq_matcher/internal/config"
	"faq_matcher/internal/store"
)

// ErrCacheMiss indicates the session has no usable cached history.
var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "faq:session:"

// Cache is the session history cache used by the chat service.
type Cache interface {
	// Append extends an already cached session. Sessions that are not
	// cached are left alone until Fill is called.
	Append(ctx context.Context, sessionID string, msgs ...store.Message) error
	// Fill replaces a session's cached history.
	Fill(ctx context.Context, sessionID string, msgs []store.Message) error
	// Recent returns the cached history, oldest first. It returns
	// ErrCacheMiss when the cached list may be incomplete.
	Recent(ctx context.Context, sessionID string) ([]store.Message, error)
	Ping(ctx context.Context) error
	Close() error
}

// RedisCache stores one capped list per session.
type RedisCache struct {
	client *redis.Client
	size   int
	ttl    time.Duration
}

// New returns a Redis backed cache, or a no-op cache when no address is
// configured.
func New(cfg config.RedisConfig) Cache {
	if !cfg.Enabled() {
		return Noop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return NewRedisCache(client, cfg.HistorySize, cfg.TTLDuration())
}

func NewRedisCache(client *redis.Client, size int, ttl time.Duration) *RedisCache {
	if size <= 0 {
		size = 50
	}
	return &RedisCache{client: client, size: size, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (c *RedisCache) Append(ctx context.Context, sessionID string, msgs ...store.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values, err := encode(msgs)
	if err != nil {
		return err
	}

	key := sessionKey(sessionID)
	pipe := c.client.TxPipeline()
	pipe.RPushX(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-c.size), -1)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (c *RedisCache) Fill(ctx context.Context, sessionID string, msgs []store.Message) error {
	key := sessionKey(sessionID)
	if len(msgs) > c.size {
		msgs = msgs[len(msgs)-c.size:]
	}
	values, err := encode(msgs)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(values) > 0 {
		pipe.RPush(ctx, key, values...)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis fill: %w", err)
	}
	return nil
}

// Recent reports a miss for empty lists and for lists at capacity, since
// older messages may have been trimmed away.
func (c *RedisCache) Recent(ctx context.Context, sessionID string) ([]store.Message, error) {
	raw, err := c.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	if len(raw) == 0 || len(raw) >= c.size {
		return nil, ErrCacheMiss
	}

	msgs := make([]store.Message, 0, len(raw))
	for _, item := range raw {
		var m store.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("failed to decode cached message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func encode(msgs []store.Message) ([]interface{}, error) {
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to encode message: %w", err)
		}
		values = append(values, raw)
	}
	return values, nil
}

// Noop is used when Redis is not configured. Every read is a miss.
type Noop struct{}

func (Noop) Append(context.Context, string, ...store.Message) error { return nil }
func (Noop) Fill(context.Context, string, []store.Message) error { return nil }
func (Noop) Ping(context.Context) error { return nil }
func (Noop) Close() error { return nil }

func (Noop) Recent(context.Context, string) ([]store.Message, error) {
	return nil, ErrCacheMiss
}
