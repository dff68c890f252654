// SPDX-License-Identifier: MIT
package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danibene/respiring/internal/log"
)

const (
	redisKeyPrefix   = "respiring:"
	redisOpTimeout   = 2 * time.Second
	redisDialTimeout = 5 * time.Second
)

// redisCache shares build results between instances pointed at the same
// catalog. Values are catalog video IDs stored as plain strings.
type redisCache struct {
	client *redis.Client

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedis connects to addr and verifies the connection before returning.
func NewRedis(addr, password string, db int) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisOpTimeout,
		WriteTimeout: redisOpTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.WithComponent("cache").Info().
		Str(log.FieldAddr, addr).
		Int("db", db).
		Msg("redis cache connected")
	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	videoID, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithComponent("cache").Warn().Err(err).Msg("redis get failed")
		}
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return videoID, true
}

func (c *redisCache) Set(key, videoID string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, videoID, ttl).Err(); err != nil {
		log.WithComponent("cache").Warn().Err(err).Msg("redis set failed")
	}
}

func (c *redisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		log.WithComponent("cache").Warn().Err(err).Msg("redis delete failed")
	}
}

// Clear flushes the configured database. Run the cache on its own DB
// number when the redis instance is shared.
func (c *redisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.client.FlushDB(ctx).Err(); err != nil {
		log.WithComponent("cache").Warn().Err(err).Msg("redis flush failed")
	}
}

func (c *redisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	entries, err := c.client.DBSize(ctx).Result()
	if err != nil {
		entries = -1
	}
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: entries,
	}
}

func (c *redisCache) Close() error { return c.client.Close() }

// HealthCheck reports whether redis answers PING. Used by the readiness
// endpoint; not part of the Cache interface because the other backends
// have no remote dependency to probe.
func (c *redisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
