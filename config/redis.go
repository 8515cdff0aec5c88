package config

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisMu     sync.RWMutex
)

// ConnectRedis initializes the shared Redis client. An empty REDIS_ADDR or a
// test environment leaves the client nil; callers treat a nil client as
// "Redis unavailable" and degrade gracefully.
func ConnectRedis(cfg *Config) (*redis.Client, error) {
	if cfg == nil || cfg.IsTest() || cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	redisMu.Lock()
	redisClient = rdb
	redisMu.Unlock()
	log.Printf("Connected to Redis at %s", cfg.RedisAddr)
	return rdb, nil
}

// GetRedisClient returns the initialized Redis client (may be nil if ConnectRedis failed or not called).
func GetRedisClient() *redis.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return redisClient
}

// SetRedisClientForTesting allows tests to inject a mock Redis client.
// This should only be used in tests.
func SetRedisClientForTesting(client *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = client
}
