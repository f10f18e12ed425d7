package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisService backs the public/admin story-listing cache. Mutations in
// the story publisher signal invalidation by deleting the listing keys.
type RedisService struct {
	appContext.DefaultService
	redis *redis.Client
}

const REDIS_SVC = "redis_svc"

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	svc.initRedisClient()
	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	if svc.redis != nil {
		ctx := context.Background()
		_, err := svc.redis.Ping(ctx).Result()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}
	return nil
}

func (svc *RedisService) initRedisClient() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")

	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	svc.redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
}

func (svc *RedisService) GetClient() *redis.Client {
	return svc.redis
}

func (svc *RedisService) Get(ctx context.Context, key string) ([]byte, error) {
	if svc.redis == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	return svc.redis.Get(ctx, key).Bytes()
}

func (svc *RedisService) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if svc.redis == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return svc.redis.Set(ctx, key, value, expiration).Err()
}

// Invalidate deletes the given cache keys. Failures are logged, not
// propagated: a stale listing is preferable to a failed mutation.
func (svc *RedisService) Invalidate(ctx context.Context, keys ...string) {
	if svc.redis == nil || len(keys) == 0 {
		return
	}
	if err := svc.redis.Del(ctx, keys...).Err(); err != nil {
		log.WithFields(log.Fields{
			"keys":  keys,
			"error": err.Error(),
		}).Warn("Cache invalidation failed")
	}
}
