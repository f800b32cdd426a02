// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"travellocal/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (public tourism responses).
	CacheClient *redis.Client
	// DeviceStoreClient backs the per-user device store.
	DeviceStoreClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitDeviceStore initializes the Redis client holding device-local state.
func InitDeviceStore() {
	DeviceStoreClient = newRedisClient(config.AppConfig.RedisDeviceDB)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := DeviceStoreClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Device Store): %v", err)
	}
}

// GetDeviceStoreClient returns the Redis client for device-local state.
func GetDeviceStoreClient() *redis.Client {
	if DeviceStoreClient == nil {
		InitDeviceStore()
	}
	return DeviceStoreClient
}
