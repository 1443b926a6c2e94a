package cache

import (
	"context"
	"log"
	"time"
)

// Connect builds the Redis client and cache service and verifies the
// connection. When Redis is unreachable the client is closed and nil is
// returned; a nil *CacheService means caching is disabled.
func Connect(cfg *RedisConfig, ttl time.Duration) *CacheService {
	service := NewCacheService(NewRedisClient(cfg), ttl)
	if err := service.HealthCheck(context.Background()); err != nil {
		log.Printf("Redis unavailable, user cache disabled: %v", err)
		if cerr := service.Close(); cerr != nil {
			log.Printf("failed to close Redis client: %v", cerr)
		}
		return nil
	}
	return service
}
