package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ceylontrails/tourism-backend/internal/config"
	"github.com/ceylontrails/tourism-backend/internal/models"
)

// ItineraryCache caches public share-code lookups in Redis. Only public
// itineraries are ever written here, and every mutating itinerary
// operation invalidates the code, so a private itinerary cannot be
// served from cache past the TTL.
type ItineraryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a Redis client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// NewItineraryCache creates a new ItineraryCache
func NewItineraryCache(client *redis.Client, ttl time.Duration) *ItineraryCache {
	return &ItineraryCache{
		client: client,
		ttl:    ttl,
	}
}

func shareCodeKey(code string) string {
	return fmt.Sprintf("itinerary_share:%s", code)
}

// Get returns the cached itinerary for a share code, or nil on a miss.
func (c *ItineraryCache) Get(ctx context.Context, code string) (*models.ItineraryWithDestinations, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	val, err := c.client.Get(ctx, shareCodeKey(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary from redis: %w", err)
	}

	var itinerary models.ItineraryWithDestinations
	if err := json.Unmarshal([]byte(val), &itinerary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached itinerary: %w", err)
	}

	return &itinerary, nil
}

// Set stores the itinerary under its share code with the configured TTL.
func (c *ItineraryCache) Set(ctx context.Context, code string, itinerary *models.ItineraryWithDestinations) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	data, err := json.Marshal(itinerary)
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	if err := c.client.Set(ctx, shareCodeKey(code), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set itinerary in redis: %w", err)
	}

	return nil
}

// Invalidate drops the cached entry for a share code.
func (c *ItineraryCache) Invalidate(ctx context.Context, code string) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := c.client.Del(ctx, shareCodeKey(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete itinerary from redis: %w", err)
	}

	return nil
}

// Ping verifies the Redis connection
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
