package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - profile:{user_id} - 5m TTL, display name / avatar cache

// CacheConfig contains configuration for caching
type CacheConfig struct {
	ProfileTTL time.Duration // TTL for profile cache (default 5m)
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ProfileTTL: 5 * time.Minute,
	}
}

// CacheStore handles caching in Redis
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

// NewCacheStore creates a new cache store
func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	return &CacheStore{
		client: client,
		config: config,
	}
}

// ProfileCache is the cached slice of a user profile needed by the
// notification path.
type ProfileCache struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}

// GetProfile retrieves a cached profile; returns nil on a miss.
func (c *CacheStore) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileCache, error) {
	key := profileKey(userID)
	data, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var profile ProfileCache
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetProfile stores a profile with the configured TTL.
func (c *CacheStore) SetProfile(ctx context.Context, profile *ProfileCache) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, profileKey(profile.UserID), data, c.config.ProfileTTL).Err()
}

// InvalidateProfile drops a cached profile.
func (c *CacheStore) InvalidateProfile(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, profileKey(userID)).Err()
}

func profileKey(userID uuid.UUID) string {
	return fmt.Sprintf("profile:%s", userID.String())
}
