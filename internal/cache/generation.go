package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const generationKeyPrefix = "genai:"

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// GenerationKey derives the cache key for a generated reply from the prompt
// kind, the system instruction and the user prompt.
func GenerationKey(kind, system, prompt string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return generationKeyPrefix + kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// GetGeneration returns cached generated text.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetGeneration(ctx context.Context, key string) (string, error) {
	text, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return text, nil
}

// SetGeneration stores generated text for ttl.
func (c *Cache) SetGeneration(ctx context.Context, key, text string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, text, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
