// ABOUTME: Redis-backed cache in front of an image analyzer
// ABOUTME: Identical image bytes reuse the earlier hint instead of calling out again
package enrichment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/models"
)

const cacheKeyPrefix = "pagen:enrichment:hint:"

// CachedAnalyzer wraps an Analyzer with a Redis cache keyed by image content.
// Cache failures are logged and bypassed.
type CachedAnalyzer struct {
	next   Analyzer
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedAnalyzer(next Analyzer, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAnalyzer{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: logger.Named("enrichment.cache"),
	}
}

func cacheKey(img *Image) string {
	sum := sha256.Sum256(img.Data)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedAnalyzer) Analyze(ctx context.Context, img *Image) (*models.EnrichmentHint, error) {
	if err := ValidateImage(img); err != nil {
		return nil, err
	}

	key := cacheKey(img)
	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var hint models.EnrichmentHint
		if jsonErr := json.Unmarshal(raw, &hint); jsonErr == nil && validateHint(&hint) == nil {
			c.logger.Debug("enrichment cache hit", zap.String("key", key))
			return &hint, nil
		}
		c.logger.Warn("discarding unreadable cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("enrichment cache read failed", zap.Error(err))
	}

	hint, err := c.next.Analyze(ctx, img)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(hint); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("enrichment cache write failed", zap.Error(err))
		}
	}

	return hint, nil
}
