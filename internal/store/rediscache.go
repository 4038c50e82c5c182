package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/launchradar/launchradar/internal/config"
	"github.com/launchradar/launchradar/internal/model"
)

// CachedStore is a look-aside Redis cache in front of another Store. Only
// the per-slug hot path is cached; lists and by-ID lookups go straight
// through. Redis failures degrade to the inner store, never to an error.
type CachedStore struct {
	inner Store
	rdb   redis.UniversalClient
	ttl   time.Duration
}

// NewCachedStore wraps inner with a Redis cache.
func NewCachedStore(inner Store, cfg config.RedisConfig) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse redis url")
	}
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedStore{inner: inner, rdb: redis.NewClient(opts), ttl: ttl}, nil
}

func cacheKey(slug string) string {
	return "launchradar:analysis:" + slug
}

func (c *CachedStore) Migrate(ctx context.Context) error {
	return c.inner.Migrate(ctx)
}

func (c *CachedStore) SaveAnalysis(ctx context.Context, rec *model.AnalysisRecord) error {
	if err := c.inner.SaveAnalysis(ctx, rec); err != nil {
		return err
	}
	if rec != nil && rec.ProductSlug != "" {
		if err := c.rdb.Del(ctx, cacheKey(rec.ProductSlug)).Err(); err != nil {
			zap.L().Warn("redis cache eviction failed",
				zap.String("slug", rec.ProductSlug), zap.Error(err))
		}
	}
	return nil
}

func (c *CachedStore) GetLatestCompleted(ctx context.Context, slug string) (*model.AnalysisRecord, error) {
	key := cacheKey(slug)
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var rec model.AnalysisRecord
		if err := json.Unmarshal(data, &rec); err == nil {
			return &rec, nil
		}
		c.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		zap.L().Warn("redis cache read failed", zap.String("slug", slug), zap.Error(err))
	}

	rec, err := c.inner.GetLatestCompleted(ctx, slug)
	if err != nil || rec == nil {
		return rec, err
	}
	if data, err := json.Marshal(rec); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			zap.L().Warn("redis cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	return rec, nil
}

func (c *CachedStore) GetAnalysisByID(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	return c.inner.GetAnalysisByID(ctx, id)
}

func (c *CachedStore) ListAnalyses(ctx context.Context, f Filter) ([]*model.AnalysisRecord, error) {
	return c.inner.ListAnalyses(ctx, f)
}

func (c *CachedStore) InvalidateSlug(ctx context.Context, slug string) error {
	if err := c.inner.InvalidateSlug(ctx, slug); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, cacheKey(slug)).Err(); err != nil {
		zap.L().Warn("redis cache eviction failed", zap.String("slug", slug), zap.Error(err))
	}
	return nil
}

func (c *CachedStore) Close() error {
	if err := c.rdb.Close(); err != nil {
		zap.L().Warn("redis close failed", zap.Error(err))
	}
	return c.inner.Close()
}
