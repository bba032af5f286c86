package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"research-paper-ai/internal/domain/model"
	"research-paper-ai/internal/domain/ports/repository"
	"research-paper-ai/internal/infra/metrics"
	red "research-paper-ai/internal/infra/redis"
)

var _ repository.PaperRepository = (*paperRepoCacheDecorator)(nil)

// paperRepoCacheDecorator caches paper reads in Redis. Writes invalidate so
// the engine's read-after-write guarantee holds across components.
type paperRepoCacheDecorator struct {
	inner repository.PaperRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPaperRepoCacheDecorator(inner repository.PaperRepository, cache red.RedisClient, ttl time.Duration) repository.PaperRepository {
	return &paperRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func paperKey(id string) string { return fmt.Sprintf("paper:%s", id) }

func (d *paperRepoCacheDecorator) FindByID(ctx context.Context, id string) (*model.Paper, error) {
	val, err := d.cache.Get(ctx, paperKey(id))
	if err == nil {
		metrics.IncCacheRequest("paper", "hit")
		var p model.Paper
		if json.Unmarshal([]byte(val), &p) == nil {
			return &p, nil
		}
	}

	metrics.IncCacheRequest("paper", "miss")
	p, err := d.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Only terminal papers are cached; in-flight papers change every stage.
	if p.Terminal() {
		if bytes, err := json.Marshal(p); err == nil {
			_ = d.cache.Set(ctx, paperKey(id), bytes, d.ttl)
		}
	}
	return p, nil
}

func (d *paperRepoCacheDecorator) Save(ctx context.Context, p *model.Paper) error {
	if p.ID != "" {
		_ = d.cache.Del(ctx, paperKey(p.ID))
	}
	return d.inner.Save(ctx, p)
}

func (d *paperRepoCacheDecorator) Delete(ctx context.Context, id string) error {
	_ = d.cache.Del(ctx, paperKey(id))
	return d.inner.Delete(ctx, id)
}

func (d *paperRepoCacheDecorator) ListAll(ctx context.Context) ([]*model.Paper, error) {
	return d.inner.ListAll(ctx)
}
