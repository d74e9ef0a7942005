package genai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hearthealth/hearthealth/internal/cache"
	"github.com/hearthealth/hearthealth/internal/metrics"
)

// Store is a shared cache of generated text.
type Store interface {
	GetGeneration(ctx context.Context, key string) (string, error)
	SetGeneration(ctx context.Context, key, text string, ttl time.Duration) error
}

// CachedGenerator serves repeated prompts from an in-process LRU, then from
// the shared Store, and only then calls the upstream Generator.
// Cache failures never fail a request.
type CachedGenerator struct {
	next    Generator
	memo    *expirable.LRU[string, string]
	store   Store
	ttl     time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewCachedGenerator wraps next. store may be nil. A ttl of zero disables caching.
func NewCachedGenerator(next Generator, store Store, memoSize int, ttl time.Duration, recorder metrics.Recorder, logger *slog.Logger) *CachedGenerator {
	if memoSize <= 0 {
		memoSize = 1
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CachedGenerator{
		next:    next,
		memo:    expirable.NewLRU[string, string](memoSize, nil, ttl),
		store:   store,
		ttl:     ttl,
		metrics: recorder,
		logger:  logger.With("component", "genai"),
	}
}

// Generate implements Generator.
func (g *CachedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if g.ttl <= 0 {
		return g.call(ctx, req)
	}

	key := cache.GenerationKey(req.Kind, req.System, req.Prompt)

	if text, ok := g.memo.Get(key); ok {
		g.metrics.IncGenerationCacheHit()
		return text, nil
	}

	if g.store != nil {
		text, err := g.store.GetGeneration(ctx, key)
		switch {
		case err == nil:
			g.metrics.IncGenerationCacheHit()
			g.memo.Add(key, text)
			return text, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			g.logger.Warn("generation cache read failed", "error", err)
		}
	}
	g.metrics.IncGenerationCacheMiss()

	text, err := g.call(ctx, req)
	if err != nil {
		return "", err
	}

	g.memo.Add(key, text)
	if g.store != nil {
		if err := g.store.SetGeneration(ctx, key, text, g.ttl); err != nil {
			g.logger.Warn("generation cache write failed", "error", err)
		}
	}

	return text, nil
}

func (g *CachedGenerator) call(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := g.next.Generate(ctx, req)
	if err != nil {
		g.metrics.IncGeneration(req.Kind, metrics.OutcomeFailure)
		g.logger.Error("generation failed",
			"kind", req.Kind,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", err
	}

	g.metrics.IncGeneration(req.Kind, metrics.OutcomeSuccess)
	g.logger.Debug("generation completed",
		"kind", req.Kind,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(text),
	)
	return text, nil
}
