package sources

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/launchradar/launchradar/internal/config"
	"github.com/launchradar/launchradar/internal/model"
	"github.com/launchradar/launchradar/internal/resilience"
)

// Aggregator fans discovery out over a set of adapters. Each adapter gets
// its own circuit breaker so an origin that keeps failing is skipped on
// later passes instead of being hammered. Ordering is freshly randomized
// on every pass.
type Aggregator struct {
	adapters []Adapter
	breakers map[model.Source]*resilience.CircuitBreaker
	limit    int
}

// NewAggregator builds an Aggregator over the given adapters.
func NewAggregator(limit int, adapters ...Adapter) *Aggregator {
	breakers := make(map[model.Source]*resilience.CircuitBreaker, len(adapters))
	for _, a := range adapters {
		cfg := resilience.DefaultCircuitBreakerConfig()
		src := a.Source()
		cfg.OnStateChange = func(from, to resilience.CircuitState) {
			zap.L().Info("source circuit state changed",
				zap.String("source", string(src)),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		}
		breakers[src] = resilience.NewCircuitBreaker(cfg)
	}
	return &Aggregator{adapters: adapters, breakers: breakers, limit: limit}
}

// FromConfig builds an Aggregator with the adapters the config enables.
func FromConfig(cfg config.ScoutConfig, opts ...Option) *Aggregator {
	if cfg.FetchTimeoutSecs > 0 {
		opts = append(opts, WithTimeout(time.Duration(cfg.FetchTimeoutSecs)*time.Second))
	}

	var adapters []Adapter
	if cfg.Betalist {
		adapters = append(adapters, NewBetalist(opts...))
	}
	if cfg.HackerNews {
		adapters = append(adapters, NewHackerNews(opts...))
	}
	if cfg.IndieHackers {
		adapters = append(adapters, NewIndieHackers(opts...))
	}
	if cfg.AlternativeTo {
		adapters = append(adapters, NewAlternativeTo(opts...))
	}
	return NewAggregator(cfg.LimitPerSource, adapters...)
}

// ScrapeMultiSource runs every adapter concurrently, keeps the successes,
// drops the failures, and returns the merged results in shuffled order.
// A failing origin never fails the pass.
func (a *Aggregator) ScrapeMultiSource(ctx context.Context) []model.UnifiedProduct {
	var (
		mu  sync.Mutex
		all []model.UnifiedProduct
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, adapter := range a.adapters {
		g.Go(func() error {
			cb := a.breakers[adapter.Source()]
			items, err := resilience.ExecuteVal(ctx, cb, func(ctx context.Context) ([]model.UnifiedProduct, error) {
				return adapter.Discover(ctx, a.limit)
			})
			if errors.Is(err, resilience.ErrCircuitOpen) {
				zap.L().Warn("source skipped, circuit open",
					zap.String("source", string(adapter.Source())))
				return nil
			}
			if err != nil {
				zap.L().Warn("source discovery failed",
					zap.String("source", string(adapter.Source())),
					zap.Error(err))
				return nil
			}
			zap.L().Debug("source discovered products",
				zap.String("source", string(adapter.Source())),
				zap.Int("count", len(items)))
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	all = dedupeBySourceURL(all)
	Shuffle(all)
	return all
}

// dedupeBySourceURL keeps the first occurrence of each source URL. Adapters
// already dedupe within an origin; this guards against overlap across them.
func dedupeBySourceURL(products []model.UnifiedProduct) []model.UnifiedProduct {
	seen := make(map[string]struct{}, len(products))
	out := products[:0]
	for _, p := range products {
		if _, ok := seen[p.SourceURL]; ok {
			continue
		}
		seen[p.SourceURL] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Shuffle applies an unbiased Fisher-Yates permutation in place so gallery
// consumers never see origin-ordered clustering.
func Shuffle(products []model.UnifiedProduct) {
	for i := len(products) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		products[i], products[j] = products[j], products[i]
	}
}
