package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/launchradar/launchradar/internal/analyze"
	"github.com/launchradar/launchradar/internal/sources"
	"github.com/launchradar/launchradar/internal/store"
	"github.com/launchradar/launchradar/pkg/anthropic"
	"github.com/launchradar/launchradar/pkg/deepseek"
)

// appEnv bundles the wired components commands run against.
type appEnv struct {
	store      store.Store
	analyzer   *analyze.Analyzer
	fetcher    analyze.ProductFetcher
	aggregator *sources.Aggregator
}

func (e *appEnv) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

// initEnv builds the store, reasoner, scraper and orchestrator from config.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if cfg.Redis.Enabled {
		cached, err := store.NewCachedStore(st, cfg.Redis)
		if err != nil {
			st.Close()
			return nil, err
		}
		st = cached
	}

	reasoner, err := newReasoner()
	if err != nil {
		st.Close()
		return nil, err
	}

	ttl := store.DefaultTTL
	if cfg.Analysis.CacheTTLDays > 0 {
		ttl = time.Duration(cfg.Analysis.CacheTTLDays) * 24 * time.Hour
	}

	fetcher := sources.NewBetalist()
	analyzer := analyze.NewAnalyzer(st, reasoner,
		analyze.WithFetcher(fetcher),
		analyze.WithTTL(ttl),
	)

	return &appEnv{
		store:      st,
		analyzer:   analyzer,
		fetcher:    fetcher,
		aggregator: sources.FromConfig(cfg.Scout),
	}, nil
}

func newReasoner() (analyze.Reasoner, error) {
	switch cfg.Analysis.Provider {
	case "deepseek", "":
		if cfg.DeepSeek.Key == "" {
			return nil, eris.New("deepseek api key is not configured")
		}
		opts := []deepseek.Option{
			deepseek.WithBaseURL(cfg.DeepSeek.BaseURL),
			deepseek.WithModel(cfg.DeepSeek.Model),
			deepseek.WithRequestsPerMinute(cfg.DeepSeek.RequestsPerMinute),
		}
		if cfg.DeepSeek.TimeoutSecs > 0 {
			opts = append(opts, deepseek.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.DeepSeek.TimeoutSecs) * time.Second,
			}))
		}
		client := deepseek.NewClient(cfg.DeepSeek.Key, opts...)
		return analyze.NewDeepSeekReasoner(client, cfg.DeepSeek.Model), nil
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("anthropic api key is not configured")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key)
		return analyze.NewAnthropicReasoner(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens), nil
	default:
		return nil, eris.Errorf("unknown analysis provider %q", cfg.Analysis.Provider)
	}
}
