// Package analyze runs the cache-checked viability analysis pipeline:
// cache lookup, reasoning call, schema validation, persistence, with a
// deterministic heuristic fallback on any reasoning or validation failure.
package analyze

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/launchradar/launchradar/internal/model"
	"github.com/launchradar/launchradar/internal/schema"
	"github.com/launchradar/launchradar/internal/store"
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	SaveAnalysis(ctx context.Context, rec *model.AnalysisRecord) error
	GetLatestCompleted(ctx context.Context, slug string) (*model.AnalysisRecord, error)
}

// ProductFetcher scrapes one product detail page.
type ProductFetcher interface {
	FetchProduct(ctx context.Context, pageURL string) (*model.ProductRecord, error)
}

// Analyzer is the top-level orchestrator. Safe for concurrent use;
// concurrent calls for the same slug are not deduplicated, the last
// completed write becomes canonical.
type Analyzer struct {
	store      Store
	reasoner   Reasoner
	fetcher    ProductFetcher
	ttl        time.Duration
	analyzedBy string
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithFetcher sets the detail-page scraper used when Analyze is given a
// bare URL.
func WithFetcher(f ProductFetcher) AnalyzerOption {
	return func(a *Analyzer) { a.fetcher = f }
}

// WithTTL overrides the cache freshness window.
func WithTTL(ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) { a.ttl = ttl }
}

// NewAnalyzer builds an orchestrator over the given store and reasoner.
func NewAnalyzer(st Store, r Reasoner, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		store:      st,
		reasoner:   r,
		ttl:        store.DefaultTTL,
		analyzedBy: "launchradar",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze is the single entry point for URL-driven analysis: derive the
// slug, serve a fresh cached record if one exists, otherwise scrape the
// product and run the full pipeline. The returned record is always
// schema-valid; a non-nil error alongside a non-nil record means the
// record could not be persisted.
func (a *Analyzer) Analyze(ctx context.Context, sourceURL string) (*model.AnalysisRecord, error) {
	if sourceURL == "" {
		return nil, eris.New("analyze: source url is required")
	}

	slug := DeriveSlug(sourceURL)
	if cached := a.freshCached(ctx, slug); cached != nil {
		zap.L().Info("cache hit", zap.String("slug", slug), zap.String("id", cached.ID))
		return cached, nil
	}

	if a.fetcher == nil {
		return nil, eris.New("analyze: no product fetcher configured")
	}

	product, err := a.fetcher.FetchProduct(ctx, sourceURL)
	if err != nil {
		zap.L().Warn("scrape failed, analyzing with minimal record",
			zap.String("url", sourceURL), zap.Error(err))
		product = &model.ProductRecord{
			Name:      slug,
			SourceURL: sourceURL,
			ScrapedAt: time.Now().UTC(),
		}
		return a.persistFallback(ctx, product, slug, sourceURL, eris.Wrap(err, "scrape failed"))
	}

	return a.analyzeScraped(ctx, product, slug, sourceURL)
}

// AnalyzeProduct runs the pipeline on an already scraped record, skipping
// the fetch. Used by the demo flow and scheduled discovery.
func (a *Analyzer) AnalyzeProduct(ctx context.Context, product *model.ProductRecord) (*model.AnalysisRecord, error) {
	if product == nil || product.Name == "" {
		return nil, eris.New("analyze: product with a name is required")
	}
	slug := DeriveSlug(product.SourceURL)
	if cached := a.freshCached(ctx, slug); cached != nil {
		zap.L().Info("cache hit", zap.String("slug", slug), zap.String("id", cached.ID))
		return cached, nil
	}
	return a.analyzeScraped(ctx, product, slug, product.SourceURL)
}

// GenerateStrategyReport produces the free-form markdown strategy report
// for a product. No caching; every call hits the model.
func (a *Analyzer) GenerateStrategyReport(ctx context.Context, product *model.ProductRecord) (string, error) {
	if product == nil || product.Name == "" {
		return "", eris.New("analyze: product with a name is required")
	}
	resp, err := a.reasoner.Reason(ctx, strategySystemPrompt, buildStrategyPrompt(product))
	if err != nil {
		return "", eris.Wrap(err, "analyze: strategy report")
	}
	return resp.Text, nil
}

func (a *Analyzer) freshCached(ctx context.Context, slug string) *model.AnalysisRecord {
	cached, err := a.store.GetLatestCompleted(ctx, slug)
	if err != nil {
		zap.L().Warn("cache lookup failed", zap.String("slug", slug), zap.Error(err))
		return nil
	}
	if cached == nil || !store.IsFresh(cached.CreatedAtTime(), a.ttl) {
		return nil
	}
	return cached
}

func (a *Analyzer) analyzeScraped(ctx context.Context, product *model.ProductRecord, slug, sourceURL string) (*model.AnalysisRecord, error) {
	start := time.Now()

	resp, err := a.reasoner.Reason(ctx, systemPrompt, buildUserPrompt(product))
	if err != nil {
		zap.L().Warn("reasoning call failed", zap.String("slug", slug), zap.Error(err))
		return a.persistFallback(ctx, product, slug, sourceURL, err)
	}

	payload, err := schema.ParsePayload(resp.Text)
	if err != nil {
		// The raw text goes to logs only, never into persisted fields.
		zap.L().Warn("model output failed validation",
			zap.String("slug", slug),
			zap.Int("output_bytes", len(resp.Text)),
			zap.Error(err))
		return a.persistFallback(ctx, product, slug, sourceURL, err)
	}

	rec := a.newRecord(product, slug, sourceURL)
	rec.AnalysisPayload = *payload
	rec.Status = model.StatusCompleted
	rec.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	rec.Metadata.TokenUsage = &resp.Usage
	rec.Metadata.Reasoning = resp.Reasoning

	if err := schema.ValidateRecord(rec); err != nil {
		zap.L().Warn("assembled record failed validation", zap.String("slug", slug), zap.Error(err))
		return a.persistFallback(ctx, product, slug, sourceURL, err)
	}

	return a.persist(ctx, rec)
}

// persistFallback builds the heuristic record for a failed analysis and
// persists it. Status is failed so it never shadows a later real analysis.
func (a *Analyzer) persistFallback(ctx context.Context, product *model.ProductRecord, slug, sourceURL string, cause error) (*model.AnalysisRecord, error) {
	rec := a.newRecord(product, slug, sourceURL)
	rec.AnalysisPayload = buildFallbackPayload(product)
	rec.Status = model.StatusFailed
	rec.ErrorMessage = cause.Error()
	rec.Metadata.ModelUsed = "fallback-heuristic"
	return a.persist(ctx, rec)
}

// persist writes the record. A store failure still returns the record so
// the caller gets a usable result, with the error reporting that caching
// did not happen.
func (a *Analyzer) persist(ctx context.Context, rec *model.AnalysisRecord) (*model.AnalysisRecord, error) {
	if err := a.store.SaveAnalysis(ctx, rec); err != nil {
		return rec, eris.Wrap(err, "analyze: persist analysis")
	}
	zap.L().Info("analysis persisted",
		zap.String("slug", rec.ProductSlug),
		zap.String("id", rec.ID),
		zap.String("status", string(rec.Status)),
		zap.Int("overall", rec.Scores.Overall))
	return rec, nil
}

func (a *Analyzer) newRecord(product *model.ProductRecord, slug, sourceURL string) *model.AnalysisRecord {
	now := time.Now().UTC().Format(time.RFC3339)
	return &model.AnalysisRecord{
		ID:          uuid.New().String(),
		ProductSlug: slug,
		SourceURL:   sourceURL,
		Source:      detectSource(sourceURL),
		Product:     *product,
		Metadata: model.AnalysisMetadata{
			SchemaVersion: schema.Version,
			ModelUsed:     a.reasoner.Model(),
			AnalyzedAt:    now,
			AnalyzedBy:    a.analyzedBy,
		},
		CreatedAt: now,
		UpdatedAt: now,
		Status:    model.StatusPending,
	}
}

// detectSource maps a listing URL to its origin. Unknown hosts default to
// betalist, the primary origin for URL-driven analysis.
func detectSource(sourceURL string) model.Source {
	switch {
	case strings.Contains(sourceURL, "news.ycombinator.com"):
		return model.SourceHackerNews
	case strings.Contains(sourceURL, "indiehackers.com"):
		return model.SourceIndieHackers
	case strings.Contains(sourceURL, "alternativeto.net"):
		return model.SourceAlternativeTo
	default:
		return model.SourceBetalist
	}
}
