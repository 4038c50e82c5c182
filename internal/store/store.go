// Package store persists products and their analysis records. Two backends
// are supported, SQLite for single-binary local use and Postgres for shared
// deployments. Records are append-only per product slug; reads serve the
// newest completed record for a slug.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/launchradar/launchradar/internal/config"
	"github.com/launchradar/launchradar/internal/model"
)

// DefaultTTL is how long a completed analysis is considered fresh when the
// caller does not configure a cache TTL.
const DefaultTTL = 7 * 24 * time.Hour

// Filter narrows ListAnalyses results. Zero-value fields are ignored;
// MinScore and MaxScore are pointers so a bound of 0 is expressible.
type Filter struct {
	Source   string
	Verdict  string
	MinScore *int
	MaxScore *int
	Limit    int
	Offset   int
}

// DefaultListLimit caps ListAnalyses when the filter does not set one.
const DefaultListLimit = 20

// Store is the persistence interface for analysis records.
type Store interface {
	// Migrate creates or updates the schema. Safe to call repeatedly.
	Migrate(ctx context.Context) error

	// SaveAnalysis upserts the product identity row and appends the
	// analysis record.
	SaveAnalysis(ctx context.Context, rec *model.AnalysisRecord) error

	// GetLatestCompleted returns the newest completed record for a slug,
	// or (nil, nil) when none exists. Failed and pending records are
	// never served from here.
	GetLatestCompleted(ctx context.Context, slug string) (*model.AnalysisRecord, error)

	// GetAnalysisByID returns a record by its ID, or (nil, nil) when it
	// does not exist.
	GetAnalysisByID(ctx context.Context, id string) (*model.AnalysisRecord, error)

	// ListAnalyses returns records matching the filter, newest first.
	ListAnalyses(ctx context.Context, f Filter) ([]*model.AnalysisRecord, error)

	// InvalidateSlug deletes all analysis records for a slug. The product
	// identity row is kept.
	InvalidateSlug(ctx context.Context, slug string) error

	Close() error
}

// IsFresh reports whether an analysis created at the given time is still
// within the TTL. A zero time or non-positive TTL is never fresh.
func IsFresh(createdAt time.Time, ttl time.Duration) bool {
	if createdAt.IsZero() || ttl <= 0 {
		return false
	}
	return time.Since(createdAt) < ttl
}

// New builds a Store from configuration, choosing the backend by driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
