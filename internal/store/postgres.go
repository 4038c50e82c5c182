package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/launchradar/launchradar/internal/model"
)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS products (
	id           TEXT PRIMARY KEY,
	product_slug TEXT NOT NULL UNIQUE,
	source       TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	name         TEXT NOT NULL,
	tagline      TEXT,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS product_analyses (
	id                 TEXT PRIMARY KEY,
	product_id         TEXT NOT NULL REFERENCES products(id),
	product_slug       TEXT NOT NULL,
	analysis_data      JSONB NOT NULL,
	score_overall      INTEGER,
	score_feasibility  INTEGER,
	score_desirability INTEGER,
	score_viability    INTEGER,
	verdict            TEXT,
	schema_version     TEXT,
	model_used         TEXT,
	status             TEXT NOT NULL,
	error_message      TEXT,
	processing_time_ms BIGINT,
	analyzed_at        TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_slug ON product_analyses(product_slug);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON product_analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON product_analyses(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_verdict ON product_analyses(verdict);
`

const (
	upsertProductSQL = `
		INSERT INTO products (id, product_slug, source, source_url, name, tagline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_slug) DO UPDATE SET
			source_url = EXCLUDED.source_url,
			name       = EXCLUDED.name,
			tagline    = EXCLUDED.tagline,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	insertAnalysisSQL = `
		INSERT INTO product_analyses (
			id, product_id, product_slug, analysis_data,
			score_overall, score_feasibility, score_desirability, score_viability,
			verdict, schema_version, model_used, status, error_message,
			processing_time_ms, analyzed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	latestCompletedSQL = `
		SELECT analysis_data FROM product_analyses
		WHERE product_slug = $1 AND status = 'completed'
		ORDER BY created_at DESC LIMIT 1`

	analysisByIDSQL = `
		SELECT analysis_data FROM product_analyses WHERE id = $1`

	invalidateSlugSQL = `
		DELETE FROM product_analyses WHERE product_slug = $1`
)

// preparedStatements are prepared on every new connection so the hot
// read paths skip the parse step.
var preparedStatements = map[string]string{
	"latest_completed": latestCompletedSQL,
	"analysis_by_id":   analysisByIDSQL,
	"upsert_product":   upsertProductSQL,
	"insert_analysis":  insertAnalysisSQL,
}

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore is the shared-deployment backend.
type PostgresStore struct {
	pool Pool
}

// NewPostgresFromPool wraps an existing pool, used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewPostgres connects to the database and verifies the connection.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, eris.New("store: database url is required for the postgres driver")
	}
	pcfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse database url")
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}
	pcfg.MinConns = 2
	pcfg.MaxConnLifetime = 30 * time.Minute
	pcfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, stmt := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, stmt); err != nil {
				return eris.Wrapf(err, "store: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping postgres")
	}

	s := &PostgresStore{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "store: migrate postgres")
	}
	return nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, rec *model.AnalysisRecord) error {
	if rec == nil || rec.ID == "" || rec.ProductSlug == "" {
		return eris.New("store: record needs an id and a product slug")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "store: marshal analysis record")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin tx")
	}
	defer tx.Rollback(ctx)

	now := rec.CreatedAtTime()
	var productID string
	err = tx.QueryRow(ctx, upsertProductSQL,
		rec.ID, rec.ProductSlug, string(rec.Source), rec.SourceURL,
		rec.Product.Name, rec.Product.Tagline, now, now,
	).Scan(&productID)
	if err != nil {
		return eris.Wrap(err, "store: upsert product")
	}

	_, err = tx.Exec(ctx, insertAnalysisSQL,
		rec.ID, productID, rec.ProductSlug, string(data),
		rec.Scores.Overall, rec.Scores.Feasibility, rec.Scores.Desirability, rec.Scores.Viability,
		string(rec.Recommendation.Verdict), rec.Metadata.SchemaVersion, rec.Metadata.ModelUsed,
		string(rec.Status), rec.ErrorMessage, rec.Metadata.ProcessingTimeMs,
		nullableTime(rec.Metadata.AnalyzedAt), now,
	)
	if err != nil {
		return eris.Wrap(err, "store: insert analysis")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "store: commit")
	}
	return nil
}

func (s *PostgresStore) GetLatestCompleted(ctx context.Context, slug string) (*model.AnalysisRecord, error) {
	return scanRecord(s.pool.QueryRow(ctx, latestCompletedSQL, slug))
}

func (s *PostgresStore) GetAnalysisByID(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	return scanRecord(s.pool.QueryRow(ctx, analysisByIDSQL, id))
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, f Filter) ([]*model.AnalysisRecord, error) {
	var (
		conds  []string
		args   []any
		argIdx = 1
	)
	if f.Source != "" {
		conds = append(conds, fmt.Sprintf("p.source = $%d", argIdx))
		args = append(args, f.Source)
		argIdx++
	}
	if f.Verdict != "" {
		conds = append(conds, fmt.Sprintf("a.verdict = $%d", argIdx))
		args = append(args, f.Verdict)
		argIdx++
	}
	if f.MinScore != nil {
		conds = append(conds, fmt.Sprintf("a.score_overall >= $%d", argIdx))
		args = append(args, *f.MinScore)
		argIdx++
	}
	if f.MaxScore != nil {
		conds = append(conds, fmt.Sprintf("a.score_overall <= $%d", argIdx))
		args = append(args, *f.MaxScore)
		argIdx++
	}

	query := `SELECT a.analysis_data FROM product_analyses a
		JOIN products p ON p.product_slug = a.product_slug`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY a.created_at DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)
	argIdx++
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, f.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list analyses")
	}
	defer rows.Close()

	var recs []*model.AnalysisRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "store: scan analysis row")
		}
		var rec model.AnalysisRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, eris.Wrap(err, "store: decode analysis record")
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate analyses")
	}
	return recs, nil
}

func (s *PostgresStore) InvalidateSlug(ctx context.Context, slug string) error {
	if _, err := s.pool.Exec(ctx, invalidateSlugSQL, slug); err != nil {
		return eris.Wrap(err, "store: invalidate slug")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// nullableTime maps an empty or unparsable RFC3339 string to SQL NULL.
func nullableTime(s string) any {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return t
}
