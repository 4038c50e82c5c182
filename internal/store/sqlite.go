package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/launchradar/launchradar/internal/model"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS products (
	id           TEXT PRIMARY KEY,
	product_slug TEXT NOT NULL UNIQUE,
	source       TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	name         TEXT NOT NULL,
	tagline      TEXT,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS product_analyses (
	id                 TEXT PRIMARY KEY,
	product_id         TEXT NOT NULL REFERENCES products(id),
	product_slug       TEXT NOT NULL,
	analysis_data      TEXT NOT NULL,
	score_overall      INTEGER,
	score_feasibility  INTEGER,
	score_desirability INTEGER,
	score_viability    INTEGER,
	verdict            TEXT,
	schema_version     TEXT,
	model_used         TEXT,
	status             TEXT NOT NULL,
	error_message      TEXT,
	processing_time_ms INTEGER,
	analyzed_at        TEXT,
	created_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_slug ON product_analyses(product_slug);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON product_analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON product_analyses(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_verdict ON product_analyses(verdict);
`

// SQLiteStore is the embedded single-file backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database file and applies pragmas for
// concurrent readers alongside a single writer.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = "launchradar.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: %s", p)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "store: migrate sqlite")
	}
	return nil
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, rec *model.AnalysisRecord) error {
	if rec == nil || rec.ID == "" || rec.ProductSlug == "" {
		return eris.New("store: record needs an id and a product slug")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "store: marshal analysis record")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin tx")
	}
	defer tx.Rollback()

	var productID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (id, product_slug, source, source_url, name, tagline, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (product_slug) DO UPDATE SET
			source_url = excluded.source_url,
			name       = excluded.name,
			tagline    = excluded.tagline,
			updated_at = excluded.updated_at
		RETURNING id`,
		rec.ID, rec.ProductSlug, string(rec.Source), rec.SourceURL,
		rec.Product.Name, rec.Product.Tagline, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&productID)
	if err != nil {
		return eris.Wrap(err, "store: upsert product")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO product_analyses (
			id, product_id, product_slug, analysis_data,
			score_overall, score_feasibility, score_desirability, score_viability,
			verdict, schema_version, model_used, status, error_message,
			processing_time_ms, analyzed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, productID, rec.ProductSlug, string(data),
		rec.Scores.Overall, rec.Scores.Feasibility, rec.Scores.Desirability, rec.Scores.Viability,
		string(rec.Recommendation.Verdict), rec.Metadata.SchemaVersion, rec.Metadata.ModelUsed,
		string(rec.Status), rec.ErrorMessage, rec.Metadata.ProcessingTimeMs,
		rec.Metadata.AnalyzedAt, rec.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "store: insert analysis")
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "store: commit")
	}
	return nil
}

func (s *SQLiteStore) GetLatestCompleted(ctx context.Context, slug string) (*model.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT analysis_data FROM product_analyses
		WHERE product_slug = ? AND status = 'completed'
		ORDER BY created_at DESC LIMIT 1`, slug)
	return scanRecord(row)
}

func (s *SQLiteStore) GetAnalysisByID(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT analysis_data FROM product_analyses WHERE id = ?`, id)
	return scanRecord(row)
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, f Filter) ([]*model.AnalysisRecord, error) {
	q := sq.Select("a.analysis_data").
		From("product_analyses a").
		Join("products p ON p.product_slug = a.product_slug").
		OrderBy("a.created_at DESC")

	if f.Source != "" {
		q = q.Where(sq.Eq{"p.source": f.Source})
	}
	if f.Verdict != "" {
		q = q.Where(sq.Eq{"a.verdict": f.Verdict})
	}
	if f.MinScore != nil {
		q = q.Where(sq.GtOrEq{"a.score_overall": *f.MinScore})
	}
	if f.MaxScore != nil {
		q = q.Where(sq.LtOrEq{"a.score_overall": *f.MaxScore})
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q = q.Limit(uint64(limit))
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "store: build list query")
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
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

func (s *SQLiteStore) InvalidateSlug(ctx context.Context, slug string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM product_analyses WHERE product_slug = ?`, slug); err != nil {
		return eris.Wrap(err, "store: invalidate slug")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scannable covers both *sql.Row and pgx rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*model.AnalysisRecord, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "store: scan analysis")
	}
	var rec model.AnalysisRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, eris.Wrap(err, "store: decode analysis record")
	}
	return &rec, nil
}
