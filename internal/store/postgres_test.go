package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchradar/launchradar/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

func recordJSON(t *testing.T, rec *model.AnalysisRecord) string {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	return string(data)
}

func TestPostgres_SaveAnalysis(t *testing.T) {
	s, mock := newMockPostgres(t)
	rec := testRecord("b1000000-0000-4000-8000-000000000001", "flowbase", model.StatusCompleted, time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO products`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(rec.ID))
	mock.ExpectExec(`INSERT INTO product_analyses`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveAnalysis(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveAnalysis_RollsBackOnInsertFailure(t *testing.T) {
	s, mock := newMockPostgres(t)
	rec := testRecord("b1000000-0000-4000-8000-000000000002", "flowbase", model.StatusCompleted, time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO products`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(rec.ID))
	mock.ExpectExec(`INSERT INTO product_analyses`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.SaveAnalysis(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert analysis")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetLatestCompleted(t *testing.T) {
	s, mock := newMockPostgres(t)
	rec := testRecord("b1000000-0000-4000-8000-000000000003", "flowbase", model.StatusCompleted, time.Now())

	mock.ExpectQuery(`SELECT analysis_data FROM product_analyses`).
		WithArgs("flowbase").
		WillReturnRows(pgxmock.NewRows([]string{"analysis_data"}).AddRow(recordJSON(t, rec)))

	got, err := s.GetLatestCompleted(context.Background(), "flowbase")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Scores.Overall, got.Scores.Overall)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetLatestCompleted_NoRows(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT analysis_data FROM product_analyses`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetLatestCompleted(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetAnalysisByID(t *testing.T) {
	s, mock := newMockPostgres(t)
	rec := testRecord("b1000000-0000-4000-8000-000000000004", "flowbase", model.StatusFailed, time.Now())

	mock.ExpectQuery(`SELECT analysis_data FROM product_analyses WHERE id`).
		WithArgs(rec.ID).
		WillReturnRows(pgxmock.NewRows([]string{"analysis_data"}).AddRow(recordJSON(t, rec)))

	got, err := s.GetAnalysisByID(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StatusFailed, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListAnalyses_Filters(t *testing.T) {
	s, mock := newMockPostgres(t)
	rec := testRecord("b1000000-0000-4000-8000-000000000005", "flowbase", model.StatusCompleted, time.Now())

	minScore := 50
	mock.ExpectQuery(`SELECT a.analysis_data FROM product_analyses a`).
		WithArgs("betalist", "BUILD", minScore, DefaultListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"analysis_data"}).AddRow(recordJSON(t, rec)))

	got, err := s.ListAnalyses(context.Background(), Filter{
		Source:   "betalist",
		Verdict:  "BUILD",
		MinScore: &minScore,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InvalidateSlug(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec(`DELETE FROM product_analyses`).
		WithArgs("flowbase").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, s.InvalidateSlug(context.Background(), "flowbase"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS products`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
