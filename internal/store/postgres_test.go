package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS extractions`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveExtraction(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO extractions`).
		WithArgs(pgxmock.AnyArg(), "round3.txt", 3, 2, 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"records"}, recordColumns).WillReturnResult(2)
	mock.ExpectCopyFrom(pgx.Identifier{"diagnostics"}, diagnosticColumns).WillReturnResult(1)
	mock.ExpectCommit()

	ex, err := s.SaveExtraction(context.Background(), "round3.txt", sampleResult(3, "Able", "Acre"))
	require.NoError(t, err)
	assert.Len(t, ex.ID, 36)
	assert.Equal(t, 2, ex.Records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveExtraction_NoRecords(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	res := &model.ExtractionResult{Diagnostics: []model.Diagnostic{{Kind: model.DiagEmptyInput}}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO extractions`).
		WithArgs(pgxmock.AnyArg(), "", pgxmock.AnyArg(), 0, 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"diagnostics"}, diagnosticColumns).WillReturnResult(1)
	mock.ExpectCommit()

	_, err := s.SaveExtraction(context.Background(), "", res)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveExtraction_CopyFails(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO extractions`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"records"}, recordColumns).WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err := s.SaveExtraction(context.Background(), "", sampleResult(1, "Able"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRecords(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	able, err := json.Marshal(model.ProductRecord{Segment: model.SegmentLowEnd, Round: model.IntPtr(2), Name: "Able"})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT data FROM records WHERE true AND segment = \$1 AND round = \$2 ORDER BY id LIMIT \$3`).
		WithArgs("Low End", 2, 50).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(able))

	recs, err := s.ListRecords(context.Background(), RecordFilter{
		Segment: model.SegmentLowEnd,
		Round:   model.IntPtr(2),
		Limit:   50,
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Able", recs[0].Name)
	assert.Equal(t, 2, *recs[0].Round)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRecords_DefaultLimitAndOffset(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM records WHERE true ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(defaultLimit, 10).
		WillReturnRows(pgxmock.NewRows([]string{"data"}))

	recs, err := s.ListRecords(context.Background(), RecordFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListDiagnostics(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT kind, page, segment, criterion, raw_line, message FROM diagnostics WHERE extraction_id = \$1`).
		WithArgs("ex-1").
		WillReturnRows(pgxmock.NewRows([]string{"kind", "page", "segment", "criterion", "raw_line", "message"}).
			AddRow("MissingPage", 8, "Performance", "", "", ""))

	diags, err := s.ListDiagnostics(context.Background(), "ex-1")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, model.DiagMissingPage, diags[0].Kind)
	assert.Equal(t, 8, diags[0].Page)
	assert.Equal(t, model.SegmentPerformance, diags[0].Segment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Clear(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM extractions`).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := s.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, source, round`).
		WithArgs(5).
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := s.ListExtractions(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list extractions")
	assert.NoError(t, mock.ExpectationsWereMet())
}
