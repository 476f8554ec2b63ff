package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS extractions (
	id               TEXT PRIMARY KEY,
	source           TEXT NOT NULL DEFAULT '',
	round            INTEGER,
	record_count     INTEGER NOT NULL DEFAULT 0,
	diagnostic_count INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS records (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	extraction_id TEXT NOT NULL REFERENCES extractions(id),
	segment       TEXT NOT NULL,
	round         INTEGER,
	name          TEXT NOT NULL,
	data          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS diagnostics (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	extraction_id TEXT NOT NULL REFERENCES extractions(id),
	kind          TEXT NOT NULL,
	page          INTEGER NOT NULL DEFAULT 0,
	segment       TEXT NOT NULL DEFAULT '',
	criterion     TEXT NOT NULL DEFAULT '',
	raw_line      TEXT NOT NULL DEFAULT '',
	message       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_records_segment_round ON records(segment, round);
CREATE INDEX IF NOT EXISTS idx_records_extraction_id ON records(extraction_id);
CREATE INDEX IF NOT EXISTS idx_diagnostics_extraction_id ON diagnostics(extraction_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveExtraction(ctx context.Context, source string, res *model.ExtractionResult) (*Extraction, error) {
	if res == nil {
		return nil, eris.New("sqlite: nil extraction result")
	}
	ex := &Extraction{
		ID:          uuid.New().String(),
		Source:      source,
		Round:       res.Round,
		Records:     len(res.Records),
		Diagnostics: len(res.Diagnostics),
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO extractions (id, source, round, record_count, diagnostic_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.Source, roundValue(ex.Round), ex.Records, ex.Diagnostics, ex.CreatedAt,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert extraction")
	}

	for _, r := range res.Records {
		data, err := marshalRecord(r)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (extraction_id, segment, round, name, data) VALUES (?, ?, ?, ?, ?)`,
			ex.ID, string(r.Segment), roundValue(r.Round), r.Name, string(data),
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: insert record")
		}
	}

	for _, d := range res.Diagnostics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO diagnostics (extraction_id, kind, page, segment, criterion, raw_line, message) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ex.ID, string(d.Kind), d.Page, string(d.Segment), d.Criterion, d.Line, d.Message,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: insert diagnostic")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit extraction")
	}
	return ex, nil
}

func (s *SQLiteStore) ListExtractions(ctx context.Context, limit int) ([]Extraction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, round, record_count, diagnostic_count, created_at FROM extractions ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list extractions")
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		var ex Extraction
		var round sql.NullInt64
		if err := rows.Scan(&ex.ID, &ex.Source, &round, &ex.Records, &ex.Diagnostics, &ex.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan extraction")
		}
		if round.Valid {
			ex.Round = model.IntPtr(int(round.Int64))
		}
		out = append(out, ex)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list extractions iterate")
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.ProductRecord, error) {
	query := `SELECT data FROM records WHERE 1=1`
	var args []any

	if filter.Segment != "" {
		query += ` AND segment = ?`
		args = append(args, string(filter.Segment))
	}
	if filter.Round != nil {
		query += ` AND round = ?`
		args = append(args, *filter.Round)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, limitOrDefault(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var out []model.ProductRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		r, err := unmarshalRecord([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

func (s *SQLiteStore) ListDiagnostics(ctx context.Context, extractionID string) ([]model.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, page, segment, criterion, raw_line, message FROM diagnostics WHERE extraction_id = ? ORDER BY id`,
		extractionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list diagnostics")
	}
	defer rows.Close()

	var out []model.Diagnostic
	for rows.Next() {
		var d model.Diagnostic
		if err := rows.Scan(&d.Kind, &d.Page, &d.Segment, &d.Criterion, &d.Line, &d.Message); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan diagnostic")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list diagnostics iterate")
}

func (s *SQLiteStore) Clear(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{`DELETE FROM diagnostics`, `DELETE FROM records`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, eris.Wrapf(err, "sqlite: %s", stmt)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM extractions`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete extractions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), eris.Wrap(tx.Commit(), "sqlite: commit clear")
}
