package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/tmansmann0/capsim-ml/internal/db"
	"github.com/tmansmann0/capsim-ml/internal/model"
)

// PostgresStore implements Store using pgxpool. Records and diagnostics
// are written with COPY inside the extraction's transaction.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var (
	recordColumns     = []string{"extraction_id", "segment", "round", "name", "data"}
	diagnosticColumns = []string{"extraction_id", "kind", "page", "segment", "criterion", "raw_line", "message"}
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS extractions (
	id               TEXT PRIMARY KEY,
	source           TEXT NOT NULL DEFAULT '',
	round            INTEGER,
	record_count     INTEGER NOT NULL DEFAULT 0,
	diagnostic_count INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS records (
	id            BIGSERIAL PRIMARY KEY,
	extraction_id TEXT NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
	segment       TEXT NOT NULL,
	round         INTEGER,
	name          TEXT NOT NULL,
	data          JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS diagnostics (
	id            BIGSERIAL PRIMARY KEY,
	extraction_id TEXT NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveExtraction(ctx context.Context, source string, res *model.ExtractionResult) (*Extraction, error) {
	if res == nil {
		return nil, eris.New("postgres: nil extraction result")
	}
	ex := &Extraction{
		ID:          uuid.New().String(),
		Source:      source,
		Round:       res.Round,
		Records:     len(res.Records),
		Diagnostics: len(res.Diagnostics),
		CreatedAt:   time.Now().UTC(),
	}

	recordRows := make([][]any, 0, len(res.Records))
	for _, r := range res.Records {
		data, err := marshalRecord(r)
		if err != nil {
			return nil, err
		}
		recordRows = append(recordRows, []any{ex.ID, string(r.Segment), roundValue(r.Round), r.Name, data})
	}
	diagRows := make([][]any, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		diagRows = append(diagRows, []any{ex.ID, string(d.Kind), d.Page, string(d.Segment), d.Criterion, d.Line, d.Message})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO extractions (id, source, round, record_count, diagnostic_count, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		ex.ID, ex.Source, roundValue(ex.Round), ex.Records, ex.Diagnostics, ex.CreatedAt,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: insert extraction")
	}
	if _, err := db.CopyFrom(ctx, tx, "records", recordColumns, recordRows); err != nil {
		return nil, eris.Wrap(err, "postgres: copy records")
	}
	if _, err := db.CopyFrom(ctx, tx, "diagnostics", diagnosticColumns, diagRows); err != nil {
		return nil, eris.Wrap(err, "postgres: copy diagnostics")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit extraction")
	}
	return ex, nil
}

func (s *PostgresStore) ListExtractions(ctx context.Context, limit int) ([]Extraction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source, round, record_count, diagnostic_count, created_at FROM extractions ORDER BY created_at DESC LIMIT $1`,
		limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list extractions")
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		var ex Extraction
		if err := rows.Scan(&ex.ID, &ex.Source, &ex.Round, &ex.Records, &ex.Diagnostics, &ex.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan extraction")
		}
		out = append(out, ex)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list extractions iterate")
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.ProductRecord, error) {
	query := `SELECT data FROM records WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Segment != "" {
		query += fmt.Sprintf(` AND segment = $%d`, argIdx)
		args = append(args, string(filter.Segment))
		argIdx++
	}
	if filter.Round != nil {
		query += fmt.Sprintf(` AND round = $%d`, argIdx)
		args = append(args, *filter.Round)
		argIdx++
	}
	query += ` ORDER BY id`

	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limitOrDefault(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var out []model.ProductRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		r, err := unmarshalRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

func (s *PostgresStore) ListDiagnostics(ctx context.Context, extractionID string) ([]model.Diagnostic, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT kind, page, segment, criterion, raw_line, message FROM diagnostics WHERE extraction_id = $1 ORDER BY id`,
		extractionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list diagnostics")
	}
	defer rows.Close()

	var out []model.Diagnostic
	for rows.Next() {
		var d model.Diagnostic
		var kind, segment string
		if err := rows.Scan(&kind, &d.Page, &segment, &d.Criterion, &d.Line, &d.Message); err != nil {
			return nil, eris.Wrap(err, "postgres: scan diagnostic")
		}
		d.Kind = model.DiagnosticKind(kind)
		d.Segment = model.Segment(segment)
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list diagnostics iterate")
}

func (s *PostgresStore) Clear(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM extractions`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: clear extractions")
	}
	return int(tag.RowsAffected()), nil
}
