// Package store persists extraction results so records accumulate across
// CLI invocations and server restarts.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// Extraction summarises one saved extraction.
type Extraction struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Round       *int      `json:"round"`
	Records     int       `json:"records"`
	Diagnostics int       `json:"diagnostics"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordFilter narrows ListRecords.
type RecordFilter struct {
	Segment model.Segment `json:"segment,omitempty"`
	Round   *int          `json:"round,omitempty"`
	Limit   int           `json:"limit,omitempty"`
	Offset  int           `json:"offset,omitempty"`
}

// Store defines the persistence interface for accumulated extractions.
type Store interface {
	SaveExtraction(ctx context.Context, source string, res *model.ExtractionResult) (*Extraction, error)
	ListExtractions(ctx context.Context, limit int) ([]Extraction, error)
	// ListRecords returns records in the order they were saved.
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.ProductRecord, error)
	ListDiagnostics(ctx context.Context, extractionID string) ([]model.Diagnostic, error)
	// Clear removes every extraction and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver and applies migrations.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch driver {
	case "sqlite":
		st, err = NewSQLite(dsn)
	case "postgres":
		st, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// defaultLimit caps list queries without an explicit limit.
const defaultLimit = 1000

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}

func marshalRecord(r model.ProductRecord) ([]byte, error) {
	data, err := json.Marshal(r)
	return data, eris.Wrap(err, "store: marshal record")
}

func unmarshalRecord(data []byte) (model.ProductRecord, error) {
	var r model.ProductRecord
	err := json.Unmarshal(data, &r)
	return r, eris.Wrap(err, "store: unmarshal record")
}

func roundValue(r *int) any {
	if r == nil {
		return nil
	}
	return *r
}
