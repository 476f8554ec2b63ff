// Package accumulate holds extraction results gathered across several
// reports. The extractor never sees an Accumulator; callers own it.
package accumulate

import (
	"sync"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// Summary counts what one Append added.
type Summary struct {
	Records     int `json:"records"`
	Diagnostics int `json:"diagnostics"`
	Total       int `json:"total"`
}

// Accumulator is an append-only pile of records and diagnostics that can be
// cleared. It is safe for concurrent use.
type Accumulator struct {
	mu      sync.RWMutex
	records []model.ProductRecord
	diags   []model.Diagnostic
	rounds  map[int]bool
}

// New creates an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{rounds: make(map[int]bool)}
}

// Append adds every record and diagnostic of res in order.
func (a *Accumulator) Append(res *model.ExtractionResult) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	if res == nil {
		return Summary{Total: len(a.records)}
	}
	a.records = append(a.records, res.Records...)
	a.diags = append(a.diags, res.Diagnostics...)
	if res.Round != nil {
		a.rounds[*res.Round] = true
	}
	return Summary{
		Records:     len(res.Records),
		Diagnostics: len(res.Diagnostics),
		Total:       len(a.records),
	}
}

// Clear drops everything accumulated so far.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records = nil
	a.diags = nil
	a.rounds = make(map[int]bool)
}

// Records returns a copy of the accumulated records in append order.
func (a *Accumulator) Records() []model.ProductRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]model.ProductRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Diagnostics returns a copy of the accumulated diagnostics.
func (a *Accumulator) Diagnostics() []model.Diagnostic {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]model.Diagnostic, len(a.diags))
	copy(out, a.diags)
	return out
}

// Len returns the number of accumulated records.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// HasRound reports whether a result for round n was appended.
func (a *Accumulator) HasRound(n int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rounds[n]
}
