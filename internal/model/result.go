package model

// ExtractionResult is the output of one extraction call.
type ExtractionResult struct {
	Round       *int            `json:"round"`
	Records     []ProductRecord `json:"records"`
	Diagnostics []Diagnostic    `json:"diagnostics"`
}

// HasFatal reports whether the extraction was short-circuited.
func (r *ExtractionResult) HasFatal() bool {
	for _, d := range r.Diagnostics {
		if d.Kind == DiagEmptyInput {
			return true
		}
	}
	return false
}

// CountByKind tallies diagnostics per kind.
func (r *ExtractionResult) CountByKind() map[DiagnosticKind]int {
	out := make(map[DiagnosticKind]int)
	for _, d := range r.Diagnostics {
		out[d.Kind]++
	}
	return out
}

// RecordsFor returns the records extracted for seg, in row order.
func (r *ExtractionResult) RecordsFor(seg Segment) []ProductRecord {
	var out []ProductRecord
	for _, rec := range r.Records {
		if rec.Segment == seg {
			out = append(out, rec)
		}
	}
	return out
}
