// Package courier extracts per-product, per-segment records from a pasted
// Capstone Courier report.
//
// The report is tab-delimited text whose layout drifts between revisions.
// Each structural element (round marker, page marker, criteria line, table
// header, product row) has its own small scanner in this package; the
// Extractor wires them together per page and collects non-fatal problems as
// model.Diagnostic values instead of errors.
package courier
