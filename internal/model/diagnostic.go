package model

import "fmt"

// DiagnosticKind classifies a non-fatal extraction problem.
type DiagnosticKind string

const (
	DiagMissingRoundNumber   DiagnosticKind = "MissingRoundNumber"
	DiagMissingPage          DiagnosticKind = "MissingPage"
	DiagDuplicatePage        DiagnosticKind = "DuplicatePage"
	DiagMissingProductTable  DiagnosticKind = "MissingProductTable"
	DiagMalformedProductLine DiagnosticKind = "MalformedProductLine"
	DiagMissingCriterion     DiagnosticKind = "MissingCriterion"
	DiagUnparsableCriterion  DiagnosticKind = "UnparsableCriterion"
	// DiagEmptyInput is fatal: no pages are produced.
	DiagEmptyInput DiagnosticKind = "EmptyInput"
)

// Diagnostic reports a problem the extractor recovered from.
type Diagnostic struct {
	Kind      DiagnosticKind `csv:"kind" json:"kind"`
	Page      int            `csv:"page,omitempty" json:"page,omitempty"`
	Segment   Segment        `csv:"segment" json:"segment,omitempty"`
	Criterion string         `csv:"criterion" json:"criterion,omitempty"`
	Line      string         `csv:"raw_line" json:"raw_line,omitempty"`
	Message   string         `csv:"message" json:"message,omitempty"`
}

// String renders the diagnostic for logs and CLI output.
func (d Diagnostic) String() string {
	s := string(d.Kind)
	if d.Page != 0 {
		s += fmt.Sprintf(" page=%d", d.Page)
	}
	if d.Segment != "" {
		s += fmt.Sprintf(" segment=%q", d.Segment)
	}
	if d.Criterion != "" {
		s += fmt.Sprintf(" criterion=%q", d.Criterion)
	}
	if d.Line != "" {
		s += fmt.Sprintf(" line=%q", d.Line)
	}
	if d.Message != "" {
		s += ": " + d.Message
	}
	return s
}
