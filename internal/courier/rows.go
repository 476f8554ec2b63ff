package courier

import (
	"strings"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// RawRecord is one product row with cells still in source form.
type RawRecord struct {
	Fields map[Column]string
	Line   string
}

// Get returns the raw cell for c, or "".
func (r RawRecord) Get(c Column) string {
	return r.Fields[c]
}

// rowFit classifies a row's cell count against the table width.
type rowFit int

const (
	rowExact rowFit = iota
	rowShort
	rowLong
)

// fitRow trims trailing empty cells beyond width and compares the rest.
func fitRow(cells []string, width int) ([]string, rowFit) {
	for len(cells) > width && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	switch {
	case len(cells) < width:
		return cells, rowShort
	case len(cells) > width:
		return cells, rowLong
	default:
		return cells, rowExact
	}
}

// joinCandidates lists the ways a wrapped row may be glued back together.
// A tab already at the seam means the break fell after a delimiter. Otherwise
// the break fell either between cells or inside one, so both the tab-joined
// and the plain concatenation are offered.
func joinCandidates(first, second string) []string {
	if strings.HasSuffix(first, "\t") || strings.HasPrefix(second, "\t") {
		return []string{first + second}
	}
	return []string{first + "\t" + second, first + second}
}

// BuildRows reads product rows after the table header until the table ends.
//
// A row shorter than the schema gets exactly one forward merge with the
// following line. If the merged row still does not fit, the first line is
// dropped with a MalformedProductLine diagnostic and the following line is
// read on its own. There is no further lookahead.
func BuildRows(lines []string, t Table) ([]RawRecord, []model.Diagnostic) {
	var records []RawRecord
	var diags []model.Diagnostic
	width := t.Width()

	malformed := func(line string) {
		diags = append(diags, model.Diagnostic{Kind: model.DiagMalformedProductLine, Line: line})
	}

	for i := t.Start; i < len(lines); i++ {
		line := lines[i]
		if isBlank(line) {
			continue
		}
		if isTableEnd(line) {
			break
		}

		cells, fit := fitRow(splitCells(line), width)
		raw := line
		if fit == rowShort && i+1 < len(lines) && !isBlank(lines[i+1]) && !isTableEnd(lines[i+1]) {
			for _, merged := range joinCandidates(line, lines[i+1]) {
				if mcells, mfit := fitRow(splitCells(merged), width); mfit == rowExact {
					cells, fit, raw = mcells, rowExact, merged
					i++
					break
				}
			}
		}
		if fit != rowExact {
			malformed(line)
			continue
		}
		fields := zipRow(cells, t)
		if fields[ColName] == "" {
			malformed(line)
			continue
		}
		records = append(records, RawRecord{Fields: fields, Line: raw})
	}
	return records, diags
}

// zipRow maps cells onto the table schema.
func zipRow(cells []string, t Table) map[Column]string {
	fields := make(map[Column]string, len(cells))
	for i, c := range t.Schema {
		if c == "" || i >= len(cells) {
			continue
		}
		fields[c] = cells[i]
	}
	return fields
}
