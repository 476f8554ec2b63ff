package courier

import "strings"

// TableMode says how product row cells are mapped to columns.
type TableMode int

const (
	// ModeNamed zips cells against the header recovered from the page.
	ModeNamed TableMode = iota
	// ModeFixed assigns cells positionally using FixedLayout.
	ModeFixed
)

func (m TableMode) String() string {
	if m == ModeNamed {
		return "named"
	}
	return "fixed"
}

// maxHeaderLines bounds how many physical lines a wrapped header may span.
const maxHeaderLines = 6

// sectionTitle introduces the product table on current Courier revisions.
const sectionTitle = "top products in"

// Table is the product table schema located on a page.
type Table struct {
	Mode TableMode
	// Schema holds one column per cell position. Unrecognised labels are
	// kept as empty columns so positions stay aligned.
	Schema []Column
	// Labels are the accumulated header labels, empty in ModeFixed when no
	// header was read.
	Labels []string
	// Start is the index of the first line after the header.
	Start int
}

// Width is the number of cells a product row must have.
func (t Table) Width() int {
	return len(t.Schema)
}

// LocateTable finds the product table on a page. The table is introduced
// either by a literal header row starting with the name and market share
// columns, or by a "Top Products in <Segment> Segment" title whose header
// follows on the next non-blank lines.
func LocateTable(lines []string, aliases *Aliases) (Table, bool) {
	headerStart := -1
	for i, line := range lines {
		s := strings.TrimSpace(line)
		if hasPrefixFold(s, sectionTitle) {
			headerStart = i + 1
			break
		}
		if isLiteralHeader(line, aliases) {
			headerStart = i
			break
		}
	}
	if headerStart < 0 {
		return Table{}, false
	}

	labels, next, terminal := readHeader(lines, headerStart, aliases)
	if terminal {
		schema := make([]Column, len(labels))
		hasName := false
		for i, l := range labels {
			if c, ok := aliases.Resolve(l); ok {
				schema[i] = c
				hasName = hasName || c == ColName
			}
		}
		if hasName {
			return Table{Mode: ModeNamed, Schema: schema, Labels: labels, Start: next}, true
		}
	}
	return Table{Mode: ModeFixed, Schema: FixedLayout, Labels: labels, Start: next}, true
}

// isLiteralHeader reports whether line opens with the name and market share
// column labels.
func isLiteralHeader(line string, aliases *Aliases) bool {
	cells := nonEmpty(splitCells(line))
	if len(cells) < 2 {
		return false
	}
	first, ok := aliases.Resolve(cells[0])
	if !ok || first != ColName {
		return false
	}
	second, ok := aliases.Resolve(cells[1])
	return ok && second == ColMarketShare
}

// readHeader accumulates header labels from start until a terminal column
// is read, a data row appears, or maxHeaderLines lines were consumed. A
// label split across a line break is re-joined when the joined label
// resolves and one of its fragments does not.
func readHeader(lines []string, start int, aliases *Aliases) (labels []string, next int, terminal bool) {
	consumed := 0
	i := start
	for ; i < len(lines) && consumed < maxHeaderLines; i++ {
		line := lines[i]
		if isBlank(line) {
			continue
		}
		if isDataRow(line) || isTableEnd(line) {
			break
		}
		consumed++

		cells := nonEmpty(splitCells(line))
		if len(labels) > 0 && len(cells) > 0 {
			if joined, ok := joinLabel(labels[len(labels)-1], cells[0], aliases); ok {
				labels[len(labels)-1] = joined
				cells = cells[1:]
			}
		}
		labels = append(labels, cells...)

		for _, l := range labels {
			if c, ok := aliases.Resolve(l); ok && aliases.IsTerminal(c) {
				return labels, i + 1, true
			}
		}
	}
	return labels, i, false
}

// joinLabel decides whether tail and head are two halves of one label.
func joinLabel(tail, head string, aliases *Aliases) (string, bool) {
	_, tailOK := aliases.Resolve(tail)
	_, headOK := aliases.Resolve(head)
	if tailOK && headOK {
		return "", false
	}
	for _, joined := range []string{tail + " " + head, tail + head} {
		if _, ok := aliases.Resolve(joined); ok {
			return joined, true
		}
	}
	return "", false
}

// isDataRow reports whether any cell after the first is numeric, which
// header lines never are.
func isDataRow(line string) bool {
	cells := nonEmpty(splitCells(line))
	if len(cells) < 2 {
		return false
	}
	for _, c := range cells[1:] {
		if cleanNumber(c) != "" {
			return true
		}
	}
	return false
}

// isTableEnd reports whether line closes the product table.
func isTableEnd(line string) bool {
	s := strings.TrimSpace(line)
	return hasPrefixFold(s, "perceptual map") || isPageMarkerLine(line)
}
