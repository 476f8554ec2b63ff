package courier

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// Strategy selects how page bodies are bound to page numbers.
type Strategy string

const (
	// StrategySplit cuts the text at every marker; the marker before a body
	// numbers it. A repeated page number keeps the first body.
	StrategySplit Strategy = "split"
	// StrategyCapture collects markers and bodies separately and pairs them
	// by page number. Bodies sharing a number are concatenated in order.
	StrategyCapture Strategy = "capture"
)

// ParseStrategy validates a strategy name. Empty means StrategySplit.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategySplit:
		return StrategySplit, nil
	case StrategyCapture:
		return StrategyCapture, nil
	default:
		return "", eris.Errorf("courier: unknown page strategy %q", s)
	}
}

// titleToken identifies the report title on a page marker line.
const titleToken = "courier"

// pageMarker locates one "... COURIER ... Page <n>" marker.
type pageMarker struct {
	page      int
	lineStart int // offset of the line holding the marker
	bodyStart int // offset just past the page number
}

// findPageMarker scans a single line for the title token followed by
// "Page <n>". It returns the page number and the offset just past it.
func findPageMarker(line string) (page, end int, ok bool) {
	lower := toLowerASCII(line)
	t := strings.Index(lower, titleToken)
	if t < 0 {
		return 0, 0, false
	}
	for from := t + len(titleToken); ; {
		p := indexAt(lower, "page", from)
		if p < 0 {
			return 0, 0, false
		}
		from = p + len("page")
		i := skipSpace(line, from)
		if i == from {
			continue
		}
		n, j := 0, i
		for j < len(line) && isDigit(line[j]) {
			n = n*10 + int(line[j]-'0')
			j++
		}
		if j > i {
			return n, j, true
		}
	}
}

// findPageMarkers returns every page marker in text in source order.
func findPageMarkers(text string) []pageMarker {
	var out []pageMarker
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if page, end, ok := findPageMarker(line); ok {
			out = append(out, pageMarker{page: page, lineStart: offset, bodyStart: offset + end})
		}
		offset += len(line)
	}
	return out
}

// pageBodies binds page bodies to page numbers using the given strategy.
func pageBodies(text string, strategy Strategy) (map[int]string, []model.Diagnostic) {
	markers := findPageMarkers(text)
	bodies := make([]string, len(markers))
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].lineStart
		}
		bodies[i] = text[m.bodyStart:end]
	}

	out := make(map[int]string, len(markers))
	var diags []model.Diagnostic
	switch strategy {
	case StrategyCapture:
		for i, m := range markers {
			if prev, ok := out[m.page]; ok {
				out[m.page] = prev + "\n" + bodies[i]
				continue
			}
			out[m.page] = bodies[i]
		}
	default:
		for i, m := range markers {
			if _, ok := out[m.page]; ok {
				if seg, known := model.SegmentForPage(m.page); known {
					diags = append(diags, model.Diagnostic{
						Kind:    model.DiagDuplicatePage,
						Page:    m.page,
						Segment: seg,
						Message: fmt.Sprintf("marker %d repeats page %d; later body ignored", i+1, m.page),
					})
				}
				continue
			}
			out[m.page] = bodies[i]
		}
	}
	return out, diags
}

// SegmentPages splits text into the five segment pages. Segments whose page
// number never appears yield a MissingPage diagnostic.
func SegmentPages(text string, strategy Strategy) ([]model.Page, []model.Diagnostic) {
	bodies, diags := pageBodies(text, strategy)
	var pages []model.Page
	for _, sp := range model.SegmentPages() {
		body, ok := bodies[sp.Page]
		if !ok {
			diags = append(diags, model.Diagnostic{
				Kind:    model.DiagMissingPage,
				Page:    sp.Page,
				Segment: sp.Segment,
			})
			continue
		}
		pages = append(pages, model.Page{Segment: sp.Segment, Number: sp.Page, Text: body})
	}
	return pages, diags
}

// isPageMarkerLine reports whether line holds a page marker.
func isPageMarkerLine(line string) bool {
	_, _, ok := findPageMarker(line)
	return ok
}
