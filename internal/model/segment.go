package model

// Segment names a market category of the simulation.
type Segment string

const (
	SegmentTraditional Segment = "Traditional"
	SegmentLowEnd      Segment = "Low End"
	SegmentHighEnd     Segment = "High End"
	SegmentPerformance Segment = "Performance"
	SegmentSize        Segment = "Size"
)

// segmentPages maps report page numbers to segments. The mapping is a
// positional convention of the Courier layout, never read from content.
var segmentPages = []struct {
	page    int
	segment Segment
}{
	{5, SegmentTraditional},
	{6, SegmentLowEnd},
	{7, SegmentHighEnd},
	{8, SegmentPerformance},
	{9, SegmentSize},
}

// SegmentPage pairs a page number with its segment.
type SegmentPage struct {
	Page    int
	Segment Segment
}

// SegmentPages returns the segment pages in output order.
func SegmentPages() []SegmentPage {
	out := make([]SegmentPage, len(segmentPages))
	for i, sp := range segmentPages {
		out[i] = SegmentPage{Page: sp.page, Segment: sp.segment}
	}
	return out
}

// SegmentForPage returns the segment printed on the given page number.
func SegmentForPage(page int) (Segment, bool) {
	for _, sp := range segmentPages {
		if sp.page == page {
			return sp.segment, true
		}
	}
	return "", false
}

// AllSegments returns every segment in page order.
func AllSegments() []Segment {
	out := make([]Segment, len(segmentPages))
	for i, sp := range segmentPages {
		out[i] = sp.segment
	}
	return out
}

// ParseSegment resolves a segment name case-insensitively.
func ParseSegment(s string) (Segment, bool) {
	for _, seg := range AllSegments() {
		if equalFoldSpace(string(seg), s) {
			return seg, true
		}
	}
	return "", false
}

func equalFoldSpace(a, b string) bool {
	norm := func(s string) string {
		out := make([]rune, 0, len(s))
		for _, r := range s {
			switch {
			case r == ' ' || r == '-' || r == '_':
				continue
			case r >= 'A' && r <= 'Z':
				out = append(out, r+('a'-'A'))
			default:
				out = append(out, r)
			}
		}
		return string(out)
	}
	return norm(a) == norm(b)
}
