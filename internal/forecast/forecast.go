// Package forecast projects a segment's next-round ideal position from the
// drift between its two most recent rounds.
package forecast

import (
	"sort"
	"strconv"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// Position is a point on the perceptual map.
type Position struct {
	Performance float64 `json:"performance"`
	Size        float64 `json:"size"`
}

// Projection is the forecast for one segment.
type Projection struct {
	Segment  model.Segment `json:"segment"`
	From     int           `json:"from_round"`
	To       int           `json:"to_round"`
	Previous Position      `json:"previous"`
	Current  Position      `json:"current"`
	Next     Position      `json:"next"`
}

// NextIdealPosition continues the per-axis drift from prev to curr for one
// more round: next = curr + (curr - prev).
func NextIdealPosition(prev, curr Position) Position {
	return Position{
		Performance: curr.Performance + (curr.Performance - prev.Performance),
		Size:        curr.Size + (curr.Size - prev.Size),
	}
}

// FromRecords projects every segment that has ideal positions for at least
// two distinct rounds. Records without a round or with unparsable
// coordinates are ignored. Within a round the first usable record wins.
// Projections come back in segment page order.
func FromRecords(records []model.ProductRecord) []Projection {
	bySegment := make(map[model.Segment]map[int]Position)
	for _, r := range records {
		if r.Round == nil {
			continue
		}
		pos, ok := idealPosition(r)
		if !ok {
			continue
		}
		rounds := bySegment[r.Segment]
		if rounds == nil {
			rounds = make(map[int]Position)
			bySegment[r.Segment] = rounds
		}
		if _, seen := rounds[*r.Round]; !seen {
			rounds[*r.Round] = pos
		}
	}

	var out []Projection
	for _, seg := range model.AllSegments() {
		rounds := bySegment[seg]
		if len(rounds) < 2 {
			continue
		}
		keys := make([]int, 0, len(rounds))
		for k := range rounds {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		prevRound, currRound := keys[len(keys)-2], keys[len(keys)-1]
		prev, curr := rounds[prevRound], rounds[currRound]
		out = append(out, Projection{
			Segment:  seg,
			From:     currRound,
			To:       currRound + 1,
			Previous: prev,
			Current:  curr,
			Next:     NextIdealPosition(prev, curr),
		})
	}
	return out
}

func idealPosition(r model.ProductRecord) (Position, bool) {
	pmft, err := strconv.ParseFloat(r.IdealPerformance, 64)
	if err != nil {
		return Position{}, false
	}
	size, err := strconv.ParseFloat(r.IdealSize, 64)
	if err != nil {
		return Position{}, false
	}
	return Position{Performance: pmft, Size: size}, true
}
