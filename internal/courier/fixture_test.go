package courier

import (
	"fmt"
	"strings"
)

const fullHeader = "Name\tMarket Share\tUnits Sold to Seg\tRevision Date\tStock Out\tPfmn Coord\tSize Coord\tList Price\tMTBF\tAge Dec.31\tPromo Budget\tCust. Aware-ness\tSales Budget\tCust. Access-ibility\tDec. Cust Survey"

// pageSpec describes one synthetic Courier page.
type pageSpec struct {
	page     int
	segment  string
	demand   string
	criteria []string
	header   string
	rows     []string
	noTitle  bool
}

func defaultCriteria() []string {
	return []string{
		"1. Age\tIdeal Age = 2.0\t47%",
		"2. Price\t$20.00 - 30.00\t23%",
		"3. Ideal Position\tPfmn 5.9 Size 14.1\t21%",
		"4. Reliability\tMTBF 14000-19000\t9%",
	}
}

func (p pageSpec) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Segment Analysis\tCAPSTONE® COURIER\tPage %d\n", p.segment, p.page)
	fmt.Fprintf(&b, "%s Statistics\n", p.segment)
	if p.demand != "" {
		fmt.Fprintf(&b, "Total Industry Unit Demand\t%s\n", p.demand)
	}
	fmt.Fprintf(&b, "%s Customer Buying Criteria\n", p.segment)
	b.WriteString("\tExpectations\tImportance\n")
	for _, c := range p.criteria {
		b.WriteString(c + "\n")
	}
	fmt.Fprintf(&b, "Perceptual Map for %s Segment\n", p.segment)
	if !p.noTitle {
		fmt.Fprintf(&b, "Top Products in %s Segment\n", p.segment)
	}
	if p.header != "" {
		b.WriteString(p.header + "\n")
	}
	for _, r := range p.rows {
		b.WriteString(r + "\n")
	}
	return b.String()
}

func row(name, price string) string {
	return strings.Join([]string{
		name, "18%", "1,328", "11/4/2022", "", "6.4", "13.6", price, "17500",
		"2.29", "$1,400", "78%", "$1,400", "64%", "40",
	}, "\t")
}

func standardPages() []pageSpec {
	segs := []struct {
		page int
		name string
	}{
		{5, "Traditional"}, {6, "Low End"}, {7, "High End"}, {8, "Performance"}, {9, "Size"},
	}
	var out []pageSpec
	for i, s := range segs {
		rows := []string{row(fmt.Sprintf("%s1", s.name[:1]), "$28.00")}
		for j := 0; j < i; j++ {
			rows = append(rows, row(fmt.Sprintf("%s%d", s.name[:1], j+2), "$30.00"))
		}
		out = append(out, pageSpec{
			page:     s.page,
			segment:  s.name,
			demand:   "7,387",
			criteria: defaultCriteria(),
			header:   fullHeader,
			rows:     rows,
		})
	}
	return out
}

func renderReport(round string, pages ...pageSpec) string {
	var b strings.Builder
	b.WriteString("C123456\tAndrews\n")
	if round != "" {
		fmt.Fprintf(&b, "Round: %s\tDec. 31, 2024\n", round)
	}
	for _, p := range pages {
		b.WriteString(p.render())
	}
	return b.String()
}
