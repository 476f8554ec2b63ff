package courier

import (
	"strings"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// knownCriteria are matched before falling back to the first word, longest
// first, so "Ideal Position Pfmn 5.9" names "Ideal Position".
var knownCriteria = [][]string{
	{"Ideal", "Position"},
	{"Reliability"},
	{"Price"},
	{"Age"},
}

// ParseCriterionLine parses "<ordinal>. <Name> <expectation> <importance>%".
// The importance is the number immediately followed by '%' that ends the
// line's last number; numbers inside the expectation are left alone.
func ParseCriterionLine(line string) (model.Criterion, bool) {
	s := strings.TrimLeft(line, " \t")
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '.' {
		return model.Criterion{}, false
	}
	i++
	if i >= len(s) || (s[i] != ' ' && s[i] != '\t') {
		return model.Criterion{}, false
	}
	rest := s[i:]

	name, nameEnd, ok := criterionName(rest)
	if !ok {
		return model.Criterion{}, false
	}

	nums := scanNumbers(rest[nameEnd:])
	if len(nums) == 0 {
		return model.Criterion{}, false
	}
	last := nums[len(nums)-1]
	after := skipSpace(rest, nameEnd+last.end)
	if after >= len(rest) || rest[after] != '%' {
		return model.Criterion{}, false
	}

	expectation := rest[nameEnd : nameEnd+last.start]
	return model.Criterion{
		Name:        name,
		Expectation: collapseSpace(expectation),
		Importance:  last.text,
	}, true
}

// criterionName reads the alphabetic words right after the ordinal. When
// the first tab cell is purely alphabetic it is the name; otherwise the
// longest known criterion prefix wins, then the first word.
func criterionName(rest string) (string, int, bool) {
	start := skipSpace(rest, 0)
	if tab := strings.IndexByte(rest[start:], '\t'); tab > 0 {
		cell := strings.TrimSpace(rest[start : start+tab])
		if allAlphaWords(cell) {
			return canonicalCriterion(strings.Fields(cell)), start + tab, true
		}
	}

	type word struct {
		text string
		end  int
	}
	var words []word
	i := start
	for i < len(rest) {
		j := i
		for j < len(rest) && rest[j] != ' ' && rest[j] != '\t' {
			j++
		}
		w := rest[i:j]
		if !isAlphaWord(w) {
			break
		}
		words = append(words, word{text: w, end: j})
		i = skipSpace(rest, j)
	}
	if len(words) == 0 {
		return "", 0, false
	}

	for _, known := range knownCriteria {
		if len(known) > len(words) {
			continue
		}
		match := true
		for k, kw := range known {
			if !strings.EqualFold(kw, words[k].text) {
				match = false
				break
			}
		}
		if match {
			return strings.Join(known, " "), words[len(known)-1].end, true
		}
	}
	return words[0].text, words[0].end, true
}

// canonicalCriterion maps a case variant of a known name to its spelling.
func canonicalCriterion(words []string) string {
	for _, known := range knownCriteria {
		if len(known) != len(words) {
			continue
		}
		match := true
		for k := range known {
			if !strings.EqualFold(known[k], words[k]) {
				match = false
				break
			}
		}
		if match {
			return strings.Join(known, " ")
		}
	}
	return strings.Join(words, " ")
}

func allAlphaWords(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !isAlphaWord(w) {
			return false
		}
	}
	return true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseCriteria collects every criterion line on a page. A name seen twice
// keeps the last occurrence.
func ParseCriteria(lines []string) *model.Criteria {
	c := model.NewCriteria()
	for _, line := range lines {
		if cr, ok := ParseCriterionLine(line); ok {
			c.Set(cr)
		}
	}
	return c
}

// ParseAgeExpectation reads the ideal age from "Ideal Age = 2.0". Without
// an '=' the first number is used.
func ParseAgeExpectation(text string) (string, bool) {
	if eq := strings.IndexByte(text, '='); eq >= 0 {
		text = text[eq+1:]
	}
	n, ok := firstNumber(text)
	if !ok {
		return "", false
	}
	return n.text, true
}

// ParsePriceRange reads "$low - $high"; the second '$' is optional.
func ParsePriceRange(text string) (lower, upper string, ok bool) {
	dollar := strings.IndexByte(text, '$')
	if dollar < 0 {
		return "", "", false
	}
	i := skipSpace(text, dollar+1)
	low, next, ok := numberAt(text, i)
	if !ok {
		return "", "", false
	}
	i, ok = skipDash(text, next)
	if !ok {
		return "", "", false
	}
	if i < len(text) && text[i] == '$' {
		i = skipSpace(text, i+1)
	}
	high, _, ok := numberAt(text, i)
	if !ok {
		return "", "", false
	}
	return low, high, true
}

// ParseReliabilityRange reads "MTBF <low>-<high>". The MTBF label is
// optional.
func ParseReliabilityRange(text string) (lower, upper string, ok bool) {
	i := 0
	if idx := indexFold(text, "mtbf"); idx >= 0 {
		i = idx + len("mtbf")
	}
	i = skipSpace(text, i)
	low, next, ok := numberAt(text, i)
	if !ok {
		return "", "", false
	}
	i, ok = skipDash(text, next)
	if !ok {
		return "", "", false
	}
	high, _, ok := numberAt(text, i)
	if !ok {
		return "", "", false
	}
	return low, high, true
}

// ParseIdealPosition reads the coordinates after "Pfmn" and "Size".
func ParseIdealPosition(text string) (pfmn, size string, ok bool) {
	pfmn, ok = labelledNumber(text, "pfmn")
	if !ok {
		return "", "", false
	}
	size, ok = labelledNumber(text, "size")
	if !ok {
		return "", "", false
	}
	return pfmn, size, true
}

// labelledNumber returns the number following label, ignoring case.
func labelledNumber(text, label string) (string, bool) {
	idx := indexFold(text, label)
	if idx < 0 {
		return "", false
	}
	i := skipSpace(text, idx+len(label))
	if i < len(text) && (text[i] == ':' || text[i] == '=') {
		i = skipSpace(text, i+1)
	}
	n, _, ok := numberAt(text, i)
	return n, ok
}

// numberAt reads a number starting exactly at i.
func numberAt(text string, i int) (string, int, bool) {
	if i >= len(text) || !isDigit(text[i]) {
		return "", i, false
	}
	n, ok := firstNumber(text[i:])
	if !ok || n.start != 0 {
		return "", i, false
	}
	return n.text, i + n.end, true
}

// skipDash consumes optional space, a hyphen or en dash, and optional space.
func skipDash(text string, i int) (int, bool) {
	i = skipSpace(text, i)
	switch {
	case strings.HasPrefix(text[i:], "-"):
		i++
	case strings.HasPrefix(text[i:], "–"):
		i += len("–")
	default:
		return i, false
	}
	return skipSpace(text, i), true
}

// Expectations holds the criteria-derived fields shared by every record on
// a page. Absent or unparsable criteria leave their fields empty.
type Expectations struct {
	AgeExpectation        string
	AgeImportance         string
	PriceLower            string
	PriceUpper            string
	PriceImportance       string
	IdealPerformance      string
	IdealSize             string
	IdealImportance       string
	ReliabilityLower      string
	ReliabilityUpper      string
	ReliabilityImportance string
}

// DeriveExpectations parses each required criterion's expectation text with
// its own sub-pattern. Diagnostics carry the criterion name only; the caller
// stamps page and segment.
func DeriveExpectations(c *model.Criteria) (Expectations, []model.Diagnostic) {
	var exp Expectations
	var diags []model.Diagnostic

	missing := func(name string) {
		diags = append(diags, model.Diagnostic{Kind: model.DiagMissingCriterion, Criterion: name})
	}
	unparsable := func(cr model.Criterion) {
		diags = append(diags, model.Diagnostic{
			Kind:      model.DiagUnparsableCriterion,
			Criterion: cr.Name,
			Message:   cr.Expectation,
		})
	}

	if cr, ok := c.Lookup(model.CriterionAge); ok {
		exp.AgeImportance = cr.Importance
		if v, ok := ParseAgeExpectation(cr.Expectation); ok {
			exp.AgeExpectation = v
		} else {
			unparsable(cr)
		}
	} else {
		missing(model.CriterionAge)
	}

	if cr, ok := c.Lookup(model.CriterionPrice); ok {
		exp.PriceImportance = cr.Importance
		if lo, hi, ok := ParsePriceRange(cr.Expectation); ok {
			exp.PriceLower, exp.PriceUpper = lo, hi
		} else {
			unparsable(cr)
		}
	} else {
		missing(model.CriterionPrice)
	}

	if cr, ok := c.Lookup(model.CriterionIdealPosition); ok {
		exp.IdealImportance = cr.Importance
		if pf, sz, ok := ParseIdealPosition(cr.Expectation); ok {
			exp.IdealPerformance, exp.IdealSize = pf, sz
		} else {
			unparsable(cr)
		}
	} else {
		missing(model.CriterionIdealPosition)
	}

	if cr, ok := c.Lookup(model.CriterionReliability); ok {
		exp.ReliabilityImportance = cr.Importance
		if lo, hi, ok := ParseReliabilityRange(cr.Expectation); ok {
			exp.ReliabilityLower, exp.ReliabilityUpper = lo, hi
		} else {
			unparsable(cr)
		}
	} else {
		missing(model.CriterionReliability)
	}

	return exp, diags
}

// TotalIndustryDemand returns the page's "Total Industry Unit Demand" figure
// with thousands separators removed, or "" when the label is absent. The
// label may sit in any cell of its line; the figure is the first number
// after it.
func TotalIndustryDemand(lines []string) string {
	const label = "total industry unit demand"
	for _, line := range lines {
		at := indexFold(line, label)
		if at < 0 {
			continue
		}
		if n, ok := firstNumber(line[at+len(label):]); ok {
			return n.text
		}
	}
	return ""
}
