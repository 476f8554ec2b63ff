package courier

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Prepare folds compatibility characters (non-breaking spaces, full-width
// digits) and unifies line endings.
func Prepare(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// splitLines splits text into physical lines without trimming tabs.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = trimLine(l)
	}
	return lines
}

// trimLine drops surrounding spaces but keeps tabs, which delimit empty cells.
func trimLine(s string) string {
	return strings.Trim(s, " \r")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// splitCells splits a row on tabs and trims every cell.
func splitCells(line string) []string {
	cells := strings.Split(line, "\t")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// nonEmpty drops empty cells.
func nonEmpty(cells []string) []string {
	out := cells[:0:0]
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// numToken is a decimal number found in free text.
type numToken struct {
	text  string // digits with thousands separators removed
	start int
	end   int
}

// scanNumbers returns every decimal number in s. Commas between digit
// groups and a single decimal point are part of the number.
func scanNumbers(s string) []numToken {
	var out []numToken
	i := 0
	for i < len(s) {
		if !isDigit(s[i]) {
			i++
			continue
		}
		start := i
		var b strings.Builder
		seenDot := false
		for i < len(s) {
			c := s[i]
			switch {
			case isDigit(c):
				b.WriteByte(c)
				i++
				continue
			case c == ',' && i+1 < len(s) && isDigit(s[i+1]) && !seenDot:
				i++
				continue
			case c == '.' && !seenDot && i+1 < len(s) && isDigit(s[i+1]):
				seenDot = true
				b.WriteByte(c)
				i++
				continue
			}
			break
		}
		out = append(out, numToken{text: b.String(), start: start, end: i})
	}
	return out
}

// firstNumber returns the first number in s.
func firstNumber(s string) (numToken, bool) {
	nums := scanNumbers(s)
	if len(nums) == 0 {
		return numToken{}, false
	}
	return nums[0], true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// skipSpace advances past spaces and tabs.
func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// indexFold is a case-insensitive strings.Index for ASCII needles.
func indexFold(s, needle string) int {
	return strings.Index(toLowerASCII(s), toLowerASCII(needle))
}

// hasPrefixFold reports whether s starts with prefix, ignoring case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// isWordBoundary reports whether position i in s is not inside a word.
func isWordBoundary(s string, i int) bool {
	if i <= 0 || i >= len(s) {
		return true
	}
	r := rune(s[i-1])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// isAlphaWord reports whether w is made only of letters.
func isAlphaWord(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// normalizeLabel canonicalises a header label for alias lookup:
// "Cust. Aware-ness" and "cust awareness" compare equal.
func normalizeLabel(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '.' || r == '-' || r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}
