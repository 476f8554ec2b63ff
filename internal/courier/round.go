package courier

// ExtractRound finds the first "Round: <digits>" marker in text.
func ExtractRound(text string) (int, bool) {
	const label = "round"
	lower := toLowerASCII(text)
	for from := 0; from < len(lower); {
		idx := indexAt(lower, label, from)
		if idx < 0 {
			return 0, false
		}
		from = idx + len(label)
		if !isWordBoundary(text, idx) {
			continue
		}
		i := skipSpace(text, idx+len(label))
		if i >= len(text) || text[i] != ':' {
			continue
		}
		i = skipSpace(text, i+1)
		n, end := 0, i
		for end < len(text) && isDigit(text[end]) {
			n = n*10 + int(text[end]-'0')
			end++
		}
		if end == i {
			continue
		}
		return n, true
	}
	return 0, false
}

func indexAt(s, needle string, from int) int {
	if from >= len(s) {
		return -1
	}
	for i := from; i+len(needle) <= len(s); i++ {
		if s[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// toLowerASCII lowercases ASCII letters only so byte offsets stay aligned
// with the original string.
func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
