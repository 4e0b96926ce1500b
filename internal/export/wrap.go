package export

import (
	"strings"

	"golang.org/x/text/width"
)

// RuneWidth returns the display columns of r: 2 for East Asian wide and
// fullwidth runes, 1 otherwise.
func RuneWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// StringWidth returns the display columns of s.
func StringWidth(s string) int {
	n := 0
	for _, r := range s {
		n += RuneWidth(r)
	}
	return n
}

// Wrap splits text into lines of at most cols display columns, breaking at
// spaces and hard-breaking words longer than a line. Empty text yields one
// empty line.
func Wrap(text string, cols int) []string {
	if cols < 1 {
		cols = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curW := 0

	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curW = 0
	}

	for _, w := range words {
		ww := StringWidth(w)
		if curW > 0 && curW+1+ww <= cols {
			cur.WriteByte(' ')
			cur.WriteString(w)
			curW += 1 + ww
			continue
		}
		if curW > 0 {
			flush()
		}
		if ww <= cols {
			cur.WriteString(w)
			curW = ww
			continue
		}
		for _, r := range w {
			rw := RuneWidth(r)
			if curW+rw > cols && curW > 0 {
				flush()
			}
			cur.WriteRune(r)
			curW += rw
		}
	}
	if curW > 0 {
		flush()
	}
	return lines
}
