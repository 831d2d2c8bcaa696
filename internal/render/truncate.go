package render

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

var ansiSGR = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// TruncateANSI cuts s to at most width visible columns. SGR escape
// sequences are located first and excluded from the width budget
// entirely; the remaining plain-text runs are walked grapheme cluster
// by grapheme cluster (via uniseg) so combining marks and wide runes
// are never split mid-character. If the cut lands while a color is
// still active, a reset is appended so the truncated line never bleeds
// color into whatever follows it, per spec.md §4.6.
func TruncateANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}

	var b strings.Builder
	col := 0
	colorActive := false
	pos := 0

	matches := ansiSGR.FindAllStringIndex(s, -1)
	matches = append(matches, []int{len(s), len(s)}) // sentinel: trailing text run

	for _, m := range matches {
		textEnd := m[0]
		cut, consumed, truncated := truncateText(s[pos:textEnd], width-col)
		b.WriteString(cut)
		col += consumed
		if truncated {
			break // budget exhausted inside this text run; drop the rest
		}
		if m[0] == m[1] {
			break // sentinel reached with no more escape codes
		}
		code := s[m[0]:m[1]]
		b.WriteString(code)
		colorActive = code != "\x1b[0m" && code != "\x1b[m"
		pos = m[1]
	}

	out := b.String()
	if colorActive {
		out += "\x1b[0m"
	}
	return out
}

// truncateText walks one ANSI-free text run and returns the prefix
// that fits within budget columns, the number of columns consumed, and
// whether any part of the run had to be dropped.
func truncateText(s string, budget int) (string, int, bool) {
	var b strings.Builder
	col := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := clusterWidth(g.Runes())
		if col+w > budget {
			return b.String(), col, true
		}
		b.WriteString(g.Str())
		col += w
	}
	return b.String(), col, false
}

func clusterWidth(runes []rune) int {
	w := 0
	for _, r := range runes {
		w += runewidth.RuneWidth(r)
	}
	return w
}
