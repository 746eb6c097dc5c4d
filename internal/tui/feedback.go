package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s     string
	width int
}

// buildStyledRunes marks each expected rune by whether the typed answer
// matched it at the same position.
func buildStyledRunes(expected, typed []rune) []styledRune {
	out := make([]styledRune, 0, len(expected))
	for i, r := range expected {
		style := incorrectStyle
		switch {
		case i >= len(typed):
			style = pendingStyle
		case typed[i] == r:
			style = correctStyle
		}
		out = append(out, styledRune{
			s:     style.Render(string(r)),
			width: runewidth.RuneWidth(r),
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes hard-wraps runes at width display cells. Stimuli contain
// no spaces, so there are no word boundaries to honor.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	lineWidth := 0
	for _, item := range runes {
		if lineWidth+item.width > width && lineWidth > 0 {
			out.WriteRune('\n')
			lineWidth = 0
		}
		out.WriteString(item.s)
		lineWidth += item.width
	}
	return out.String()
}
