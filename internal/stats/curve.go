package stats

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	minCurveWidth       = 10
	curveLabelWidth     = 24
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
)

var colorPalette = []string{
	"\x1b[36m",
	"\x1b[35m",
	"\x1b[33m",
	"\x1b[32m",
	"\x1b[34m",
}

// CurveWidthFor computes a sparkline width that fits within the total
// available width. Zero means the current terminal width.
func CurveWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	return max(totalWidth-curveLabelWidth, minCurveWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether ANSI colors should be written to w.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func paint(s, color string, useColor bool) string {
	if !useColor || s == "" {
		return s
	}
	return color + s + colorReset
}
