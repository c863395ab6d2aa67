package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/hancards/internal/model"
)

const (
	barChar             = "█"
	axisSeparator       = " │ "
	colorBar            = "\x1b[36m"
	colorReset          = "\x1b[0m"
	minBarWidth         = 10
	trendWindow         = 3
	terminalWidthBackup = 80
)

// RenderActivity prints one bar per day sized to the terminal width.
func RenderActivity(w io.Writer, counts []model.DayCount) error {
	return RenderActivityWithSize(w, counts, 0, false)
}

// RenderActivityWithSize prints the activity chart within totalWidth columns.
// A totalWidth <= 0 measures the terminal.
func RenderActivityWithSize(w io.Writer, counts []model.DayCount, totalWidth int, forceColor bool) error {
	if len(counts) == 0 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	maxCount := 0
	for _, c := range counts {
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}
	countWidth := len(fmt.Sprintf("%d", maxCount))
	barWidth := BarWidthFor(totalWidth, countWidth)
	useColor := shouldUseColor(w, forceColor)

	lines := []string{fmt.Sprintf("Activity (last %s)", pluralDays(len(counts)))}
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c.Count)
		n := 0
		if maxCount > 0 {
			n = c.Count * barWidth / maxCount
		}
		if c.Count > 0 && n == 0 {
			n = 1
		}
		bar := strings.Repeat(barChar, n)
		if useColor && n > 0 {
			bar = colorBar + bar + colorReset
		}
		lines = append(lines, fmt.Sprintf("%s%s%*d %s", c.Day.Format(dayLabelLayout), axisSeparator, countWidth, c.Count, bar))
	}
	lines = append(lines, "Trend: "+Sparkline(MovingAverage(values, trendWindow)), "")
	return writeLines(w, lines)
}

const dayLabelLayout = "Mon 01-02"

// BarWidthFor computes the longest bar that fits next to the day label and count.
func BarWidthFor(totalWidth, countWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	used := displayWidth(dayLabelLayout) + displayWidth(axisSeparator) + countWidth + 1
	width := totalWidth - used
	if width < minBarWidth {
		width = minBarWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
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
