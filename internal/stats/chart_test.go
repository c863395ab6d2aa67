package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/hancards/internal/model"
)

func TestRenderActivityWithSize(t *testing.T) {
	day := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	counts := []model.DayCount{
		{Day: day, Count: 4},
		{Day: day.AddDate(0, 0, 1), Count: 0},
		{Day: day.AddDate(0, 0, 2), Count: 2},
	}
	var buf bytes.Buffer
	if err := RenderActivityWithSize(&buf, counts, 40, false); err != nil {
		t.Fatalf("render activity: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Activity (last 3 days)" {
		t.Fatalf("unexpected title: %q", lines[0])
	}
	barWidth := BarWidthFor(40, 1)
	if got := strings.Count(lines[1], barChar); got != barWidth {
		t.Fatalf("expected full bar of %d, got %d", barWidth, got)
	}
	if got := strings.Count(lines[2], barChar); got != 0 {
		t.Fatalf("expected empty bar, got %d", got)
	}
	if got := strings.Count(lines[3], barChar); got != barWidth/2 {
		t.Fatalf("expected half bar of %d, got %d", barWidth/2, got)
	}
	if !strings.HasPrefix(lines[1], "Mon 02-05") {
		t.Fatalf("unexpected label: %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "Trend: ") {
		t.Fatalf("expected trend line, got %q", lines[4])
	}
}

func TestBarWidthFor(t *testing.T) {
	used := displayWidth(dayLabelLayout) + displayWidth(axisSeparator) + 2 + 1
	if got := BarWidthFor(80, 2); got != 80-used {
		t.Fatalf("expected width %d, got %d", 80-used, got)
	}
	if got := BarWidthFor(0, 2); got != minBarWidth {
		t.Fatalf("expected min width %d, got %d", minBarWidth, got)
	}
	if got := BarWidthFor(12, 2); got != minBarWidth {
		t.Fatalf("expected min width %d, got %d", minBarWidth, got)
	}
}
