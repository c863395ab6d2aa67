package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/progress"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{2, 2, 2}); got != "+++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
}

func TestDailyCounts(t *testing.T) {
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)
	reviews := []model.Review{
		{ReviewedAt: time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)},
		{ReviewedAt: time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)},
		{ReviewedAt: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)},
		{ReviewedAt: time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC)},
	}
	counts := DailyCounts(reviews, 3, now, time.UTC)
	if len(counts) != 3 {
		t.Fatalf("expected 3 days, got %d", len(counts))
	}
	want := []int{1, 0, 2}
	for i, c := range counts {
		if c.Count != want[i] {
			t.Fatalf("day %d: expected %d, got %d", i, want[i], c.Count)
		}
	}
	if !counts[0].Day.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first day: %v", counts[0].Day)
	}
	if DailyCounts(reviews, 0, now, time.UTC) != nil {
		t.Fatalf("expected nil for empty window")
	}
}

func TestPassRate(t *testing.T) {
	reviews := []model.Review{{Rating: 1}, {Rating: 3}, {Rating: 5}, {Rating: 2}}
	if got := PassRate(reviews); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := PassRate(nil); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestRenderLevels(t *testing.T) {
	p := model.NewUserProgress()
	p.CardsByLevel[1] = 3
	p.CardsByLevel[5] = 1
	var buf bytes.Buffer
	if err := RenderLevels(&buf, p); err != nil {
		t.Fatalf("render levels: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "75.0%") || !strings.Contains(out, "25.0%") {
		t.Fatalf("unexpected levels output:\n%s", out)
	}
}

func TestRenderAchievements(t *testing.T) {
	p := model.NewUserProgress()
	p.Achievements = []string{progress.FirstCard}
	var buf bytes.Buffer
	if err := RenderAchievements(&buf, p); err != nil {
		t.Fatalf("render achievements: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[x] "+progress.FirstCard) {
		t.Fatalf("expected unlocked mark:\n%s", out)
	}
	if !strings.Contains(out, "[ ] "+progress.Mastered100) {
		t.Fatalf("expected locked mark:\n%s", out)
	}
}

func TestRenderSummaryNeverReviewed(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Report{Progress: model.NewUserProgress()}); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(buf.String(), "Last review: never") {
		t.Fatalf("unexpected summary:\n%s", buf.String())
	}
}
