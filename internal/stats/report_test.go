package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/progress"
	"github.com/verte-zerg/hancards/internal/srs"
	"github.com/verte-zerg/hancards/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hancards.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	clock := now.AddDate(0, 0, -4)
	tracker := progress.NewTracker(st,
		progress.WithClock(func() time.Time { return clock }),
		progress.WithLocation(time.UTC))

	// One review per day for five days, the oldest outside a three day window.
	for i := 0; i < 5; i++ {
		card := model.Flashcard{ID: "gen-1-0", Korean: "사과", English: "apple", Difficulty: 2}
		rated, err := srs.Rate(card, 1+i%5, clock)
		if err != nil {
			t.Fatalf("rate: %v", err)
		}
		if err := st.SaveCard(ctx, rated); err != nil {
			t.Fatalf("save card: %v", err)
		}
		if _, err := st.InsertReview(ctx, model.Review{
			SessionID:        "s",
			CardID:           rated.ID,
			Korean:           rated.Korean,
			Rating:           1 + i%5,
			DifficultyBefore: card.Difficulty,
			DifficultyAfter:  rated.Difficulty,
			ReviewedAt:       clock,
			NextReview:       *rated.NextReview,
		}); err != nil {
			t.Fatalf("insert review: %v", err)
		}
		if _, err := tracker.Update(ctx, rated); err != nil {
			t.Fatalf("update progress: %v", err)
		}
		clock = clock.AddDate(0, 0, 1)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Days: 3}, now, time.UTC)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Progress.TotalCardsReviewed != 5 {
		t.Fatalf("expected 5 reviews, got %d", report.Progress.TotalCardsReviewed)
	}
	if report.Progress.StreakDays != 5 {
		t.Fatalf("expected 5 day streak, got %d", report.Progress.StreakDays)
	}
	if len(report.Reviews) != 3 {
		t.Fatalf("expected 3 reviews in window, got %d", len(report.Reviews))
	}
	if len(report.Daily) != 3 {
		t.Fatalf("expected 3 days, got %d", len(report.Daily))
	}
	for _, d := range report.Daily {
		if d.Count != 1 {
			t.Fatalf("expected one review on %s, got %d", d.Day.Format("2006-01-02"), d.Count)
		}
	}
	if len(report.States) != 1 {
		t.Fatalf("expected 1 tracked word, got %d", len(report.States))
	}

	var buf bytes.Buffer
	if err := RenderReport(&buf, report); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Cards reviewed: 5", "Streak: 5 days", "[x] 3 Day Streak", "[ ] 7 Day Streak", "Hardest Words", "Most Reviewed", "Activity (last 3 days)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}
