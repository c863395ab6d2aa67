// Package stats contains progress calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/progress"
	"github.com/verte-zerg/hancards/internal/srs"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// DailyCounts buckets reviews into the last days calendar days in loc,
// oldest first, ending with the day containing now.
func DailyCounts(reviews []model.Review, days int, now time.Time, loc *time.Location) []model.DayCount {
	if days <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	counts := make([]model.DayCount, days)
	for i := range counts {
		counts[i].Day = today.AddDate(0, 0, i-days+1)
	}
	for _, r := range reviews {
		offset := progress.DaysBetween(r.ReviewedAt, now, loc)
		if offset < 0 || offset >= days {
			continue
		}
		counts[days-1-offset].Count++
	}
	return counts
}

// PassRate is the share of reviews rated at or above the pass rating.
func PassRate(reviews []model.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	passed := 0
	for _, r := range reviews {
		if r.Rating >= srs.PassRating {
			passed++
		}
	}
	return float64(passed) / float64(len(reviews))
}

// RenderSummary prints the headline progress numbers.
func RenderSummary(w io.Writer, r Report) error {
	p := r.Progress
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	last := "never"
	if p.LastReviewDate != nil {
		last = p.LastReviewDate.In(loc).Format("2006-01-02 15:04")
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Cards reviewed: %d", p.TotalCardsReviewed),
		fmt.Sprintf("Streak: %s", pluralDays(p.StreakDays)),
		fmt.Sprintf("Last review: %s", last),
		fmt.Sprintf("Words tracked: %d", len(r.States)),
		fmt.Sprintf("Due now: %d", r.Due),
	}
	if len(r.Reviews) > 0 {
		lines = append(lines, fmt.Sprintf("Pass rate (%dd): %.2f%%", r.Days, PassRate(r.Reviews)*100))
	}
	if len(r.States) > 0 {
		var sum float64
		for _, st := range r.States {
			sum += st.Difficulty
		}
		lines = append(lines, fmt.Sprintf("Avg difficulty: %.2f", sum/float64(len(r.States))))
	}
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderLevels prints the per-level review histogram.
func RenderLevels(w io.Writer, p model.UserProgress) error {
	total := 0
	for lvl := model.MinLevel; lvl <= model.MaxLevel; lvl++ {
		total += p.CardsByLevel[lvl]
	}
	tbl := newTable("Level", "Reviews", "Share").alignRight(0, 1, 2)
	for lvl := model.MinLevel; lvl <= model.MaxLevel; lvl++ {
		count := p.CardsByLevel[lvl]
		share := 0.0
		if total > 0 {
			share = float64(count) / float64(total)
		}
		tbl.add(fmt.Sprintf("%d", lvl), fmt.Sprintf("%d", count), fmt.Sprintf("%.1f%%", share*100))
	}
	lines := append([]string{"Reviews by Level"}, tbl.lines()...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderAchievements prints every achievement and whether it is unlocked.
func RenderAchievements(w io.Writer, p model.UserProgress) error {
	lines := []string{"Achievements"}
	for _, name := range progress.All() {
		mark := "[ ]"
		if p.HasAchievement(name) {
			mark = "[x]"
		}
		lines = append(lines, mark+" "+name)
	}
	lines = append(lines, "")
	return writeLines(w, lines)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
