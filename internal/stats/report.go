package stats

import (
	"context"
	"io"
	"time"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/store"
)

// hardestShown is the number of rows in the hardest-words table.
const hardestShown = 10

// Report contains precomputed data for stats rendering.
type Report struct {
	Progress model.UserProgress
	States   map[string]model.CardState
	Reviews  []model.Review
	Daily    []model.DayCount
	Due      int
	Days     int
	Location *time.Location
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig, now time.Time, loc *time.Location) (Report, error) {
	if loc == nil {
		loc = time.Local
	}
	p, err := st.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	states, err := st.CardStates(ctx)
	if err != nil {
		return Report{}, err
	}
	var since time.Time
	if cfg.Days > 0 {
		local := now.In(loc)
		since = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(cfg.Days - 1))
	}
	reviews, err := st.ListReviews(ctx, since)
	if err != nil {
		return Report{}, err
	}
	due, err := st.CountDue(ctx, now)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Progress: p,
		States:   states,
		Reviews:  reviews,
		Daily:    DailyCounts(reviews, cfg.Days, now, loc),
		Due:      due,
		Days:     cfg.Days,
		Location: loc,
	}, nil
}

// RenderReport prints every section of the report.
func RenderReport(w io.Writer, r Report) error {
	if err := RenderSummary(w, r); err != nil {
		return err
	}
	if err := RenderLevels(w, r.Progress); err != nil {
		return err
	}
	if err := RenderAchievements(w, r.Progress); err != nil {
		return err
	}
	if err := RenderHardest(w, r.States, hardestShown); err != nil {
		return err
	}
	if err := RenderMostReviewed(w, r.Reviews, hardestShown); err != nil {
		return err
	}
	return RenderActivity(w, r.Daily)
}
