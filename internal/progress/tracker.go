// Package progress tracks review totals, streaks and achievements.
package progress

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/verte-zerg/hancards/internal/model"
)

// Storage loads and saves the single progress record.
type Storage interface {
	Load(ctx context.Context) (model.UserProgress, error)
	Save(ctx context.Context, p model.UserProgress) error
}

// Tracker applies reviews to the stored progress record.
// Updates are serialized so one read-modify-write runs at a time.
type Tracker struct {
	mu      sync.Mutex
	storage Storage
	now     func() time.Time
	loc     *time.Location
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the zone used to find calendar-day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// NewTracker returns a Tracker over storage.
func NewTracker(storage Storage, opts ...Option) *Tracker {
	t := &Tracker{
		storage: storage,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get returns the stored progress.
func (t *Tracker) Get(ctx context.Context) (model.UserProgress, error) {
	p, err := t.storage.Load(ctx)
	if err != nil {
		return model.UserProgress{}, fmt.Errorf("failed to load progress: %w", err)
	}
	return normalize(p), nil
}

// Reset replaces the stored progress with the default record.
func (t *Tracker) Reset(ctx context.Context) (model.UserProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := model.NewUserProgress()
	if err := t.storage.Save(ctx, p); err != nil {
		return model.UserProgress{}, fmt.Errorf("failed to save progress: %w", err)
	}
	return p, nil
}

// Commit loads the progress record, transforms it with apply and saves it
// as one unit, returning the saved record.
type Commit func(ctx context.Context, apply func(model.UserProgress) model.UserProgress) (model.UserProgress, error)

// Update records one review of card, whose difficulty has already been
// adjusted by the caller.
func (t *Tracker) Update(ctx context.Context, card model.Flashcard) (model.UserProgress, error) {
	_, after, err := t.Record(ctx, card, func(ctx context.Context, apply func(model.UserProgress) model.UserProgress) (model.UserProgress, error) {
		p, err := t.storage.Load(ctx)
		if err != nil {
			return model.UserProgress{}, fmt.Errorf("failed to load progress: %w", err)
		}
		p = apply(p)
		if err := t.storage.Save(ctx, p); err != nil {
			return model.UserProgress{}, fmt.Errorf("failed to save progress: %w", err)
		}
		return p, nil
	})
	return after, err
}

// Record records one review of card through commit, so the caller can save
// the new progress in the same write as its own data. It returns the record
// before and after the review.
func (t *Tracker) Record(ctx context.Context, card model.Flashcard, commit Commit) (before, after model.UserProgress, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	after, err = commit(ctx, func(p model.UserProgress) model.UserProgress {
		p = normalize(p)
		before = p.Clone()
		return t.apply(p, card)
	})
	if err != nil {
		return model.UserProgress{}, model.UserProgress{}, err
	}
	return before, after, nil
}

func (t *Tracker) apply(p model.UserProgress, card model.Flashcard) model.UserProgress {
	now := t.now()

	p.TotalCardsReviewed++
	p.CardsByLevel[LevelBucket(card.Difficulty)]++

	if p.LastReviewDate == nil {
		p.StreakDays = 1
	} else {
		switch diff := DaysBetween(*p.LastReviewDate, now, t.loc); {
		case diff == 1:
			p.StreakDays++
		case diff > 1:
			p.StreakDays = 1
		}
	}
	reviewed := now
	p.LastReviewDate = &reviewed

	for _, a := range achievements {
		if a.unlocked(p, card) && !p.HasAchievement(a.name) {
			p.Achievements = append(p.Achievements, a.name)
		}
	}
	return p
}

// LevelBucket maps a difficulty to its CardsByLevel key: the floor of the
// difficulty, clamped to the level range.
func LevelBucket(difficulty float64) int {
	lvl := int(math.Floor(difficulty))
	if lvl < model.MinLevel {
		return model.MinLevel
	}
	if lvl > model.MaxLevel {
		return model.MaxLevel
	}
	return lvl
}

// DaysBetween counts calendar days from a to b in loc, after normalizing
// both to midnight. It is negative when b is on an earlier day.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	return int(civilDay(b, loc).Sub(civilDay(a, loc)).Hours() / 24)
}

// civilDay pins the local calendar date to UTC midnight so DST shifts do not
// produce 23 or 25 hour days.
func civilDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func normalize(p model.UserProgress) model.UserProgress {
	if p.CardsByLevel == nil {
		p.CardsByLevel = map[int]int{}
	}
	for lvl := model.MinLevel; lvl <= model.MaxLevel; lvl++ {
		if _, ok := p.CardsByLevel[lvl]; !ok {
			p.CardsByLevel[lvl] = 0
		}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	return p
}
