// Package review ties card rating, persistence and progress tracking into a
// single review session.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/progress"
	"github.com/verte-zerg/hancards/internal/srs"
)

// Swipe gestures map onto ratings.
const (
	SwipeRight = 4
	SwipeLeft  = 2
)

// CelebrateRating is the lowest rating that earns a celebration.
const CelebrateRating = 4

// secondsPerRune is the spoken-duration estimate used when no audio exists.
const secondsPerRune = 0.1

// CardStore persists card state and the review log.
type CardStore interface {
	// RecordReview saves card, r and the progress produced by apply atomically.
	RecordReview(ctx context.Context, card model.Flashcard, r model.Review, apply func(model.UserProgress) model.UserProgress) (model.UserProgress, error)
	DueCards(ctx context.Context, now time.Time, limit int) ([]model.Flashcard, error)
}

// Outcome is the result of rating one card.
type Outcome struct {
	Card      model.Flashcard
	Progress  model.UserProgress
	Unlocked  []string
	Celebrate bool
}

// Reviewer runs one review session.
type Reviewer struct {
	sessionID string
	cards     CardStore
	tracker   *progress.Tracker
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Reviewer.
type Option func(*Reviewer)

// WithClock overrides time.Now. Pass the same clock to the tracker.
func WithClock(now func() time.Time) Option {
	return func(r *Reviewer) { r.now = now }
}

// WithLogger sets the logger; the default logger is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reviewer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns a Reviewer with a fresh session ID.
func New(cards CardStore, tracker *progress.Tracker, opts ...Option) *Reviewer {
	r := &Reviewer{
		sessionID: uuid.NewString(),
		cards:     cards,
		tracker:   tracker,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID identifies this session's entries in the review log.
func (r *Reviewer) SessionID() string {
	return r.sessionID
}

// Rate applies rating to card and stores the new schedule, a log entry and
// the updated progress together. On error nothing is stored.
func (r *Reviewer) Rate(ctx context.Context, card model.Flashcard, rating int) (Outcome, error) {
	now := r.now()
	rated, err := srs.Rate(card, rating, now)
	if err != nil {
		return Outcome{}, err
	}

	entry := model.Review{
		SessionID:        r.sessionID,
		CardID:           rated.ID,
		Korean:           rated.Korean,
		Rating:           rating,
		DifficultyBefore: card.Difficulty,
		DifficultyAfter:  rated.Difficulty,
		ReviewedAt:       now,
		NextReview:       *rated.NextReview,
	}
	before, after, err := r.tracker.Record(ctx, rated, func(ctx context.Context, apply func(model.UserProgress) model.UserProgress) (model.UserProgress, error) {
		return r.cards.RecordReview(ctx, rated, entry, apply)
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to record review: %w", err)
	}

	unlocked := progress.Unlocked(before, after)
	r.logger.Debug("card rated",
		"session", r.sessionID,
		"korean", rated.Korean,
		"rating", rating,
		"difficulty", rated.Difficulty,
		"next_review", rated.NextReview.Format(time.RFC3339))
	for _, name := range unlocked {
		r.logger.Info("achievement unlocked", "name", name)
	}
	return Outcome{
		Card:      rated,
		Progress:  after,
		Unlocked:  unlocked,
		Celebrate: rating >= CelebrateRating,
	}, nil
}

// DueCards lists stored cards due now, at most limit when limit > 0.
func (r *Reviewer) DueCards(ctx context.Context, limit int) ([]model.Flashcard, error) {
	cards, err := r.cards.DueCards(ctx, r.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load due cards: %w", err)
	}
	return cards, nil
}

// SpeechDuration estimates how long text takes to say aloud.
func SpeechDuration(text string) time.Duration {
	n := utf8.RuneCountInString(text)
	return time.Duration(float64(n) * secondsPerRune * float64(time.Second))
}
