// Package srs implements the difficulty-driven review scheduler.
package srs

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/hancards/internal/model"
)

// Ratings below PassRating count as hard and raise difficulty by a full
// HardStep; the rest relax it by EasyStep.
const (
	MinRating  = 1
	MaxRating  = 5
	PassRating = 3

	HardStep = 1.0
	EasyStep = 0.5

	MinDifficulty = 1.0
	MaxDifficulty = 5.0
)

const day = 24 * time.Hour

// ErrInvalidRating is returned for ratings outside [MinRating, MaxRating].
var ErrInvalidRating = errors.New("invalid rating")

// Rate applies a rating to the card and schedules its next review.
func Rate(card model.Flashcard, rating int, now time.Time) (model.Flashcard, error) {
	if rating < MinRating || rating > MaxRating {
		return card, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidRating, rating, MinRating, MaxRating)
	}
	card.Difficulty = NextDifficulty(card.Difficulty, rating)
	reviewed := now
	next := now.Add(Interval(card.Difficulty))
	card.LastReviewed = &reviewed
	card.NextReview = &next
	return card, nil
}

// NextDifficulty returns the clamped difficulty after a rating.
func NextDifficulty(difficulty float64, rating int) float64 {
	if rating < PassRating {
		return Clamp(difficulty + HardStep)
	}
	return Clamp(difficulty - EasyStep)
}

// Clamp limits a difficulty to [MinDifficulty, MaxDifficulty].
func Clamp(difficulty float64) float64 {
	return math.Max(MinDifficulty, math.Min(MaxDifficulty, difficulty))
}

// Interval is 2^(difficulty-1) days.
func Interval(difficulty float64) time.Duration {
	return time.Duration(math.Pow(2, difficulty-1) * float64(day))
}

// IsDue reports whether the card should be reviewed at now.
func IsDue(card model.Flashcard, now time.Time) bool {
	if card.NextReview == nil {
		return true
	}
	return !card.NextReview.After(now)
}
