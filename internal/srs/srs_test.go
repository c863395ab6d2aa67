package srs

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/hancards/internal/model"
)

func TestRateHardRaisesDifficulty(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, start := range []float64{1, 1.5, 2, 3.5, 4, 4.5, 5} {
		for rating := MinRating; rating < PassRating; rating++ {
			card, err := Rate(model.Flashcard{Difficulty: start}, rating, now)
			require.NoError(t, err)
			assert.Equal(t, math.Min(5, start+1), card.Difficulty, "start=%v rating=%d", start, rating)
		}
	}
}

func TestRateEasyRelaxesDifficulty(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, start := range []float64{1, 1.5, 2, 3.5, 5} {
		for rating := PassRating; rating <= MaxRating; rating++ {
			card, err := Rate(model.Flashcard{Difficulty: start}, rating, now)
			require.NoError(t, err)
			assert.Equal(t, math.Max(1, start-0.5), card.Difficulty, "start=%v rating=%d", start, rating)
		}
	}
}

func TestRateSchedulesExponentialInterval(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		start  float64
		rating int
		want   time.Duration
	}{
		{name: "hard from 1", start: 1, rating: 1, want: 2 * day},
		{name: "hard from 3", start: 3, rating: 2, want: 8 * day},
		{name: "hard at cap", start: 5, rating: 1, want: 16 * day},
		{name: "easy at floor", start: 1, rating: 5, want: day},
		{name: "easy from 3", start: 3, rating: 4, want: time.Duration(math.Pow(2, 1.5) * float64(day))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := Rate(model.Flashcard{Difficulty: tt.start}, tt.rating, now)
			require.NoError(t, err)
			require.NotNil(t, card.LastReviewed)
			require.NotNil(t, card.NextReview)
			assert.True(t, card.LastReviewed.Equal(now))
			assert.Equal(t, tt.want, card.NextReview.Sub(*card.LastReviewed))
			assert.Equal(t, Interval(card.Difficulty), card.NextReview.Sub(*card.LastReviewed))
		})
	}
}

func TestRateRejectsOutOfRange(t *testing.T) {
	card := model.Flashcard{ID: "x", Difficulty: 2}
	for _, rating := range []int{0, -1, 6} {
		got, err := Rate(card, rating, time.Now())
		require.ErrorIs(t, err, ErrInvalidRating)
		assert.Equal(t, card, got)
	}
}

func TestIsDue(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.True(t, IsDue(model.Flashcard{}, now))

	past := now.Add(-time.Minute)
	assert.True(t, IsDue(model.Flashcard{NextReview: &past}, now))
	assert.True(t, IsDue(model.Flashcard{NextReview: &now}, now))

	future := now.Add(time.Hour)
	assert.False(t, IsDue(model.Flashcard{NextReview: &future}, now))
}
