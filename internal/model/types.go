// Package model defines shared data structures.
package model

import "time"

// Levels are the histogram buckets of UserProgress.CardsByLevel.
const (
	MinLevel = 1
	MaxLevel = 5
)

// Flashcard is a single vocabulary card and its review schedule.
type Flashcard struct {
	ID           string     `json:"id"`
	Korean       string     `json:"korean"`
	English      string     `json:"english"`
	Example      string     `json:"example"`
	Difficulty   float64    `json:"difficulty"`
	LastReviewed *time.Time `json:"lastReviewed"`
	NextReview   *time.Time `json:"nextReview"`
}

// UserProgress is the learner's aggregate review record.
type UserProgress struct {
	TotalCardsReviewed int
	CardsByLevel       map[int]int
	StreakDays         int
	LastReviewDate     *time.Time
	Achievements       []string
}

// NewUserProgress returns the zeroed record with every level bucket present.
func NewUserProgress() UserProgress {
	levels := make(map[int]int, MaxLevel)
	for lvl := MinLevel; lvl <= MaxLevel; lvl++ {
		levels[lvl] = 0
	}
	return UserProgress{
		CardsByLevel: levels,
		Achievements: []string{},
	}
}

// Clone returns a deep copy.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.CardsByLevel = make(map[int]int, len(p.CardsByLevel))
	for k, v := range p.CardsByLevel {
		out.CardsByLevel[k] = v
	}
	out.Achievements = append([]string{}, p.Achievements...)
	if p.LastReviewDate != nil {
		t := *p.LastReviewDate
		out.LastReviewDate = &t
	}
	return out
}

// HasAchievement reports whether name is already unlocked.
func (p UserProgress) HasAchievement(name string) bool {
	for _, a := range p.Achievements {
		if a == name {
			return true
		}
	}
	return false
}

// ReviewConfig defines review session settings.
type ReviewConfig struct {
	Cards      int
	Level      int
	Contextual bool
	FocusHard  bool
	HardFactor float64
	Due        bool
}

// StatsConfig defines options for progress reporting.
type StatsConfig struct {
	Days int
}

// CardState is the persisted schedule of a word, keyed by its Korean text.
type CardState struct {
	Korean       string
	English      string
	Example      string
	Difficulty   float64
	LastReviewed *time.Time
	NextReview   *time.Time
}

// Review is one rating event.
type Review struct {
	ID               int64
	SessionID        string
	CardID           string
	Korean           string
	Rating           int
	DifficultyBefore float64
	DifficultyAfter  float64
	ReviewedAt       time.Time
	NextReview       time.Time
}

// DayCount is the number of reviews on one calendar day.
type DayCount struct {
	Day   time.Time
	Count int
}
