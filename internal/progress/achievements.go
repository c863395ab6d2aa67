package progress

import "github.com/verte-zerg/hancards/internal/model"

// Achievement names, in unlock-check order.
const (
	FirstCard   = "First Card Reviewed"
	Streak3     = "3 Day Streak"
	Streak7     = "7 Day Streak"
	LevelFive   = "Reached Level 5"
	Mastered100 = "Mastered 100 Cards"
)

type achievement struct {
	name     string
	unlocked func(p model.UserProgress, card model.Flashcard) bool
}

var achievements = []achievement{
	{name: FirstCard, unlocked: func(p model.UserProgress, _ model.Flashcard) bool {
		return p.TotalCardsReviewed == 1
	}},
	{name: Streak3, unlocked: func(p model.UserProgress, _ model.Flashcard) bool {
		return p.StreakDays >= 3
	}},
	{name: Streak7, unlocked: func(p model.UserProgress, _ model.Flashcard) bool {
		return p.StreakDays >= 7
	}},
	{name: LevelFive, unlocked: func(_ model.UserProgress, card model.Flashcard) bool {
		return card.Difficulty >= 5
	}},
	{name: Mastered100, unlocked: func(p model.UserProgress, _ model.Flashcard) bool {
		return p.TotalCardsReviewed >= 100
	}},
}

// All returns every achievement name in check order.
func All() []string {
	names := make([]string, len(achievements))
	for i, a := range achievements {
		names[i] = a.name
	}
	return names
}

// Unlocked returns the names present in after but not in before.
func Unlocked(before, after model.UserProgress) []string {
	var out []string
	for _, name := range after.Achievements {
		if !before.HasAchievement(name) {
			out = append(out, name)
		}
	}
	return out
}
