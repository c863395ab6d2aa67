package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/vocab"
)

// WordCount is the number of reviews of one word.
type WordCount struct {
	Korean string
	Count  int
}

// HardestWords returns the n stored words with the highest difficulty.
func HardestWords(states map[string]model.CardState, n int) []model.CardState {
	if n <= 0 || len(states) == 0 {
		return nil
	}
	candidates := make([]model.CardState, 0, len(states))
	for _, st := range states {
		candidates = append(candidates, st)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Difficulty == candidates[j].Difficulty {
			return candidates[i].Korean < candidates[j].Korean
		}
		return candidates[i].Difficulty > candidates[j].Difficulty
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

// MostReviewed returns the n words with the most reviews.
func MostReviewed(reviews []model.Review, n int) []WordCount {
	if n <= 0 || len(reviews) == 0 {
		return nil
	}
	totals := map[string]int{}
	for _, r := range reviews {
		totals[r.Korean]++
	}
	items := make([]WordCount, 0, len(totals))
	for k, c := range totals {
		items = append(items, WordCount{Korean: k, Count: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Korean < items[j].Korean
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// RenderHardest prints the hardest stored words.
func RenderHardest(w io.Writer, states map[string]model.CardState, n int) error {
	hardest := HardestWords(states, n)
	if len(hardest) == 0 {
		_, err := fmt.Fprintln(w, "No reviewed words yet.")
		return err
	}
	tbl := newTable("Korean", "English", "Difficulty", "Next Review").alignRight(2)
	for _, st := range hardest {
		next := "-"
		if st.NextReview != nil {
			next = st.NextReview.Local().Format("2006-01-02 15:04")
		}
		tbl.add(st.Korean, st.English, fmt.Sprintf("%.1f", st.Difficulty), next)
	}
	lines := append([]string{"Hardest Words"}, tbl.lines()...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderMostReviewed prints the words reviewed most often.
func RenderMostReviewed(w io.Writer, reviews []model.Review, n int) error {
	top := MostReviewed(reviews, n)
	if len(top) == 0 {
		return nil
	}
	tbl := newTable("Korean", "Reviews").alignRight(1)
	for _, wc := range top {
		tbl.add(wc.Korean, fmt.Sprintf("%d", wc.Count))
	}
	lines := append([]string{"Most Reviewed"}, tbl.lines()...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// exampleWidth caps the example column of RenderCards.
const exampleWidth = 48

// RenderCards prints a generated batch.
func RenderCards(w io.Writer, cards []model.Flashcard) error {
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, "No cards generated.")
		return err
	}
	tbl := newTable("ID", "Korean", "English", "Difficulty", "Example").
		alignRight(3).
		limit(4, exampleWidth)
	for _, c := range cards {
		tbl.add(c.ID, c.Korean, c.English, fmt.Sprintf("%.1f", c.Difficulty), c.Example)
	}
	return writeLines(w, tbl.lines())
}

// RenderVocab prints vocabulary entries.
func RenderVocab(w io.Writer, entries []vocab.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No words found.")
		return err
	}
	tbl := newTable("Korean", "English", "POS", "Level").alignRight(3)
	for _, e := range entries {
		tbl.add(e.Korean, e.English, string(e.POS), fmt.Sprintf("%d", e.Level))
	}
	return writeLines(w, tbl.lines())
}
