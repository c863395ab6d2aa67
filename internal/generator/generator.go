// Package generator builds flashcard batches from the vocabulary table.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/vocab"
)

// Generator produces randomized flashcard batches.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano())), now: time.Now}
}

// NewWithSource returns a Generator with a fixed random source and clock.
func NewWithSource(src rand.Source, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rnd: rand.New(src), now: now}
}

// Options controls how example sentences are built.
type Options struct {
	Contextual bool
}

// Generate draws count cards uniformly, with replacement, from entries at or
// below level. It returns an empty batch when nothing qualifies.
func (g *Generator) Generate(entries []vocab.Entry, count, level int, opts Options) []model.Flashcard {
	pool := vocab.FilterByLevel(entries, level)
	if len(pool) == 0 || count <= 0 {
		return []model.Flashcard{}
	}
	stamp := g.now().UnixMilli()
	cards := make([]model.Flashcard, 0, count)
	for i := 0; i < count; i++ {
		entry := pool[g.rnd.Intn(len(pool))]
		cards = append(cards, g.card(entry, stamp, i, opts))
	}
	return cards
}

// GenerateWeighted draws words with a bias toward high stored difficulty.
// difficulties is keyed by Korean text; missing words use their level.
func (g *Generator) GenerateWeighted(entries []vocab.Entry, count, level int, difficulties map[string]float64, factor float64, opts Options) []model.Flashcard {
	pool := vocab.FilterByLevel(entries, level)
	if len(pool) == 0 || count <= 0 {
		return []model.Flashcard{}
	}
	weights := make([]float64, len(pool))
	total := 0.0
	for i, entry := range pool {
		d, ok := difficulties[entry.Korean]
		if !ok {
			d = float64(entry.Level)
		}
		w := 1.0 + (d-1)*factor
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return g.Generate(entries, count, level, opts)
	}

	stamp := g.now().UnixMilli()
	cards := make([]model.Flashcard, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := len(pool) - 1
		for j, w := range weights {
			acc += w
			if r < acc {
				idx = j
				break
			}
		}
		cards = append(cards, g.card(pool[idx], stamp, i, opts))
	}
	return cards
}

func (g *Generator) card(entry vocab.Entry, stamp int64, i int, opts Options) model.Flashcard {
	example := ExampleSentence(entry)
	if opts.Contextual {
		example = g.ContextualExample(entry)
	}
	return model.Flashcard{
		ID:         fmt.Sprintf("gen-%d-%d", stamp, i),
		Korean:     entry.Korean,
		English:    entry.English,
		Example:    example,
		Difficulty: float64(entry.Level),
	}
}

// ExampleSentence returns the basic template for the entry's part of speech,
// or "" when the part of speech has none.
func ExampleSentence(entry vocab.Entry) string {
	switch entry.POS {
	case vocab.Noun:
		return entry.Korean + "이/가 있습니다."
	case vocab.Verb:
		return "저는 " + entry.Korean + "아요/어요."
	case vocab.Adjective:
		return "이것은 " + entry.Korean + "아요/어요."
	default:
		return ""
	}
}

var contextual = map[vocab.POS][]string{
	vocab.Noun: {
		"이 {w} 매우 맛있어요.",
		"{w} 어디에서 샀어요?",
		"저 {w} 좋아해요.",
	},
	vocab.Verb: {
		"저는 매일 {w}아요/어요.",
		"내일 {w}을/를 계획이에요.",
		"어제 {w}았어/었어요.",
	},
	vocab.Adjective: {
		"이것은 정말 {w}아요/어요.",
		"저는 {w}아/어 보여요.",
		"그 {w} 것 같아요.",
	},
}

// ContextualExample picks one of the richer templates for the entry's part of
// speech. Unknown parts of speech use the noun templates.
func (g *Generator) ContextualExample(entry vocab.Entry) string {
	options, ok := contextual[entry.POS]
	if !ok {
		options = contextual[vocab.Noun]
	}
	tmpl := options[g.rnd.Intn(len(options))]
	return strings.ReplaceAll(tmpl, "{w}", entry.Korean)
}

// Merge overlays stored state onto freshly generated cards so a word keeps
// its difficulty and schedule across batches.
func Merge(cards []model.Flashcard, states map[string]model.CardState) []model.Flashcard {
	out := make([]model.Flashcard, len(cards))
	for i, card := range cards {
		if st, ok := states[card.Korean]; ok {
			card.Difficulty = st.Difficulty
			card.LastReviewed = copyTime(st.LastReviewed)
			card.NextReview = copyTime(st.NextReview)
		}
		out[i] = card
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
