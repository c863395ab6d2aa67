// Package vocab provides the leveled Korean vocabulary table.
package vocab

import (
	"sort"
	"strings"
)

// POS is a part of speech.
type POS string

// Parts of speech with example-sentence templates.
const (
	Noun      POS = "noun"
	Verb      POS = "verb"
	Adjective POS = "adjective"
)

// ParsePOS normalizes a part-of-speech label. Unknown labels are kept as-is.
func ParsePOS(s string) POS {
	return POS(strings.ToLower(strings.TrimSpace(s)))
}

// Entry is one vocabulary word.
type Entry struct {
	Korean  string
	English string
	POS     POS
	Level   int
}

var builtin = []Entry{
	{Korean: "사과", English: "apple", POS: Noun, Level: 1},
	{Korean: "학교", English: "school", POS: Noun, Level: 1},
	{Korean: "가다", English: "to go", POS: Verb, Level: 1},
	{Korean: "먹다", English: "to eat", POS: Verb, Level: 1},
	{Korean: "크다", English: "to be big", POS: Adjective, Level: 2},
	{Korean: "작다", English: "to be small", POS: Adjective, Level: 2},
	{Korean: "비행기", English: "airplane", POS: Noun, Level: 2},
	{Korean: "여행", English: "travel", POS: Noun, Level: 3},
	{Korean: "경험", English: "experience", POS: Noun, Level: 3},
	{Korean: "발전", English: "development", POS: Noun, Level: 4},
}

// Builtin returns a copy of the bundled vocabulary.
func Builtin() []Entry {
	return append([]Entry(nil), builtin...)
}

// FilterByLevel keeps entries at or below level.
func FilterByLevel(entries []Entry, level int) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Level <= level {
			out = append(out, e)
		}
	}
	return out
}

// Levels returns the distinct levels present, ascending.
func Levels(entries []Entry) []int {
	seen := map[int]struct{}{}
	for _, e := range entries {
		seen[e.Level] = struct{}{}
	}
	levels := make([]int, 0, len(seen))
	for lvl := range seen {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)
	return levels
}
