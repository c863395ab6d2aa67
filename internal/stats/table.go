package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

type column struct {
	title    string
	right    bool
	maxWidth int
}

// textTable lays out rows by terminal display width.
type textTable struct {
	cols []column
	rows [][]string
}

func newTable(titles ...string) *textTable {
	cols := make([]column, len(titles))
	for i, title := range titles {
		cols[i] = column{title: title}
	}
	return &textTable{cols: cols}
}

// alignRight right-aligns the given columns.
func (t *textTable) alignRight(idx ...int) *textTable {
	for _, i := range idx {
		if i >= 0 && i < len(t.cols) {
			t.cols[i].right = true
		}
	}
	return t
}

// limit truncates cells of column idx to width cells, marking the cut with "…".
func (t *textTable) limit(idx, width int) *textTable {
	if idx >= 0 && idx < len(t.cols) {
		t.cols[idx].maxWidth = width
	}
	return t
}

// add appends a row. Extra cells beyond the header are dropped, missing ones are blank.
func (t *textTable) add(cells ...string) {
	row := make([]string, len(t.cols))
	for i := range row {
		if i >= len(cells) {
			break
		}
		cell := cells[i]
		if limit := t.cols[i].maxWidth; limit > 0 && displayWidth(cell) > limit {
			cell = runewidth.Truncate(cell, limit, "…")
		}
		row[i] = cell
	}
	t.rows = append(t.rows, row)
}

func (t *textTable) lines() []string {
	if len(t.cols) == 0 {
		return nil
	}
	widths := make([]int, len(t.cols))
	for i, c := range t.cols {
		widths[i] = displayWidth(c.title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	header := make([]string, len(t.cols))
	for i, c := range t.cols {
		header[i] = c.title
	}
	out := make([]string, 0, len(t.rows)+1)
	out = append(out, t.render(header, widths))
	for _, row := range t.rows {
		out = append(out, t.render(row, widths))
	}
	return out
}

func (t *textTable) render(row []string, widths []int) string {
	cells := make([]string, len(row))
	for i, cell := range row {
		pad := strings.Repeat(" ", widths[i]-displayWidth(cell))
		if t.cols[i].right {
			cells[i] = pad + cell
		} else {
			cells[i] = cell + pad
		}
	}
	return strings.TrimRight(strings.Join(cells, columnGap), " ")
}

// displayWidth counts terminal cells; Hangul syllables take two.
func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
