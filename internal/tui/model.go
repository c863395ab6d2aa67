// Package tui provides the Bubble Tea flashcard review interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/review"
)

// Rater rates one card and records the result.
type Rater interface {
	Rate(ctx context.Context, card model.Flashcard, rating int) (review.Outcome, error)
}

// Deck supplies the next batch of cards.
type Deck func(ctx context.Context) ([]model.Flashcard, error)

// Model implements the Bubble Tea review UI.
type Model struct {
	rater  Rater
	deck   Deck
	logger *slog.Logger

	width  int
	height int

	cards   []model.Flashcard
	ratings []int
	idx     int
	flipped bool
	done    bool

	progress    model.UserProgress
	hasProgress bool
	notice      string
	errMsg      string
}

var (
	koreanStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	englishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	exampleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a review TUI model and draws the first batch.
func NewModel(rater Rater, deck Deck, initial model.UserProgress, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		rater:       rater,
		deck:        deck,
		logger:      logger,
		progress:    initial,
		hasProgress: true,
	}
	m.nextBatch()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	default:
		return m, nil
	}
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "ctrl+c", "q", "esc":
		return tea.Quit
	}
	if m.done || len(m.cards) == 0 {
		if key == "n" {
			m.nextBatch()
		}
		return nil
	}
	switch key {
	case " ", "space", "enter":
		m.flipped = !m.flipped
	case "left":
		m.rate(review.SwipeLeft)
	case "right":
		m.rate(review.SwipeRight)
	case "1", "2", "3", "4", "5":
		m.rate(int(key[0] - '0'))
	}
	return nil
}

func (m *Model) rate(rating int) {
	if !m.flipped {
		return
	}
	card := m.cards[m.idx]
	out, err := m.rater.Rate(context.Background(), card, rating)
	if err != nil {
		m.logger.Error("failed to rate card", "korean", card.Korean, "err", err)
		m.errMsg = "failed to save review: " + err.Error()
		return
	}
	m.errMsg = ""
	m.cards[m.idx] = out.Card
	m.carrySchedule(out.Card)
	m.ratings = append(m.ratings, rating)
	m.progress = out.Progress
	m.hasProgress = true
	m.notice = noticeFor(out)

	m.idx++
	m.flipped = false
	if m.idx >= len(m.cards) {
		m.done = true
	}
}

// carrySchedule copies a rated card's schedule onto later copies of the same
// word, since a batch may draw a word more than once.
func (m *Model) carrySchedule(rated model.Flashcard) {
	for i := m.idx + 1; i < len(m.cards); i++ {
		if m.cards[i].Korean != rated.Korean {
			continue
		}
		m.cards[i].Difficulty = rated.Difficulty
		m.cards[i].LastReviewed = copyTime(rated.LastReviewed)
		m.cards[i].NextReview = copyTime(rated.NextReview)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func noticeFor(out review.Outcome) string {
	var parts []string
	if out.Celebrate {
		parts = append(parts, "잘했어요! Nice work.")
	}
	for _, name := range out.Unlocked {
		parts = append(parts, "Unlocked: "+name)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) nextBatch() {
	cards, err := m.deck(context.Background())
	if err != nil {
		m.logger.Error("failed to load cards", "err", err)
		m.errMsg = "failed to load cards: " + err.Error()
		cards = nil
	} else {
		m.errMsg = ""
	}
	m.cards = cards
	m.ratings = nil
	m.idx = 0
	m.flipped = false
	m.done = false
	m.notice = ""
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderBody()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderBody() string {
	var lines []string
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg), "")
	}
	switch {
	case len(m.cards) == 0:
		lines = append(lines,
			"No cards to review.",
			hintStyle.Render("n: try again · q: quit"))
	case m.done:
		lines = append(lines, m.renderSummary()...)
	default:
		lines = append(lines, m.renderCard()...)
	}
	if m.notice != "" {
		lines = append(lines, "", noticeStyle.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderCard() []string {
	card := m.cards[m.idx]
	lines := []string{koreanStyle.Render(card.Korean)}
	if card.Example != "" {
		for _, line := range wrapText(card.Example, m.contentWidth()) {
			lines = append(lines, exampleStyle.Render(line))
		}
	}
	lines = append(lines, hintStyle.Render(fmt.Sprintf("~%.1fs to say", review.SpeechDuration(card.Korean).Seconds())))
	lines = append(lines, "")
	if m.flipped {
		lines = append(lines,
			englishStyle.Render(card.English),
			"",
			hintStyle.Render("1-5: rate (1 hard · 5 easy) · ←/→: swipe"))
	} else {
		lines = append(lines, hintStyle.Render("space: flip"))
	}
	return lines
}

func (m *Model) renderSummary() []string {
	hard := 0
	sum := 0
	for _, r := range m.ratings {
		sum += r
		if r < 3 {
			hard++
		}
	}
	avg := 0.0
	if len(m.ratings) > 0 {
		avg = float64(sum) / float64(len(m.ratings))
	}
	return []string{
		koreanStyle.Render("Batch complete"),
		fmt.Sprintf("%d cards · avg rating %.1f · %d hard", len(m.ratings), avg, hard),
		"",
		hintStyle.Render("n: next batch · q: quit"),
	}
}

func (m *Model) renderFooter() string {
	var segments []string
	if len(m.cards) > 0 {
		pos := m.idx + 1
		if pos > len(m.cards) {
			pos = len(m.cards)
		}
		segments = append(segments, fmt.Sprintf("Card %d/%d", pos, len(m.cards)))
	}
	if m.hasProgress {
		segments = append(segments,
			fmt.Sprintf("Reviewed %d", m.progress.TotalCardsReviewed),
			fmt.Sprintf("Streak %d", m.progress.StreakDays),
			fmt.Sprintf("Achievements %d", len(m.progress.Achievements)))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
