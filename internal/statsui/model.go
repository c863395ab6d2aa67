// Package statsui provides the Bubble Tea progress viewer.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/progress"
	"github.com/verte-zerg/hancards/internal/srs"
	"github.com/verte-zerg/hancards/internal/stats"
)

const (
	tabOverview = iota
	tabWords
	tabActivity
)

var tabNames = []string{"Overview", "Words", "Activity"}

// dayWindows are the activity windows cycled with -/=.
var dayWindows = []int{7, 14, 30, 90}

var (
	blue  = lipgloss.Color("#3B7DD8")
	red   = lipgloss.Color("#CD2E3A")
	ink   = lipgloss.Color("#EDEDED")
	muted = lipgloss.Color("#7A7A7A")
	rule  = lipgloss.Color("#3A3A3A")

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(muted).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(rule)
	activeTabStyle = tabStyle.
			Foreground(ink).
			Bold(true).
			BorderForeground(blue)
	subtleStyle = lipgloss.NewStyle().Foreground(muted)
	errorStyle  = lipgloss.NewStyle().Foreground(red).Bold(true)
	tileStyle   = lipgloss.NewStyle().
			Width(16).
			Padding(0, 1).
			MarginRight(1).
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(blue)
	tileLabelStyle = lipgloss.NewStyle().Foreground(muted)
	tileValueStyle = lipgloss.NewStyle().Foreground(ink).Bold(true)
	unlockedStyle  = lipgloss.NewStyle().Foreground(blue)
	lockedStyle    = lipgloss.NewStyle().Foreground(muted)
)

// Loader builds a report for the given settings.
type Loader func(ctx context.Context, cfg model.StatsConfig, now time.Time) (stats.Report, error)

// Model is the tabbed progress viewer.
type Model struct {
	load Loader
	cfg  model.StatsConfig
	now  func() time.Time

	report stats.Report
	err    error

	keys  keyMap
	help  help.Model
	tab   int
	pages []viewport.Model
	words table.Model

	width  int
	height int
}

// NewModel constructs the viewer and loads the first report.
func NewModel(load Loader, cfg model.StatsConfig) *Model {
	m := &Model{
		load:  load,
		cfg:   cfg,
		now:   time.Now,
		keys:  defaultKeyMap(),
		help:  help.New(),
		pages: make([]viewport.Model, len(tabNames)),
		words: table.New(table.WithColumns(wordColumns()), table.WithStyles(wordTableStyles())),
	}
	for i := range m.pages {
		m.pages[i] = viewport.New(0, 0)
	}
	m.reload()
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
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		m.fillPages()
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Prev):
		m.switchTab(-1)
		return tea.ClearScreen
	case key.Matches(msg, m.keys.Next):
		m.switchTab(1)
		return tea.ClearScreen
	case key.Matches(msg, m.keys.Reload):
		m.reload()
	case key.Matches(msg, m.keys.Wider):
		m.cfg.Days = nextWindow(m.cfg.Days)
		m.reload()
	case key.Matches(msg, m.keys.Narrower):
		m.cfg.Days = prevWindow(m.cfg.Days)
		m.reload()
	case key.Matches(msg, m.keys.Top):
		if m.tab == tabWords {
			m.words.GotoTop()
		} else {
			m.pages[m.tab].GotoTop()
		}
	case key.Matches(msg, m.keys.Bottom):
		if m.tab == tabWords {
			m.words.GotoBottom()
		} else {
			m.pages[m.tab].GotoBottom()
		}
	default:
		var cmd tea.Cmd
		if m.tab == tabWords {
			m.words, cmd = m.words.Update(msg)
		} else {
			m.pages[m.tab], cmd = m.pages[m.tab].Update(msg)
		}
		return cmd
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header, footer := m.renderHeader(), m.renderFooter()
	body := frame(m.renderBody(), m.width, m.bodyHeight(header, footer))
	return lipgloss.JoinVertical(lipgloss.Left, frame(header, m.width, lipgloss.Height(header)), body, footer)
}

func (m *Model) bodyHeight(header, footer string) int {
	return max(1, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.bodyHeight(m.renderHeader(), m.renderFooter())
	for i := range m.pages {
		m.pages[i].Width = m.width
		m.pages[i].Height = h
	}
	m.words.SetWidth(m.width)
	m.words.SetHeight(max(1, h-1))
}

func (m *Model) switchTab(delta int) {
	n := len(tabNames)
	m.tab = (m.tab + delta + n) % n
	if m.tab == tabWords {
		m.words.Focus()
	} else {
		m.words.Blur()
	}
}

func (m *Model) renderHeader() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		style := tabStyle
		if i == m.tab {
			style = activeTabStyle
		}
		tabs[i] = style.Render(name)
	}
	line := fmt.Sprintf("last %d days · %d due now", m.cfg.Days, m.report.Due)
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...) + "\n" + subtleStyle.Render(clip(line, m.width))
}

func (m *Model) renderFooter() string {
	footer := m.help.View(m.keys)
	if m.err != nil {
		footer = errorStyle.Render(clip(m.err.Error(), m.width)) + "\n" + footer
	}
	return footer
}

func (m *Model) renderBody() string {
	if m.tab != tabWords {
		return m.pages[m.tab].View()
	}
	if len(m.report.States) == 0 {
		return subtleStyle.Render("No reviewed words yet.")
	}
	return m.words.View()
}

// reload fetches a fresh report; on failure the last good one is kept off screen.
func (m *Model) reload() {
	report, err := m.load(context.Background(), m.cfg, m.now())
	m.err = err
	if err != nil {
		for i := range m.pages {
			m.pages[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.report = report
	m.words.SetRows(wordRows(report.States, m.now()))
	m.fillPages()
}

func (m *Model) fillPages() {
	if m.err != nil {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.pages[tabOverview].SetContent(renderOverview(m.report, width))
	m.pages[tabActivity].SetContent(renderActivity(m.report, width))
}

func renderOverview(r stats.Report, width int) string {
	p := r.Progress
	tiles := []string{
		tile("Reviewed", fmt.Sprintf("%d", p.TotalCardsReviewed)),
		tile("Streak", fmt.Sprintf("%d days", p.StreakDays)),
		tile("Words", fmt.Sprintf("%d", len(r.States))),
		tile("Due", fmt.Sprintf("%d", r.Due)),
		tile("Pass rate", fmt.Sprintf("%.1f%%", stats.PassRate(r.Reviews)*100)),
	}
	perRow := max(1, width/lipgloss.Width(tiles[0]))
	var rows []string
	for start := 0; start < len(tiles); start += perRow {
		end := min(start+perRow, len(tiles))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles[start:end]...))
	}

	lines := []string{"Achievements"}
	for _, name := range progress.All() {
		if p.HasAchievement(name) {
			lines = append(lines, unlockedStyle.Render("★ "+name))
		} else {
			lines = append(lines, lockedStyle.Render("· "+name))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n\n" + strings.Join(lines, "\n")
}

func renderActivity(r stats.Report, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderLevels(&buf, r.Progress); err != nil {
		return fmt.Sprintf("Failed to render levels: %v", err)
	}
	if err := stats.RenderActivityWithSize(&buf, r.Daily, width, true); err != nil {
		return fmt.Sprintf("Failed to render activity: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func tile(label, value string) string {
	return tileStyle.Render(tileLabelStyle.Render(label) + "\n" + tileValueStyle.Render(value))
}

func wordColumns() []table.Column {
	return []table.Column{
		{Title: "Korean", Width: 12},
		{Title: "English", Width: 18},
		{Title: "Difficulty", Width: 10},
		{Title: "Next Review", Width: 16},
		{Title: "Due", Width: 4},
	}
}

// wordRows lists stored words, hardest first.
func wordRows(states map[string]model.CardState, now time.Time) []table.Row {
	list := make([]model.CardState, 0, len(states))
	for _, st := range states {
		list = append(list, st)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Difficulty == list[j].Difficulty {
			return list[i].Korean < list[j].Korean
		}
		return list[i].Difficulty > list[j].Difficulty
	})
	rows := make([]table.Row, 0, len(list))
	for _, st := range list {
		next := "-"
		if st.NextReview != nil {
			next = st.NextReview.Local().Format("2006-01-02 15:04")
		}
		due := ""
		if srs.IsDue(model.Flashcard{NextReview: st.NextReview}, now) {
			due = "yes"
		}
		rows = append(rows, table.Row{st.Korean, st.English, fmt.Sprintf("%.1f", st.Difficulty), next, due})
	}
	return rows
}

func wordTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = lipgloss.NewStyle().
		Foreground(muted).
		Bold(true).
		PaddingRight(1).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(rule)
	styles.Cell = lipgloss.NewStyle().PaddingRight(1)
	styles.Selected = lipgloss.NewStyle().Foreground(ink).Background(blue)
	return styles
}

func nextWindow(n int) int {
	for _, w := range dayWindows {
		if w > n {
			return w
		}
	}
	return dayWindows[len(dayWindows)-1]
}

func prevWindow(n int) int {
	for i := len(dayWindows) - 1; i >= 0; i-- {
		if dayWindows[i] < n {
			return dayWindows[i]
		}
	}
	return dayWindows[0]
}
