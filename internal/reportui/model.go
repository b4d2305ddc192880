// Package reportui provides the Bubble Tea report browser.
package reportui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/zbalance/internal/balance"
	"github.com/verte-zerg/zbalance/internal/model"
	"github.com/verte-zerg/zbalance/internal/report"
)

const (
	tabOverview = iota
	tabWaves
	tabDetails
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	problemCardStyle = cardStyle.BorderForeground(lipgloss.Color("#FF4D4F"))
	cardTitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

type waveRef struct {
	chapter int
	wave    int
}

// Model implements the Bubble Tea report browser.
type Model struct {
	chapters []balance.ChapterResult
	summary  balance.Summary
	cfg      model.Config

	waves    []waveRef
	selected int

	tabs      []string
	activeTab int
	viewports []viewport.Model
	waveTable table.Model

	width  int
	height int
}

// NewModel constructs a report browser over analyzed chapters.
func NewModel(chapters []balance.ChapterResult, cfg model.Config) *Model {
	m := &Model{
		chapters: chapters,
		summary:  balance.Summarize(chapters, cfg.BulletThreshold),
		cfg:      cfg,
		tabs:     []string{"Overview", "Waves", "Details"},
	}
	for ci, ch := range chapters {
		for wi := range ch.Waves {
			m.waves = append(m.waves, waveRef{chapter: ci, wave: wi})
		}
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.waveTable = buildWaveTable(m.chapters, m.waves)
	m.renderTabContents()
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
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "enter":
			if m.activeTab == tabWaves {
				m.selectWave(m.waveTable.Cursor())
				m.activeTab = tabDetails
				m.waveTable.Blur()
				return m, tea.ClearScreen
			}
			return m, nil
		case "n":
			if m.activeTab == tabDetails {
				m.selectWave(m.selected + 1)
			}
			return m, nil
		case "p":
			if m.activeTab == tabDetails {
				m.selectWave(m.selected - 1)
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabWaves {
				m.waveTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabWaves {
				m.waveTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabWaves {
				var cmd tea.Cmd
				m.waveTable, cmd = m.waveTable.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderHelp(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.waveTable.SetWidth(m.width)
	m.waveTable.SetHeight(max(bodyHeight-1, 1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabWaves {
		m.waveTable.Focus()
	} else {
		m.waveTable.Blur()
	}
}

func (m *Model) selectWave(idx int) {
	if len(m.waves) == 0 {
		return
	}
	m.selected = min(max(idx, 0), len(m.waves)-1)
	m.viewports[tabDetails].SetContent(m.renderDetails())
	m.viewports[tabDetails].GotoTop()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	threshold := m.summary.BulletThreshold
	info := fmt.Sprintf("Game dir: %s  chapters=%d  waves=%d  bullet threshold=%.1fx",
		m.cfg.GameDir, len(m.chapters), m.summary.Waves, threshold)
	return padLines(m.renderTabs(), m.width) + "\n" + headerStyle.Render(truncateLine(info, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	switch m.activeTab {
	case tabWaves:
		help = "Nav: left/right  Select: up/down  Details: enter  Quit: q"
	case tabDetails:
		help = "Nav: left/right  Scroll: up/down  Next/prev wave: n/p  Quit: q"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderBody() string {
	if len(m.waves) == 0 {
		return "No waves found."
	}
	if m.activeTab == tabWaves {
		return tableMutedStyle.Render(m.waveTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabDetails].SetContent(m.renderDetails())
}

func (m *Model) renderOverview(width int) string {
	if len(m.waves) == 0 {
		return "No waves found."
	}
	s := m.summary
	cards := []string{
		metricCard("Waves", strconv.Itoa(s.Waves), false),
		metricCard("DPS problems", strconv.Itoa(len(s.DamageProblems)), len(s.DamageProblems) > 0),
		metricCard("Bullet problems", strconv.Itoa(len(s.BulletProblems)), len(s.BulletProblems) > 0),
		metricCard("Spawn pressure", strconv.Itoa(s.PressureWaves), s.PressureWaves > 0),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	lines := []string{summary, "", "DPS grades: " + histogram(s.Grades), "Bullet grades: " + histogram(s.BulletGrades)}
	var buf bytes.Buffer
	if err := report.RenderCurves(&buf, m.chapters, report.CurveOptions{
		Width:           width,
		BulletThreshold: s.BulletThreshold,
		ForceColor:      true,
	}); err != nil {
		lines = append(lines, fmt.Sprintf("Failed to render curves: %v", err))
	} else {
		lines = append(lines, strings.TrimRight(buf.String(), "\n"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderDetails() string {
	if len(m.waves) == 0 {
		return "No waves found."
	}
	ref := m.waves[m.selected]
	ch := m.chapters[ref.chapter]
	wave := ch.Waves[ref.wave]
	lines := []string{headerStyle.Render(fmt.Sprintf("%s (%s)  wave %d of %d", ch.ChapterName, ch.ChapterID, m.selected+1, len(m.waves)))}
	lines = append(lines, report.WaveLines(wave, report.Options{
		Details:         model.DetailsAlways,
		BulletThreshold: m.summary.BulletThreshold,
	})...)
	return strings.Join(lines, "\n")
}

func metricCard(label, value string, problem bool) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	if problem {
		return problemCardStyle.Render(content)
	}
	return cardStyle.Render(content)
}

func histogram(hist map[string]int) string {
	letters := balance.SortedLetters(hist)
	if len(letters) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(letters))
	for _, letter := range letters {
		parts = append(parts, fmt.Sprintf("%s=%d", letter, hist[letter]))
	}
	return strings.Join(parts, "  ")
}

func buildWaveTable(chapters []balance.ChapterResult, refs []waveRef) table.Model {
	columns := []table.Column{
		{Title: "Chapter", Width: 12},
		{Title: "Wave", Width: 4},
		{Title: "Name", Width: 18},
		{Title: "Tier", Width: 5},
		{Title: "HP", Width: 8},
		{Title: "Overkill", Width: 8},
		{Title: "Grade", Width: 22},
		{Title: "Bullets", Width: 7},
		{Title: "Bullet grade", Width: 20},
	}
	rows := make([]table.Row, 0, len(refs))
	for _, ref := range refs {
		ch := chapters[ref.chapter]
		w := ch.Waves[ref.wave]
		grade := w.Grade.Letter
		if w.Grade.Qualifier != "" {
			grade += " " + w.Grade.Qualifier
		}
		if w.SpawnPressure {
			grade += " !"
		}
		rows = append(rows, table.Row{
			ch.ChapterID,
			strconv.Itoa(w.WaveID),
			w.WaveName,
			fmt.Sprintf("%d->%d", w.StartTier, w.EndTier),
			humanize.Comma(int64(w.TotalHP)),
			fmt.Sprintf("%.2fx", w.Overkill),
			grade,
			fmt.Sprintf("%.2fx", w.BulletRatio),
			w.BulletGrade.Letter + " " + w.BulletGrade.Qualifier,
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(10),
	)
	t.SetStyles(waveTableStyles())
	return t
}

func waveTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
