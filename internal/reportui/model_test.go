package reportui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/zbalance/internal/balance"
	"github.com/verte-zerg/zbalance/internal/model"
)

func testChapters() []balance.ChapterResult {
	return []balance.ChapterResult{
		{
			ChapterID:   "chapter-1",
			ChapterName: "Outbreak",
			Waves: []balance.WaveResult{
				{WaveID: 1, WaveName: "Warmup", TotalHP: 500, StartTier: 1, EndTier: 1, Overkill: 2, BulletRatio: 2,
					Grade: balance.Grade{Letter: "A", Qualifier: "Easy"}, BulletGrade: balance.Grade{Letter: "A", Qualifier: "Comfortable"}},
				{WaveID: 2, WaveName: "Horde", TotalHP: 2000, StartTier: 1, EndTier: 2, Overkill: 0.5, BulletRatio: 0.4,
					Grade: balance.Grade{Letter: "F", Qualifier: "Nearly Impossible"}, BulletGrade: balance.Grade{Letter: "F", Qualifier: "Critical Shortage"},
					Trace: []string{"Zomboids:", "  - runner: 40 x 50HP = 2000HP"}},
			},
		},
		{
			ChapterID:   "chapter-2",
			ChapterName: "Fog",
			Waves: []balance.WaveResult{
				{WaveID: 1, WaveName: "Mist", TotalHP: 800, StartTier: 1, EndTier: 1, Overkill: 1.2, BulletRatio: 1.5,
					Grade: balance.Grade{Letter: "B", Qualifier: "Balanced"}, BulletGrade: balance.Grade{Letter: "B", Qualifier: "Adequate"}},
			},
		},
	}
}

func resized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestNewModelIndexesWaves(t *testing.T) {
	m := NewModel(testChapters(), model.Config{GameDir: "public/config"})
	if len(m.waves) != 3 {
		t.Fatalf("expected 3 waves, got %d", len(m.waves))
	}
	if m.waves[2] != (waveRef{chapter: 1, wave: 0}) {
		t.Fatalf("unexpected wave ref %+v", m.waves[2])
	}
	if m.summary.BulletThreshold != balance.DefaultBulletThreshold {
		t.Fatalf("expected default threshold, got %v", m.summary.BulletThreshold)
	}
}

func TestEnterOpensSelectedWave(t *testing.T) {
	m := resized(NewModel(testChapters(), model.Config{}))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabWaves {
		t.Fatalf("expected waves tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.activeTab != tabDetails || m.selected != 1 {
		t.Fatalf("expected details of wave 1, got tab=%d selected=%d", m.activeTab, m.selected)
	}
	details := m.renderDetails()
	if !strings.Contains(details, "[WAVE 2] Horde") || !strings.Contains(details, "runner: 40 x 50HP") {
		t.Fatalf("unexpected details:\n%s", details)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.selected != 2 {
		t.Fatalf("expected selection clamped to last wave, got %d", m.selected)
	}
}

func TestTabsWrapAround(t *testing.T) {
	m := NewModel(testChapters(), model.Config{})
	m.moveTab(-1)
	if m.activeTab != tabDetails {
		t.Fatalf("expected wrap to last tab, got %d", m.activeTab)
	}
	m.moveTab(1)
	if m.activeTab != tabOverview {
		t.Fatalf("expected wrap to first tab, got %d", m.activeTab)
	}
}

func TestOverviewShowsProblemCounts(t *testing.T) {
	m := NewModel(testChapters(), model.Config{})
	out := m.renderOverview(120)
	for _, want := range []string{"DPS problems", "Bullet problems", "DPS grades: A=1  B=1  F=1", "Outbreak (chapter-1)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in overview:\n%s", want, out)
		}
	}
}

func TestViewFitsWindow(t *testing.T) {
	m := resized(NewModel(testChapters(), model.Config{}))
	lines := strings.Split(m.View(), "\n")
	if len(lines) != 40 {
		t.Fatalf("expected 40 lines, got %d", len(lines))
	}
}

func TestEmptyModel(t *testing.T) {
	m := resized(NewModel(nil, model.Config{}))
	if !strings.Contains(m.View(), "No waves found.") {
		t.Fatalf("expected empty message")
	}
	m.selectWave(3)
	if m.selected != 0 {
		t.Fatalf("expected selection untouched, got %d", m.selected)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("abc", 6); got != "abc" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("abcdef", 2); got != "ab" {
		t.Fatalf("unexpected narrow truncation %q", got)
	}
}

func TestFitLines(t *testing.T) {
	got := fitLines("a\nb\nc", 3, 2)
	if got != "a  \nb  " {
		t.Fatalf("unexpected fit %q", got)
	}
	got = fitLines("a", 2, 2)
	if got != "a \n  " {
		t.Fatalf("unexpected padded fit %q", got)
	}
}
