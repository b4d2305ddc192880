// Package report renders balance analysis results as plain text.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/zbalance/internal/balance"
	"github.com/verte-zerg/zbalance/internal/model"
)

const ruleWidth = 80

var rule = strings.Repeat("=", ruleWidth)

// Options controls the wave report.
type Options struct {
	Details         model.Details
	BulletThreshold float64
}

func (o Options) threshold() float64 {
	if o.BulletThreshold <= 0 {
		return balance.DefaultBulletThreshold
	}
	return o.BulletThreshold
}

// ShowDetails reports whether the trace of a wave should be printed.
func ShowDetails(w balance.WaveResult, mode model.Details, bulletThreshold float64) bool {
	switch mode {
	case model.DetailsAlways:
		return true
	case model.DetailsNever:
		return false
	}
	if bulletThreshold <= 0 {
		bulletThreshold = balance.DefaultBulletThreshold
	}
	return w.Overkill < balance.DamageProblemThreshold || w.SpawnPressure || w.BulletRatio < bulletThreshold
}

// Render prints the per-chapter wave report.
func Render(w io.Writer, chapters []balance.ChapterResult, opts Options) error {
	lines := []string{rule, "ZOMBOID ASSAULT - BALANCE ANALYSIS REPORT", rule}
	for _, ch := range chapters {
		lines = append(lines, "", rule, fmt.Sprintf("[CHAPTER] %s (%s)", ch.ChapterName, ch.ChapterID), rule)
		for _, wave := range ch.Waves {
			lines = append(lines, "")
			lines = append(lines, WaveLines(wave, opts)...)
		}
	}
	return writeLines(w, lines)
}

// WaveLines renders the block for one wave.
func WaveLines(wave balance.WaveResult, opts Options) []string {
	threshold := opts.threshold()
	tier := fmt.Sprintf("Tier %d", wave.StartTier)
	if wave.EndTier != wave.StartTier {
		tier += fmt.Sprintf(" -> Tier %d", wave.EndTier)
	}
	lines := []string{
		fmt.Sprintf("[WAVE %d] %s", wave.WaveID, wave.WaveName),
		fmt.Sprintf("   Duration: %ss", humanize.Ftoa(wave.Duration)),
		"   Weapon: " + tier,
		"   Total Enemy HP: " + humanize.Comma(int64(wave.TotalHP)),
		"   Damage Capacity: " + formatRounded(wave.Capacity),
		fmt.Sprintf("   Overkill Ratio: %.2fx", wave.Overkill),
		"   [GRADE]: " + wave.Grade.String(),
		"   Bullets Available: " + humanize.Comma(int64(wave.BulletsAvailable)),
		"   Bullets Needed: " + humanize.Comma(int64(wave.BulletsNeeded)),
		fmt.Sprintf("   Bullet Ratio: %.2fx", wave.BulletRatio),
		"   [BULLET GRADE]: " + wave.BulletGrade.String(),
	}
	if wave.Overkill < balance.DamageProblemThreshold {
		deficit := float64(wave.TotalHP) - wave.Capacity
		lines = append(lines, fmt.Sprintf("   [WARNING]: %s damage SHORT! Wave may be too hard!", formatRounded(deficit)))
	}
	if wave.BulletRatio < threshold {
		lines = append(lines, fmt.Sprintf("   [WARNING]: Bullet ratio below recommended %.1fx threshold!", threshold))
	}
	if ShowDetails(wave, opts.Details, threshold) && len(wave.Trace) > 0 {
		lines = append(lines, "", "   Details:")
		for _, line := range wave.Trace {
			lines = append(lines, "   "+line)
		}
	}
	return lines
}

// RenderSummary prints grade distributions and problem waves.
func RenderSummary(w io.Writer, s balance.Summary) error {
	lines := []string{"", "", rule, "[SUMMARY STATISTICS]", rule, ""}
	lines = append(lines, fmt.Sprintf("Total Waves Analyzed: %d", s.Waves))
	lines = append(lines, "", "DPS Grade Distribution:")
	lines = append(lines, histogramLines(s.Grades)...)
	lines = append(lines, "", "Bullet Count Grade Distribution:")
	lines = append(lines, histogramLines(s.BulletGrades)...)

	lines = append(lines, "")
	if len(s.DamageProblems) > 0 {
		lines = append(lines, fmt.Sprintf("[PROBLEM WAVES - DPS] (%d waves with overkill < %.1f):",
			len(s.DamageProblems), balance.DamageProblemThreshold))
		for _, p := range s.DamageProblems {
			missing := (balance.DamageProblemThreshold - p.Ratio) * 100
			lines = append(lines, fmt.Sprintf("  - %s: %.2fx (needs %.0f%% more damage capacity)", p.WaveName, p.Ratio, missing))
		}
	} else {
		lines = append(lines, "[SUCCESS - DPS] No problem waves detected! All waves appear balanced.")
	}

	lines = append(lines, "")
	if len(s.BulletProblems) > 0 {
		lines = append(lines, fmt.Sprintf("[PROBLEM WAVES - BULLETS] (%d waves with bullet ratio < %.1f):",
			len(s.BulletProblems), s.BulletThreshold))
		for _, p := range s.BulletProblems {
			lines = append(lines, fmt.Sprintf("  - %s: %.2fx (recommended: >=%.1fx)", p.WaveName, p.Ratio, s.BulletThreshold))
		}
	} else {
		lines = append(lines, fmt.Sprintf("[SUCCESS - BULLETS] All waves meet the %.1fx bullet ratio threshold!", s.BulletThreshold))
	}

	lines = append(lines, "", rule, "END OF REPORT", rule)
	return writeLines(w, lines)
}

func histogramLines(hist map[string]int) []string {
	letters := balance.SortedLetters(hist)
	lines := make([]string, 0, len(letters))
	for _, letter := range letters {
		lines = append(lines, fmt.Sprintf("  %s: %d waves", letter, hist[letter]))
	}
	return lines
}

func formatRounded(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
