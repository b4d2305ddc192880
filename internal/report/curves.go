package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/zbalance/internal/balance"
)

const (
	sparkChars          = " .:-=+*#%@"
	minCurveWidth       = 10
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	colorGood           = "\x1b[32m"
	colorBad            = "\x1b[31m"
)

// CurveOptions controls difficulty curve rendering.
type CurveOptions struct {
	Width           int // 0 selects the terminal width
	BulletThreshold float64
	ForceColor      bool
}

type curve struct {
	label     string
	values    []float64
	threshold float64
}

// RenderCurves prints one overkill and one bullet ratio sparkline per chapter.
// Cells below the problem threshold are red when color is enabled.
func RenderCurves(w io.Writer, chapters []balance.ChapterResult, opts CurveOptions) error {
	threshold := opts.BulletThreshold
	if threshold <= 0 {
		threshold = balance.DefaultBulletThreshold
	}
	width := opts.Width
	if width <= 0 {
		width = terminalWidth()
	}
	useColor := shouldUseColor(w, opts.ForceColor)

	lines := []string{"", "Difficulty curves (per wave, scaled per line)"}
	for _, ch := range chapters {
		if len(ch.Waves) == 0 {
			continue
		}
		overkill := make([]float64, len(ch.Waves))
		bullets := make([]float64, len(ch.Waves))
		for i, wave := range ch.Waves {
			overkill[i] = wave.Overkill
			bullets[i] = wave.BulletRatio
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", ch.ChapterName, ch.ChapterID))
		for _, c := range []curve{
			{label: "overkill", values: overkill, threshold: balance.DamageProblemThreshold},
			{label: "bullets ", values: bullets, threshold: threshold},
		} {
			minVal, maxVal := minMax(c.values)
			prefix := "  " + c.label + " "
			suffix := fmt.Sprintf(" %.2f..%.2f", minVal, maxVal)
			avail := width - runewidth.StringWidth(prefix) - runewidth.StringWidth(suffix)
			if avail < minCurveWidth {
				avail = minCurveWidth
			}
			values := resample(c.values, avail)
			lines = append(lines, prefix+sparkline(values, c.threshold, useColor)+suffix)
		}
	}
	return writeLines(w, lines)
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	return sparkline(values, math.Inf(-1), false)
}

func sparkline(values []float64, threshold float64, useColor bool) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	var b strings.Builder
	for _, v := range values {
		idx := len(sparkChars) / 2
		if math.Abs(maxVal-minVal) >= 1e-9 {
			pos := (v - minVal) / (maxVal - minVal)
			idx = int(math.Round(pos * float64(len(sparkChars)-1)))
		}
		idx = min(max(idx, 0), len(sparkChars)-1)
		if !useColor {
			b.WriteByte(sparkChars[idx])
			continue
		}
		color := colorGood
		if v < threshold {
			color = colorBad
		}
		b.WriteString(color)
		b.WriteByte(sparkChars[idx])
		b.WriteString(colorReset)
	}
	return b.String()
}

// resample averages values into at most width buckets.
func resample(values []float64, width int) []float64 {
	if len(values) <= width || width <= 0 {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
