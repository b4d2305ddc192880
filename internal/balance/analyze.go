package balance

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// AnalyzeWave simulates one wave played from startTier.
func AnalyzeWave(tables Tables, wave Wave, startTier int) WaveResult {
	r := newRecorder()
	tl := NewTimeline(wave, startTier)

	r.line("Zomboids:")
	hp := totalHP(wave, tables.Enemies, r)

	r.line("Damage Output:")
	capacity := damageCapacity(tl, tables.Weapons, r)

	mark := len(r.lines)
	phases := spawnPressure(tl, wave, tables, r)
	if len(phases) > 0 {
		r.lines = append(r.lines[:mark], append([]string{"Spawn Pressure Analysis:"}, r.lines[mark:]...)...)
	}

	mark = len(r.lines)
	r.line("Bullets Available:")
	available := bulletsAvailable(tl, tables.Weapons, r)
	r.line("Bullets Needed:")
	needed, waste := bulletsNeeded(wave, tables.Enemies, r)

	raw := ratio(capacity, float64(hp))
	overkill, grade := gradeOverkill(raw, len(phases) > 0)
	bulletRatio := ratio(float64(available), float64(needed))
	bulletGrade := BulletGrades.Grade(bulletRatio)

	summary := []string{
		"",
		"Bullet Count Analysis:",
		"  Bullets Available: " + humanize.Comma(int64(available)),
		"  Bullets Needed: " + humanize.Comma(int64(needed)),
		fmt.Sprintf("  Bullet Ratio: %.2fx", bulletRatio),
		"  Overkill Waste: " + humanize.Comma(int64(waste)) + " damage",
		"  [BULLET GRADE]: " + bulletGrade.String(),
	}
	r.lines = append(r.lines[:mark], append(summary, r.lines[mark:]...)...)

	return WaveResult{
		WaveID:           wave.ID,
		WaveName:         wave.Name,
		Duration:         wave.Duration,
		TotalHP:          hp,
		StartTier:        startTier,
		EndTier:          tl.EndingTier(),
		Capacity:         capacity,
		RawOverkill:      raw,
		Overkill:         overkill,
		Grade:            grade,
		BulletsAvailable: available,
		BulletsNeeded:    needed,
		BulletRatio:      bulletRatio,
		BulletGrade:      bulletGrade,
		OverkillWaste:    waste,
		SpawnPressure:    len(phases) > 0,
		PressurePhases:   phases,
		Trace:            r.lines,
		Issues:           r.issues,
	}
}

// AnalyzeChapter analyzes waves in order, starting each wave with the tier the
// previous one ended on. The first wave always starts at StartingTier.
func AnalyzeChapter(tables Tables, chapter Chapter) ChapterResult {
	out := ChapterResult{
		ChapterID:   chapter.ID,
		ChapterName: chapter.Name,
		Waves:       make([]WaveResult, 0, len(chapter.Waves)),
	}
	tier := StartingTier
	for _, wave := range chapter.Waves {
		res := AnalyzeWave(tables, wave, tier)
		out.Waves = append(out.Waves, res)
		tier = res.EndTier
	}
	return out
}

// AnalyzeChapters analyzes chapters concurrently. Results keep input order.
func AnalyzeChapters(ctx context.Context, tables Tables, chapters []Chapter) ([]ChapterResult, error) {
	results := make([]ChapterResult, len(chapters))
	g, ctx := errgroup.WithContext(ctx)
	for i, ch := range chapters {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = AnalyzeChapter(tables, ch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
