package store

import (
	"time"

	"github.com/verte-zerg/zbalance/internal/balance"
	"github.com/verte-zerg/zbalance/internal/model"
)

// RunFromResults flattens chapter results into a run summary and wave rows.
func RunFromResults(gameDir string, chapters []balance.ChapterResult, summary balance.Summary, now time.Time) (model.Run, []model.WaveRow) {
	run := model.Run{
		CreatedAt:      now,
		GameDir:        gameDir,
		Chapters:       len(chapters),
		Waves:          summary.Waves,
		DamageProblems: len(summary.DamageProblems),
		BulletProblems: len(summary.BulletProblems),
		PressureWaves:  summary.PressureWaves,
	}
	var rows []model.WaveRow
	for _, ch := range chapters {
		for i, w := range ch.Waves {
			rows = append(rows, model.WaveRow{
				ChapterID:        ch.ChapterID,
				Position:         i,
				WaveID:           w.WaveID,
				WaveName:         w.WaveName,
				TotalHP:          w.TotalHP,
				StartTier:        w.StartTier,
				EndTier:          w.EndTier,
				Capacity:         w.Capacity,
				Overkill:         w.Overkill,
				Grade:            w.Grade.String(),
				BulletsAvailable: w.BulletsAvailable,
				BulletsNeeded:    w.BulletsNeeded,
				BulletRatio:      w.BulletRatio,
				BulletGrade:      w.BulletGrade.String(),
				SpawnPressure:    w.SpawnPressure,
			})
		}
	}
	return run, rows
}
