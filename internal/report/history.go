package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/zbalance/internal/model"
)

// RenderRuns prints recorded runs as a table.
func RenderRuns(w io.Writer, runs []model.Run, now time.Time) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	headers := []string{"ID", "When", "Game dir", "Chapters", "Waves", "DPS problems", "Bullet problems", "Pressure"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
			r.GameDir,
			strconv.Itoa(r.Chapters),
			strconv.Itoa(r.Waves),
			strconv.Itoa(r.DamageProblems),
			strconv.Itoa(r.BulletProblems),
			strconv.Itoa(r.PressureWaves),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true, 5: true, 6: true, 7: true}))
}

// RenderWaveRows prints the saved wave rows of one run.
func RenderWaveRows(w io.Writer, run model.Run, waves []model.WaveRow) error {
	header := fmt.Sprintf("Run %d (%s) %s", run.ID, run.CreatedAt.Format(time.RFC3339), run.GameDir)
	if err := writeLines(w, []string{header, ""}); err != nil {
		return err
	}
	if len(waves) == 0 {
		_, err := fmt.Fprintln(w, "No wave results recorded.")
		return err
	}
	headers := []string{"Chapter", "Wave", "Name", "Tier", "HP", "Overkill", "Grade", "Bullets", "Bullet grade"}
	rows := make([][]string, 0, len(waves))
	for _, wave := range waves {
		rows = append(rows, []string{
			wave.ChapterID,
			strconv.Itoa(wave.WaveID),
			wave.WaveName,
			fmt.Sprintf("%d->%d", wave.StartTier, wave.EndTier),
			humanize.Comma(int64(wave.TotalHP)),
			fmt.Sprintf("%.2fx", wave.Overkill),
			wave.Grade,
			fmt.Sprintf("%.2fx", wave.BulletRatio),
			wave.BulletGrade,
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{1: true, 4: true, 5: true, 7: true}))
}
