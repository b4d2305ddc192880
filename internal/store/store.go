// Package store handles SQLite persistence of analysis runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/zbalance/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			game_dir TEXT NOT NULL,
			chapters INTEGER NOT NULL,
			waves INTEGER NOT NULL,
			damage_problems INTEGER NOT NULL,
			bullet_problems INTEGER NOT NULL,
			pressure_waves INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS wave_results (
			run_id INTEGER NOT NULL,
			chapter_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			wave_id INTEGER NOT NULL,
			wave_name TEXT NOT NULL,
			total_hp INTEGER NOT NULL,
			start_tier INTEGER NOT NULL,
			end_tier INTEGER NOT NULL,
			capacity REAL NOT NULL,
			overkill REAL NOT NULL,
			grade TEXT NOT NULL,
			bullets_available INTEGER NOT NULL,
			bullets_needed INTEGER NOT NULL,
			bullet_ratio REAL NOT NULL,
			bullet_grade TEXT NOT NULL,
			spawn_pressure INTEGER NOT NULL,
			PRIMARY KEY (run_id, chapter_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a run summary and its wave rows.
func (s *Store) InsertRun(ctx context.Context, run model.Run, waves []model.WaveRow) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, game_dir, chapters, waves, damage_problems, bullet_problems, pressure_waves)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.GameDir,
		run.Chapters,
		run.Waves,
		run.DamageProblems,
		run.BulletProblems,
		run.PressureWaves,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(waves) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO wave_results (run_id, chapter_id, position, wave_id, wave_name, total_hp, start_tier, end_tier,
				capacity, overkill, grade, bullets_available, bullets_needed, bullet_ratio, bullet_grade, spawn_pressure)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, w := range waves {
			if _, err := stmt.ExecContext(ctx, id, w.ChapterID, w.Position, w.WaveID, w.WaveName, w.TotalHP,
				w.StartTier, w.EndTier, w.Capacity, w.Overkill, w.Grade, w.BulletsAvailable, w.BulletsNeeded,
				w.BulletRatio, w.BulletGrade, w.SpawnPressure); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns recorded runs, newest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.Run, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.GameDir != "" {
		clauses = append(clauses, "game_dir = ?")
		args = append(args, cfg.GameDir)
	}
	limit := ""
	if cfg.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, cfg.Last)
	}
	query := fmt.Sprintf(`SELECT id, created_at, game_dir, chapters, waves, damage_problems, bullet_problems, pressure_waves
		FROM runs
		WHERE %s
		ORDER BY created_at DESC, id DESC
		%s`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns a single run by ID.
func (s *Store) GetRun(ctx context.Context, id int64) (model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, game_dir, chapters, waves, damage_problems, bullet_problems, pressure_waves
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return model.Run{}, fmt.Errorf("run %d not found", id)
	}
	return run, err
}

// ListWaveRows returns the wave rows of a run in chapter and play order.
func (s *Store) ListWaveRows(ctx context.Context, runID int64) ([]model.WaveRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chapter_id, position, wave_id, wave_name, total_hp, start_tier, end_tier, capacity, overkill, grade,
			bullets_available, bullets_needed, bullet_ratio, bullet_grade, spawn_pressure
		 FROM wave_results
		 WHERE run_id = ?
		 ORDER BY chapter_id ASC, position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.WaveRow
	for rows.Next() {
		var w model.WaveRow
		if err := rows.Scan(&w.ChapterID, &w.Position, &w.WaveID, &w.WaveName, &w.TotalHP, &w.StartTier, &w.EndTier,
			&w.Capacity, &w.Overkill, &w.Grade, &w.BulletsAvailable, &w.BulletsNeeded, &w.BulletRatio,
			&w.BulletGrade, &w.SpawnPressure); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (model.Run, error) {
	var run model.Run
	var createdAt string
	if err := row.Scan(&run.ID, &createdAt, &run.GameDir, &run.Chapters, &run.Waves,
		&run.DamageProblems, &run.BulletProblems, &run.PressureWaves); err != nil {
		return model.Run{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Run{}, err
	}
	run.CreatedAt = parsed
	return run, nil
}
