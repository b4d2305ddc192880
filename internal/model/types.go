// Package model defines shared data structures.
package model

import "time"

// Details controls when per-wave traces are printed.
type Details string

const (
	DetailsAuto   Details = "auto"
	DetailsAlways Details = "always"
	DetailsNever  Details = "never"
)

// Config defines analysis settings.
type Config struct {
	GameDir         string
	BulletThreshold float64
	Details         Details
	Chapter         string
	Save            bool
	Curves          bool
}

// HistoryConfig defines filters for the run history listing.
type HistoryConfig struct {
	Last    int
	GameDir string
}

// Run summarizes one recorded analysis run.
type Run struct {
	ID             int64
	CreatedAt      time.Time
	GameDir        string
	Chapters       int
	Waves          int
	DamageProblems int
	BulletProblems int
	PressureWaves  int
}

// WaveRow is the persisted form of one wave result.
type WaveRow struct {
	ChapterID        string
	Position         int
	WaveID           int
	WaveName         string
	TotalHP          int
	StartTier        int
	EndTier          int
	Capacity         float64
	Overkill         float64
	Grade            string
	BulletsAvailable int
	BulletsNeeded    int
	BulletRatio      float64
	BulletGrade      string
	SpawnPressure    bool
}
