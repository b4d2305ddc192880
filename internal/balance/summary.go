package balance

import "sort"

// DamageProblemThreshold marks waves whose overkill ratio falls short of total HP.
const DamageProblemThreshold = 1.0

// DefaultBulletThreshold is the recommended minimum bullet ratio.
const DefaultBulletThreshold = 1.3

// Problem identifies a wave whose ratio falls below a threshold.
type Problem struct {
	ChapterID string
	WaveID    int
	WaveName  string
	Ratio     float64
}

// Summary aggregates results across chapters.
type Summary struct {
	Waves           int
	Grades          map[string]int
	BulletGrades    map[string]int
	DamageProblems  []Problem
	BulletProblems  []Problem
	BulletThreshold float64
	PressureWaves   int
}

// Summarize builds grade histograms and problem lists. A non-positive
// bulletThreshold selects DefaultBulletThreshold.
func Summarize(chapters []ChapterResult, bulletThreshold float64) Summary {
	if bulletThreshold <= 0 {
		bulletThreshold = DefaultBulletThreshold
	}
	s := Summary{
		Grades:          map[string]int{},
		BulletGrades:    map[string]int{},
		BulletThreshold: bulletThreshold,
	}
	for _, ch := range chapters {
		for _, w := range ch.Waves {
			s.Waves++
			s.Grades[w.Grade.Letter]++
			s.BulletGrades[w.BulletGrade.Letter]++
			if w.SpawnPressure {
				s.PressureWaves++
			}
			if w.Overkill < DamageProblemThreshold {
				s.DamageProblems = append(s.DamageProblems, Problem{ChapterID: ch.ChapterID, WaveID: w.WaveID, WaveName: w.WaveName, Ratio: w.Overkill})
			}
			if w.BulletRatio < bulletThreshold {
				s.BulletProblems = append(s.BulletProblems, Problem{ChapterID: ch.ChapterID, WaveID: w.WaveID, WaveName: w.WaveName, Ratio: w.BulletRatio})
			}
		}
	}
	return s
}

// SortedLetters returns histogram keys in ascending order.
func SortedLetters(hist map[string]int) []string {
	letters := make([]string, 0, len(hist))
	for l := range hist {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	return letters
}
