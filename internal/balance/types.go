// Package balance simulates wave difficulty from weapon progression and enemy spawns.
package balance

// CatchPointsPerSecond is the rate at which the player is assumed to close an
// upgrade timer. A timer with start value -50 takes 6.25s to catch.
const CatchPointsPerSecond = 8.0

// StartingTier is the weapon tier every chapter begins with.
const StartingTier = 1

// Weapon describes one weapon tier.
type Weapon struct {
	ID              string
	Name            string
	Tier            int
	FireInterval    float64 // seconds between shots; 0 disables continuous-fire math
	Damage          int
	ProjectileCount int
}

// DPS returns damage per second, or 0 when the weapon cannot fire continuously.
func (w Weapon) DPS() float64 {
	if w.FireInterval == 0 {
		return 0
	}
	return float64(w.Damage*w.ProjectileCount) / w.FireInterval
}

// Enemy describes one enemy type.
type Enemy struct {
	ID     string
	Health int
	Speed  float64
}

// SpawnEntry is one spawn stream inside a wave.
type SpawnEntry struct {
	Type       string
	Count      int
	SpawnRate  float64 // enemies per second
	SpawnDelay float64 // seconds before the stream starts
}

// UpgradeTimer is a weapon-upgrade pickup scheduled inside a wave.
type UpgradeTimer struct {
	SpawnTime  float64
	WeaponTier int
	StartValue float64
}

// CatchDuration is the time the player spends not shooting enemies while
// catching the timer.
func (t UpgradeTimer) CatchDuration() float64 {
	v := t.StartValue
	if v < 0 {
		v = -v
	}
	return v / CatchPointsPerSecond
}

// CatchTime is when the upgrade is obtained.
func (t UpgradeTimer) CatchTime() float64 {
	return t.SpawnTime + t.CatchDuration()
}

// Wave is one combat wave.
type Wave struct {
	ID       int
	Name     string
	Duration float64
	Spawns   []SpawnEntry
	Timers   []UpgradeTimer
}

// Chapter is an ordered sequence of waves played in one run.
type Chapter struct {
	ID          string
	Name        string
	Description string
	Waves       []Wave
}

// WeaponTable indexes weapons by tier.
type WeaponTable map[int]Weapon

// EnemyTable indexes enemies by ID.
type EnemyTable map[string]Enemy

// Tables holds the immutable lookup data every analysis reads from.
type Tables struct {
	Weapons WeaponTable
	Enemies EnemyTable
}

// NewWeaponTable indexes weapons by tier. A later weapon with the same tier
// replaces an earlier one.
func NewWeaponTable(weapons []Weapon) WeaponTable {
	table := make(WeaponTable, len(weapons))
	for _, w := range weapons {
		table[w.Tier] = w
	}
	return table
}

// NewEnemyTable indexes enemies by ID.
func NewEnemyTable(enemies []Enemy) EnemyTable {
	table := make(EnemyTable, len(enemies))
	for _, e := range enemies {
		table[e.ID] = e
	}
	return table
}

// IssueKind classifies a data-integrity problem found during analysis.
type IssueKind string

const (
	IssueUnknownEnemy  IssueKind = "unknown_enemy"
	IssueUnknownWeapon IssueKind = "unknown_weapon"
)

// Issue is a non-fatal data-integrity condition. Ref is the enemy ID or the
// weapon tier that could not be resolved.
type Issue struct {
	Kind IssueKind
	Ref  string
}

// PressurePhase records a firing phase where spawned HP outpaces damage.
type PressurePhase struct {
	Label       string
	Tier        int
	Start       float64
	End         float64
	SpawnHPRate float64
	DPS         float64
}

// Deficit is the HP per second the weapon falls short by.
func (p PressurePhase) Deficit() float64 {
	return p.SpawnHPRate - p.DPS
}

// WaveResult is the analysis of one wave.
type WaveResult struct {
	WaveID   int
	WaveName string
	Duration float64

	TotalHP     int
	StartTier   int
	EndTier     int
	Capacity    float64
	RawOverkill float64
	Overkill    float64
	Grade       Grade

	BulletsAvailable int
	BulletsNeeded    int
	BulletRatio      float64
	BulletGrade      Grade
	OverkillWaste    int

	SpawnPressure  bool
	PressurePhases []PressurePhase

	Trace  []string
	Issues []Issue
}

// ChapterResult is the ordered analysis of every wave in a chapter.
type ChapterResult struct {
	ChapterID   string
	ChapterName string
	Waves       []WaveResult
}
