package balance

import (
	"context"
	"strings"
	"testing"
)

func testTables() Tables {
	return Tables{
		Weapons: NewWeaponTable([]Weapon{
			{ID: "pistol", Name: "Pistol", Tier: 1, FireInterval: 0.5, Damage: 10, ProjectileCount: 1},
			{ID: "smg", Name: "SMG", Tier: 2, FireInterval: 0.25, Damage: 10, ProjectileCount: 1},
			{ID: "shotgun", Name: "Shotgun", Tier: 3, FireInterval: 1, Damage: 10, ProjectileCount: 5},
		}),
		Enemies: NewEnemyTable([]Enemy{
			{ID: "basic", Health: 50, Speed: 40},
			{ID: "brute", Health: 125, Speed: 20},
		}),
	}
}

func TestWeaponDPS(t *testing.T) {
	w := Weapon{FireInterval: 0.5, Damage: 10, ProjectileCount: 3}
	if got := w.DPS(); got != 60 {
		t.Fatalf("expected 60 DPS, got %v", got)
	}
	if got := (Weapon{Damage: 10, ProjectileCount: 1}).DPS(); got != 0 {
		t.Fatalf("expected 0 DPS for zero fire interval, got %v", got)
	}
}

func TestAnalyzeWaveEndToEnd(t *testing.T) {
	wave := Wave{
		ID:       1,
		Name:     "First Contact",
		Duration: 10,
		Spawns:   []SpawnEntry{{Type: "basic", Count: 3, SpawnRate: 0.3}},
	}
	res := AnalyzeWave(testTables(), wave, 1)
	if res.TotalHP != 150 {
		t.Fatalf("expected total HP 150, got %d", res.TotalHP)
	}
	if !approx(res.Capacity, 200) {
		t.Fatalf("expected capacity 200, got %v", res.Capacity)
	}
	if !approx(res.Overkill, 200.0/150.0) {
		t.Fatalf("expected overkill 1.333, got %v", res.Overkill)
	}
	if res.Grade.Letter != "B" || res.Grade.String() != "B (Balanced)" {
		t.Fatalf("expected grade B (Balanced), got %q", res.Grade.String())
	}
	if res.BulletsAvailable != 20 || res.BulletsNeeded != 150 {
		t.Fatalf("expected 20/150 bullets, got %d/%d", res.BulletsAvailable, res.BulletsNeeded)
	}
	if !approx(res.BulletRatio, 20.0/150.0) {
		t.Fatalf("expected bullet ratio 0.133, got %v", res.BulletRatio)
	}
	if res.BulletGrade.Letter != "F" {
		t.Fatalf("expected bullet grade F, got %q", res.BulletGrade.String())
	}
	if res.SpawnPressure {
		t.Fatalf("expected no spawn pressure, got %+v", res.PressurePhases)
	}
	if res.StartTier != 1 || res.EndTier != 1 {
		t.Fatalf("expected tier 1 -> 1, got %d -> %d", res.StartTier, res.EndTier)
	}
	if len(res.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", res.Issues)
	}
}

func TestAnalyzeWaveTraceBulletSummary(t *testing.T) {
	wave := Wave{Duration: 10, Spawns: []SpawnEntry{{Type: "basic", Count: 30, SpawnRate: 1}}}
	res := AnalyzeWave(testTables(), wave, 1)

	want := []string{
		"",
		"Bullet Count Analysis:",
		"  Bullets Available: 20",
		"  Bullets Needed: 1,500",
		"  Bullet Ratio: 0.01x",
		"  Overkill Waste: 0 damage",
		"  [BULLET GRADE]: F (Critical Shortage)",
		"Bullets Available:",
	}
	start := -1
	for i, line := range res.Trace {
		if line == "Bullet Count Analysis:" {
			start = i - 1
			break
		}
	}
	if start < 0 || start+len(want) > len(res.Trace) {
		t.Fatalf("expected bullet summary in trace:\n%s", strings.Join(res.Trace, "\n"))
	}
	for i, line := range want {
		if got := res.Trace[start+i]; got != line {
			t.Fatalf("trace line %d: expected %q, got %q", start+i, line, got)
		}
	}
}

func TestAnalyzeWaveNoTimersCapacity(t *testing.T) {
	tables := testTables()
	for _, tier := range []int{1, 2, 3} {
		wave := Wave{Duration: 37.5, Spawns: []SpawnEntry{{Type: "basic", Count: 1}}}
		res := AnalyzeWave(tables, wave, tier)
		want := tables.Weapons[tier].DPS() * wave.Duration
		if !approx(res.Capacity, want) {
			t.Fatalf("tier %d: expected capacity %v, got %v", tier, want, res.Capacity)
		}
	}
}

func TestAnalyzeWaveSpawnPressurePenalty(t *testing.T) {
	wave := Wave{
		Duration: 10,
		Spawns:   []SpawnEntry{{Type: "brute", Count: 1, SpawnRate: 1}},
	}
	res := AnalyzeWave(testTables(), wave, 1)
	if !approx(res.RawOverkill, 1.6) {
		t.Fatalf("expected raw overkill 1.6, got %v", res.RawOverkill)
	}
	if !approx(res.Overkill, 0.8) {
		t.Fatalf("expected penalized overkill 0.8, got %v", res.Overkill)
	}
	if !res.SpawnPressure || len(res.PressurePhases) != 1 {
		t.Fatalf("expected one pressure phase, got %+v", res.PressurePhases)
	}
	if got := res.PressurePhases[0].Deficit(); !approx(got, 105) {
		t.Fatalf("expected deficit 105 HP/sec, got %v", got)
	}
	label := res.Grade.String()
	if res.Grade.Letter != "D" || !strings.HasSuffix(label, PressureTag) {
		t.Fatalf("expected D with pressure tag, got %q", label)
	}
}

func TestAnalyzeWavePressureWithoutSurplusIsNotPenalized(t *testing.T) {
	wave := Wave{
		Duration: 10,
		Spawns:   []SpawnEntry{{Type: "brute", Count: 2, SpawnRate: 1}},
	}
	res := AnalyzeWave(testTables(), wave, 1)
	if !res.SpawnPressure {
		t.Fatalf("expected spawn pressure")
	}
	if !approx(res.Overkill, res.RawOverkill) || res.Grade.Pressure {
		t.Fatalf("expected no penalty below ratio 1.0, got %v (%q)", res.Overkill, res.Grade.String())
	}
}

func TestSpawnPressureRespectsDelay(t *testing.T) {
	wave := Wave{
		Duration: 30,
		Spawns: []SpawnEntry{
			{Type: "basic", Count: 5, SpawnRate: 0.2},
			{Type: "brute", Count: 2, SpawnRate: 1, SpawnDelay: 15},
		},
		Timers: []UpgradeTimer{{SpawnTime: 10, WeaponTier: 3, StartValue: -8}},
	}
	tables := testTables()
	phases := SpawnPressure(NewTimeline(wave, 1), wave, tables)
	// Phase [0,10) at T1 only sees the basic stream (10 HP/s < 20 DPS).
	// Final phase [11,30) at T3 (50 DPS) sees both (135 HP/s).
	if len(phases) != 1 {
		t.Fatalf("expected 1 pressure phase, got %+v", phases)
	}
	if phases[0].Label != "Final phase: T3 weapon" {
		t.Fatalf("unexpected label %q", phases[0].Label)
	}
	if !approx(phases[0].SpawnHPRate, 135) || !approx(phases[0].DPS, 50) {
		t.Fatalf("unexpected rates: %+v", phases[0])
	}
}

func TestBulletsNeededSingleType(t *testing.T) {
	wave := Wave{Spawns: []SpawnEntry{{Type: "brute", Count: 7}}}
	needed, waste := BulletsNeeded(wave, testTables().Enemies)
	if needed != 125*7 {
		t.Fatalf("expected %d bullets, got %d", 125*7, needed)
	}
	if waste != 0 {
		t.Fatalf("expected no overkill waste, got %d", waste)
	}
}

func TestBulletsAvailableDeadTime(t *testing.T) {
	wave := Wave{
		Duration: 20,
		Timers:   []UpgradeTimer{{SpawnTime: 5, WeaponTier: 3, StartValue: -40}},
	}
	// 5s at T1 (10 bullets), 5s catching, 10s at T3 (50 bullets).
	if got := BulletsAvailable(NewTimeline(wave, 1), testTables().Weapons); got != 60 {
		t.Fatalf("expected 60 bullets, got %d", got)
	}
}

func TestAnalyzeWaveZeroDenominators(t *testing.T) {
	res := AnalyzeWave(testTables(), Wave{Duration: 0}, 1)
	if res.Overkill != 0 || res.BulletRatio != 0 {
		t.Fatalf("expected zero ratios, got %v and %v", res.Overkill, res.BulletRatio)
	}
	if res.Grade.Letter != "F" || res.BulletGrade.Letter != "F" {
		t.Fatalf("expected F grades, got %q and %q", res.Grade.String(), res.BulletGrade.String())
	}
}

func TestAnalyzeWaveRecordsUnknownReferences(t *testing.T) {
	wave := Wave{
		Duration: 10,
		Spawns:   []SpawnEntry{{Type: "ghost", Count: 4, SpawnRate: 1}},
	}
	res := AnalyzeWave(testTables(), wave, 9)
	if res.TotalHP != 0 || res.Capacity != 0 || res.BulletsAvailable != 0 {
		t.Fatalf("expected zero contributions, got %+v", res)
	}
	want := map[Issue]bool{
		{Kind: IssueUnknownEnemy, Ref: "ghost"}: true,
		{Kind: IssueUnknownWeapon, Ref: "9"}:    true,
	}
	if len(res.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), res.Issues)
	}
	for _, is := range res.Issues {
		if !want[is] {
			t.Fatalf("unexpected issue %+v", is)
		}
	}
	trace := strings.Join(res.Trace, "\n")
	if !strings.Contains(trace, "ghost: UNKNOWN TYPE") {
		t.Fatalf("expected unknown type in trace:\n%s", trace)
	}
}

func TestAnalyzeChapterCarriesTier(t *testing.T) {
	chapter := Chapter{
		ID: "chapter-1",
		Waves: []Wave{
			{ID: 1, Duration: 30, Spawns: []SpawnEntry{{Type: "basic", Count: 5}},
				Timers: []UpgradeTimer{{SpawnTime: 5, WeaponTier: 3, StartValue: -16}}},
			{ID: 2, Duration: 30, Spawns: []SpawnEntry{{Type: "basic", Count: 5}}},
		},
	}
	res := AnalyzeChapter(testTables(), chapter)
	if len(res.Waves) != 2 {
		t.Fatalf("expected 2 waves, got %d", len(res.Waves))
	}
	if res.Waves[0].StartTier != 1 || res.Waves[0].EndTier != 3 {
		t.Fatalf("unexpected wave 1 tiers: %d -> %d", res.Waves[0].StartTier, res.Waves[0].EndTier)
	}
	if res.Waves[1].StartTier != 3 {
		t.Fatalf("expected wave 2 to start at tier 3, got %d", res.Waves[1].StartTier)
	}
}

func TestAnalyzeChaptersResetTierAndKeepOrder(t *testing.T) {
	upgrade := Wave{ID: 1, Duration: 30, Timers: []UpgradeTimer{{SpawnTime: 5, WeaponTier: 2, StartValue: -8}}}
	chapters := []Chapter{
		{ID: "a", Waves: []Wave{upgrade}},
		{ID: "b", Waves: []Wave{{ID: 1, Duration: 30}}},
		{ID: "c", Waves: []Wave{upgrade, {ID: 2, Duration: 30}}},
	}
	results, err := AnalyzeChapters(context.Background(), testTables(), chapters)
	if err != nil {
		t.Fatalf("analyze chapters: %v", err)
	}
	for i, ch := range chapters {
		if results[i].ChapterID != ch.ID {
			t.Fatalf("expected chapter %q at %d, got %q", ch.ID, i, results[i].ChapterID)
		}
		if results[i].Waves[0].StartTier != StartingTier {
			t.Fatalf("chapter %q: expected first wave at tier 1, got %d", ch.ID, results[i].Waves[0].StartTier)
		}
	}
	if results[2].Waves[1].StartTier != 2 {
		t.Fatalf("expected carry-over inside chapter c, got %d", results[2].Waves[1].StartTier)
	}
}

func TestAnalyzeChaptersCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AnalyzeChapters(ctx, testTables(), []Chapter{{ID: "a"}}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
