package balance

import (
	"fmt"
	"math"
	"strconv"
)

// DamagePerBullet is the damage one bullet is assumed to deal when counting
// bullets needed.
const DamagePerBullet = 1

// recorder collects trace lines and de-duplicated issues for one wave.
type recorder struct {
	lines  []string
	issues []Issue
	seen   map[Issue]struct{}
}

func newRecorder() *recorder {
	return &recorder{seen: map[Issue]struct{}{}}
}

func (r *recorder) line(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recorder) issue(kind IssueKind, ref string) {
	is := Issue{Kind: kind, Ref: ref}
	if _, ok := r.seen[is]; ok {
		return
	}
	r.seen[is] = struct{}{}
	r.issues = append(r.issues, is)
}

func (r *recorder) weapon(weapons WeaponTable, tier int) (Weapon, bool) {
	w, ok := weapons[tier]
	if !ok {
		r.issue(IssueUnknownWeapon, strconv.Itoa(tier))
	}
	return w, ok
}

func (r *recorder) enemy(enemies EnemyTable, id string) (Enemy, bool) {
	e, ok := enemies[id]
	if !ok {
		r.issue(IssueUnknownEnemy, id)
	}
	return e, ok
}

// TotalHP sums the health of every enemy spawned in the wave. Unknown enemy
// types contribute nothing.
func TotalHP(wave Wave, enemies EnemyTable) int {
	return totalHP(wave, enemies, newRecorder())
}

func totalHP(wave Wave, enemies EnemyTable, r *recorder) int {
	total := 0
	for _, s := range wave.Spawns {
		e, ok := r.enemy(enemies, s.Type)
		if !ok {
			r.line("  - %s: UNKNOWN TYPE", s.Type)
			continue
		}
		hp := s.Count * e.Health
		total += hp
		r.line("  - %s: %d x %dHP = %dHP", s.Type, s.Count, e.Health, hp)
	}
	return total
}

// DamageCapacity is the total damage the timeline can deal.
func DamageCapacity(tl Timeline, weapons WeaponTable) float64 {
	return damageCapacity(tl, weapons, newRecorder())
}

func damageCapacity(tl Timeline, weapons WeaponTable, r *recorder) float64 {
	total := 0.0
	for seg := range tl.Segments() {
		if seg.Kind == Catching {
			r.line("  - [CATCHING TIMER] for %.1fs - NO DAMAGE (enemies accumulate!)", seg.Length())
			continue
		}
		w, ok := r.weapon(weapons, seg.Tier)
		if !ok {
			r.line("  - T%d: no weapon configured for %.1fs - NO DAMAGE", seg.Tier, seg.Length())
			continue
		}
		dmg := w.DPS() * seg.Length()
		total += dmg
		r.line("  - T%d (%s) for %.1fs @ %.1f DPS = %.0f damage", seg.Tier, w.Name, seg.Length(), w.DPS(), dmg)
	}
	return total
}

// BulletsAvailable counts bullets the timeline can fire, floored.
func BulletsAvailable(tl Timeline, weapons WeaponTable) int {
	return bulletsAvailable(tl, weapons, newRecorder())
}

func bulletsAvailable(tl Timeline, weapons WeaponTable, r *recorder) int {
	total := 0.0
	for seg := range tl.Segments() {
		if seg.Kind == Catching {
			r.line("  - [CATCHING TIMER] %.1fs - NO SHOOTING", seg.Length())
			continue
		}
		w, ok := r.weapon(weapons, seg.Tier)
		if !ok || w.FireInterval == 0 {
			r.line("  - T%d: cannot fire for %.1fs", seg.Tier, seg.Length())
			continue
		}
		shots := seg.Length() / w.FireInterval
		bullets := shots * float64(w.ProjectileCount)
		total += bullets
		r.line("  - T%d: %.1f shots x %d projectiles = %.0f bullets", seg.Tier, shots, w.ProjectileCount, bullets)
	}
	return int(math.Floor(total))
}

// BulletsNeeded counts bullets required to kill every enemy in the wave and the
// damage wasted on overkill.
func BulletsNeeded(wave Wave, enemies EnemyTable) (needed, waste int) {
	return bulletsNeeded(wave, enemies, newRecorder())
}

func bulletsNeeded(wave Wave, enemies EnemyTable, r *recorder) (needed, waste int) {
	for _, s := range wave.Spawns {
		e, ok := r.enemy(enemies, s.Type)
		if !ok {
			continue
		}
		shots := (e.Health + DamagePerBullet - 1) / DamagePerBullet
		bullets := shots * s.Count
		overkill := (shots*DamagePerBullet - e.Health) * s.Count
		needed += bullets
		waste += overkill
		r.line("  - %s: %d x %dHP = %d bullets (overkill: %d)", s.Type, s.Count, e.Health, bullets, overkill)
	}
	return needed, waste
}

// SpawnPressure returns every firing phase where enemy HP spawns faster than
// the active weapon can deal damage.
func SpawnPressure(tl Timeline, wave Wave, tables Tables) []PressurePhase {
	return spawnPressure(tl, wave, tables, newRecorder())
}

func spawnPressure(tl Timeline, wave Wave, tables Tables, r *recorder) []PressurePhase {
	var phases []PressurePhase
	for seg := range tl.Segments() {
		if seg.Kind == Catching || seg.Length() <= 0 {
			continue
		}
		rate := 0.0
		for _, s := range wave.Spawns {
			if s.SpawnDelay >= seg.End {
				continue
			}
			e, ok := r.enemy(tables.Enemies, s.Type)
			if !ok {
				continue
			}
			rate += s.SpawnRate * float64(e.Health)
		}
		dps := 0.0
		if w, ok := r.weapon(tables.Weapons, seg.Tier); ok {
			dps = w.DPS()
		}
		if rate <= dps {
			continue
		}
		p := PressurePhase{
			Label:       phaseLabel(seg),
			Tier:        seg.Tier,
			Start:       seg.Start,
			End:         seg.End,
			SpawnHPRate: rate,
			DPS:         dps,
		}
		phases = append(phases, p)
		r.line("  [SPAWN PRESSURE] %s: %.1f HP/sec spawning vs %.1f DPS (SHORT %.1f HP/sec!)", p.Label, p.SpawnHPRate, p.DPS, p.Deficit())
	}
	return phases
}

func phaseLabel(seg Segment) string {
	if seg.Event < 0 {
		return fmt.Sprintf("Final phase: T%d weapon", seg.Tier)
	}
	return fmt.Sprintf("Phase %d: T%d weapon", seg.Event+1, seg.Tier)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
