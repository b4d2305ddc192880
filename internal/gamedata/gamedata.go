// Package gamedata loads weapon, enemy, and chapter definitions from a game
// config directory.
package gamedata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/verte-zerg/zbalance/internal/balance"
	"github.com/verte-zerg/zbalance/internal/logger"
)

// UpgradeTimerType is the only timer type that changes the weapon tier.
const UpgradeTimerType = "weapon_upgrade_timer"

// Timer defaults applied when a field is absent.
const (
	DefaultWeaponTier = 2
	DefaultStartValue = -50.0
)

// WeaponsFile is the weapons definition file.
type WeaponsFile struct {
	WeaponTypes []WeaponDef `json:"weaponTypes" yaml:"weaponTypes"`
}

// WeaponDef is one weapon entry. FireRate is the interval between shots in seconds.
type WeaponDef struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Tier            int     `json:"tier" yaml:"tier"`
	FireRate        float64 `json:"fireRate" yaml:"fireRate"`
	Damage          int     `json:"damage" yaml:"damage"`
	ProjectileCount int     `json:"projectileCount" yaml:"projectileCount"`
}

// ZomboidsFile is the enemy definition file.
type ZomboidsFile struct {
	ZomboidTypes []ZomboidDef `json:"zomboidTypes" yaml:"zomboidTypes"`
}

// ZomboidDef is one enemy entry.
type ZomboidDef struct {
	ID     string  `json:"id" yaml:"id"`
	Health int     `json:"health" yaml:"health"`
	Speed  float64 `json:"speed" yaml:"speed"`
}

// ChapterFile is one chapter definition.
type ChapterFile struct {
	ChapterID   string    `json:"chapterId" yaml:"chapterId"`
	ChapterName string    `json:"chapterName" yaml:"chapterName"`
	Description string    `json:"description" yaml:"description"`
	Waves       []WaveDef `json:"waves" yaml:"waves"`
}

// WaveDef is one wave entry.
type WaveDef struct {
	WaveID       int          `json:"waveId" yaml:"waveId"`
	WaveName     string       `json:"waveName" yaml:"waveName"`
	Duration     float64      `json:"duration" yaml:"duration"`
	SpawnPattern SpawnPattern `json:"spawnPattern" yaml:"spawnPattern"`
}

// SpawnPattern lists enemy streams and timers of a wave.
type SpawnPattern struct {
	Zomboids []ZomboidSpawnDef `json:"zomboids" yaml:"zomboids"`
	Timers   []TimerSpawnDef   `json:"timers" yaml:"timers"`
}

// ZomboidSpawnDef is one enemy stream.
type ZomboidSpawnDef struct {
	Type       string   `json:"type" yaml:"type"`
	Count      int      `json:"count" yaml:"count"`
	SpawnRate  float64  `json:"spawnRate" yaml:"spawnRate"`
	SpawnDelay *float64 `json:"spawnDelay" yaml:"spawnDelay"`
}

// TimerSpawnDef is one timer pickup.
type TimerSpawnDef struct {
	Type       string   `json:"type" yaml:"type"`
	SpawnTime  float64  `json:"spawnTime" yaml:"spawnTime"`
	WeaponTier *int     `json:"weaponTier" yaml:"weaponTier"`
	StartValue *float64 `json:"startValue" yaml:"startValue"`
}

// GameData is everything the analyzer needs from a config directory.
type GameData struct {
	Dir      string
	Tables   balance.Tables
	Chapters []balance.Chapter
}

// Load reads entities/weapons, entities/zomboids, and every chapters/chapter-*
// file under dir. Chapter files whose name contains "test" are skipped.
func Load(dir string) (*GameData, error) {
	if dir == "" {
		return nil, fmt.Errorf("game config directory is empty")
	}
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("failed to stat game config directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("game config path is not a directory: %s", dir)
	}

	weaponsPath, err := findFile(filepath.Join(dir, "entities"), "weapons")
	if err != nil {
		return nil, err
	}
	var weapons WeaponsFile
	if err := decodeFile(weaponsPath, &weapons); err != nil {
		return nil, fmt.Errorf("failed to decode weapons: %w", err)
	}

	zomboidsPath, err := findFile(filepath.Join(dir, "entities"), "zomboids")
	if err != nil {
		return nil, err
	}
	var zomboids ZomboidsFile
	if err := decodeFile(zomboidsPath, &zomboids); err != nil {
		return nil, fmt.Errorf("failed to decode zomboids: %w", err)
	}

	chapterPaths, err := ChapterFiles(filepath.Join(dir, "chapters"))
	if err != nil {
		return nil, err
	}
	chapters := make([]balance.Chapter, 0, len(chapterPaths))
	for _, path := range chapterPaths {
		var cf ChapterFile
		if err := decodeFile(path, &cf); err != nil {
			return nil, fmt.Errorf("failed to decode chapter %s: %w", filepath.Base(path), err)
		}
		ch, err := cf.toChapter()
		if err != nil {
			return nil, fmt.Errorf("invalid chapter %s: %w", filepath.Base(path), err)
		}
		chapters = append(chapters, ch)
	}

	tables, err := buildTables(weapons, zomboids)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded game config",
		"dir", dir,
		"weapons", len(tables.Weapons),
		"zomboids", len(tables.Enemies),
		"chapters", len(chapters))
	return &GameData{Dir: dir, Tables: tables, Chapters: chapters}, nil
}

// ChapterFiles lists chapter files in dir sorted by name.
func ChapterFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read chapters directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "chapter-") || !supportedExt(name) {
			continue
		}
		if strings.Contains(name, "test") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

func buildTables(weapons WeaponsFile, zomboids ZomboidsFile) (balance.Tables, error) {
	if len(weapons.WeaponTypes) == 0 {
		return balance.Tables{}, fmt.Errorf("no weapon types defined")
	}
	ws := make([]balance.Weapon, 0, len(weapons.WeaponTypes))
	seenTiers := map[int]string{}
	for _, def := range weapons.WeaponTypes {
		if prev, ok := seenTiers[def.Tier]; ok {
			logger.Warning("Duplicate weapon tier, later entry wins",
				"tier", def.Tier,
				"previous", prev,
				"weapon", def.ID)
		}
		seenTiers[def.Tier] = def.ID
		ws = append(ws, balance.Weapon{
			ID:              def.ID,
			Name:            def.Name,
			Tier:            def.Tier,
			FireInterval:    def.FireRate,
			Damage:          def.Damage,
			ProjectileCount: def.ProjectileCount,
		})
	}
	if _, ok := seenTiers[balance.StartingTier]; !ok {
		logger.Warning("No weapon for the starting tier", "tier", balance.StartingTier)
	}

	es := make([]balance.Enemy, 0, len(zomboids.ZomboidTypes))
	for i, def := range zomboids.ZomboidTypes {
		if def.ID == "" {
			return balance.Tables{}, fmt.Errorf("zomboid type %d has no id", i)
		}
		es = append(es, balance.Enemy{ID: def.ID, Health: def.Health, Speed: def.Speed})
	}
	return balance.Tables{
		Weapons: balance.NewWeaponTable(ws),
		Enemies: balance.NewEnemyTable(es),
	}, nil
}

func (cf ChapterFile) toChapter() (balance.Chapter, error) {
	if cf.ChapterID == "" {
		return balance.Chapter{}, fmt.Errorf("chapterId is required")
	}
	ch := balance.Chapter{
		ID:          cf.ChapterID,
		Name:        cf.ChapterName,
		Description: cf.Description,
		Waves:       make([]balance.Wave, 0, len(cf.Waves)),
	}
	for _, wd := range cf.Waves {
		wave := balance.Wave{
			ID:       wd.WaveID,
			Name:     wd.WaveName,
			Duration: wd.Duration,
		}
		for _, z := range wd.SpawnPattern.Zomboids {
			if z.Type == "" {
				return balance.Chapter{}, fmt.Errorf("wave %d: spawn entry without type", wd.WaveID)
			}
			entry := balance.SpawnEntry{Type: z.Type, Count: z.Count, SpawnRate: z.SpawnRate}
			if z.SpawnDelay != nil {
				entry.SpawnDelay = *z.SpawnDelay
			}
			wave.Spawns = append(wave.Spawns, entry)
		}
		for _, td := range wd.SpawnPattern.Timers {
			if td.Type != UpgradeTimerType {
				continue
			}
			timer := balance.UpgradeTimer{
				SpawnTime:  td.SpawnTime,
				WeaponTier: DefaultWeaponTier,
				StartValue: DefaultStartValue,
			}
			if td.WeaponTier != nil {
				timer.WeaponTier = *td.WeaponTier
			}
			if td.StartValue != nil {
				timer.StartValue = *td.StartValue
			}
			wave.Timers = append(wave.Timers, timer)
		}
		ch.Waves = append(ch.Waves, wave)
	}
	return ch, nil
}
