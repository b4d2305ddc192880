package gamedata

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeGameDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "entities", "weapons.json"), `{
  "weaponTypes": [
    {"id": "pistol", "name": "Pistol", "tier": 1, "fireRate": 0.5, "damage": 10, "projectileCount": 1, "spread": 0},
    {"id": "shotgun", "name": "Shotgun", "tier": 3, "fireRate": 1.0, "damage": 8, "projectileCount": 5}
  ]
}`)
	writeFile(t, filepath.Join(dir, "entities", "zomboids.yaml"), `zomboidTypes:
  - id: basic
    health: 50
    speed: 40
  - id: tank
    health: 400
    speed: 15
`)
	writeFile(t, filepath.Join(dir, "chapters", "chapter-2.yaml"), `chapterId: chapter-2
chapterName: Downtown
waves:
  - waveId: 1
    waveName: Rush
    duration: 45
    spawnPattern:
      zomboids:
        - {type: tank, count: 2, spawnRate: 0.1, spawnDelay: 10}
`)
	writeFile(t, filepath.Join(dir, "chapters", "chapter-1.json"), `{
  "chapterId": "chapter-1",
  "chapterName": "Outskirts",
  "waves": [
    {
      "waveId": 1,
      "waveName": "First Contact",
      "duration": 30,
      "spawnPattern": {
        "zomboids": [{"type": "basic", "count": 10, "spawnRate": 0.5, "columns": ["left"]}],
        "timers": [
          {"type": "weapon_upgrade_timer", "spawnTime": 12},
          {"type": "weapon_upgrade_timer", "spawnTime": 20, "weaponTier": 3, "startValue": -24},
          {"type": "hero_timer", "spawnTime": 5, "startValue": -10}
        ]
      }
    }
  ]
}`)
	writeFile(t, filepath.Join(dir, "chapters", "chapter-test.json"), `{"chapterId": "chapter-test", "waves": []}`)
	writeFile(t, filepath.Join(dir, "chapters", "README.md"), "not a chapter")
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeGameDir(t)
	data, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(data.Tables.Weapons) != 2 {
		t.Fatalf("expected 2 weapons, got %d", len(data.Tables.Weapons))
	}
	if w := data.Tables.Weapons[3]; w.ID != "shotgun" || w.FireInterval != 1.0 || w.ProjectileCount != 5 {
		t.Fatalf("unexpected tier 3 weapon: %+v", w)
	}
	if e := data.Tables.Enemies["tank"]; e.Health != 400 || e.Speed != 15 {
		t.Fatalf("unexpected tank: %+v", e)
	}
	if len(data.Chapters) != 2 {
		t.Fatalf("expected 2 chapters (test chapter skipped), got %d", len(data.Chapters))
	}
	if data.Chapters[0].ID != "chapter-1" || data.Chapters[1].ID != "chapter-2" {
		t.Fatalf("unexpected chapter order: %q, %q", data.Chapters[0].ID, data.Chapters[1].ID)
	}

	wave := data.Chapters[0].Waves[0]
	if len(wave.Timers) != 2 {
		t.Fatalf("expected only upgrade timers, got %+v", wave.Timers)
	}
	if wave.Timers[0].WeaponTier != DefaultWeaponTier || wave.Timers[0].StartValue != DefaultStartValue {
		t.Fatalf("expected timer defaults, got %+v", wave.Timers[0])
	}
	if wave.Timers[1].WeaponTier != 3 || wave.Timers[1].StartValue != -24 {
		t.Fatalf("unexpected explicit timer: %+v", wave.Timers[1])
	}
	if wave.Spawns[0].SpawnDelay != 0 {
		t.Fatalf("expected default spawn delay 0, got %v", wave.Spawns[0].SpawnDelay)
	}
	if got := data.Chapters[1].Waves[0].Spawns[0].SpawnDelay; got != 10 {
		t.Fatalf("expected yaml spawn delay 10, got %v", got)
	}
}

func TestLoadFractionalSpeed(t *testing.T) {
	dir := writeGameDir(t)
	if err := os.Remove(filepath.Join(dir, "entities", "zomboids.yaml")); err != nil {
		t.Fatalf("remove yaml zomboids: %v", err)
	}
	writeFile(t, filepath.Join(dir, "entities", "zomboids.json"), `{
  "zomboidTypes": [
    {"id": "basic", "health": 50, "speed": 1.5},
    {"id": "tank", "health": 400, "speed": 0.75}
  ]
}`)
	data, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if e := data.Tables.Enemies["basic"]; e.Speed != 1.5 {
		t.Fatalf("expected fractional speed 1.5, got %+v", e)
	}
}

func TestLoadMissingWeapons(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "entities", "zomboids.json"), `{"zomboidTypes": []}`)
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for missing weapons file")
	}
}

func TestLoadRejectsChapterWithoutID(t *testing.T) {
	dir := writeGameDir(t)
	writeFile(t, filepath.Join(dir, "chapters", "chapter-3.json"), `{"chapterName": "Nameless", "waves": []}`)
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for chapter without id")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := writeGameDir(t)
	writeFile(t, filepath.Join(dir, "entities", "weapons.json"), `{"weaponTypes": [`)
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestChapterFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"chapter-3.json", "chapter-1.yml", "chapter-2-test.json", "other.json"} {
		writeFile(t, filepath.Join(dir, name), "{}")
	}
	paths, err := ChapterFiles(dir)
	if err != nil {
		t.Fatalf("chapter files: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 chapter files, got %v", paths)
	}
	if filepath.Base(paths[0]) != "chapter-1.yml" || filepath.Base(paths[1]) != "chapter-3.json" {
		t.Fatalf("unexpected order: %v", paths)
	}
}
