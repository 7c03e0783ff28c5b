package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/pthm-cable/drift/config"
)

// newTestGame builds a game with all file paths pointed at a temp
// directory so default behavior documents and maps land there.
func newTestGame(t *testing.T, seed int64) *Game {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load default config: %v", err)
	}

	dir := t.TempDir()
	cfg.Paths.MapsDir = filepath.Join(dir, "maps")
	cfg.Paths.TemplatesDir = filepath.Join(dir, "templates")
	cfg.Behaviors.MovementPath = filepath.Join(dir, "behaviors", "movement.json")
	cfg.Behaviors.DecisionPath = filepath.Join(dir, "behaviors", "decision.json")
	cfg.Generator.Seed = seed

	g, err := New(cfg, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

// ---------- startup ----------

func TestNewWritesDefaultBehaviorDocs(t *testing.T) {
	g := newTestGame(t, 1)

	for _, path := range []string{
		g.cfg.Behaviors.MovementPath,
		g.cfg.Behaviors.DecisionPath,
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("behavior document %s not written: %v", path, err)
		}
	}

	if got := g.Movement().Count(); got == 0 {
		t.Error("no movement behaviors loaded from defaults")
	}
	if got := g.Decisions().Count(); got == 0 {
		t.Error("no decision behaviors loaded from defaults")
	}
}

// ---------- map generation and behavior assignment ----------

func TestGenerateBasicPopulatesWorld(t *testing.T) {
	g := newTestGame(t, 1)

	if err := g.Generate("basic", 7); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// basic: 1 star, 3 planets, 15 asteroids, 2 stations.
	if got := g.World().Count(); got != 21 {
		t.Errorf("entity count = %d, want 21", got)
	}

	stations := 0
	for _, info := range g.World().Snapshot() {
		switch info.Type {
		case "space_station":
			stations++
			state := g.World().Decision(info.Entity)
			if state == nil {
				t.Fatalf("station %s has no decision state", info.ID)
			}
			if state.Behavior != "station_guard" {
				t.Errorf("station behavior = %q, want station_guard", state.Behavior)
			}
			if g.World().Kinematics(info.Entity) != nil {
				t.Error("station should not move")
			}
			rec := g.World().Record(info.Entity, "decision")
			if rec == nil {
				t.Fatal("station has no persisted decision record")
			}
			if got := rec["ai_type"]; got != "defensive" {
				t.Errorf("station ai_type = %v, want defensive", got)
			}
		case "star", "planet", "asteroid":
			if g.World().Kinematics(info.Entity) != nil {
				t.Errorf("%s should have no kinematics", info.Type)
			}
			if g.World().Decision(info.Entity) != nil {
				t.Errorf("%s should have no decision state", info.Type)
			}
		}
	}
	if stations != 2 {
		t.Errorf("stations = %d, want 2", stations)
	}
}

// ---------- paused stepping drives the full pipeline ----------

func TestPausedStepAdvancesPipeline(t *testing.T) {
	g := newTestGame(t, 1)
	if err := g.Generate("basic", 11); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	g.Start()
	g.Pause()

	for i := 0; i < 5; i++ {
		g.Step()
	}

	stats := g.Stats()
	if stats.Tick != 5 {
		t.Errorf("tick = %d, want 5", stats.Tick)
	}
	if !stats.Paused {
		t.Error("stepping should leave the game paused")
	}

	// Stations run station_guard, so their state time accumulates one
	// tick interval per step.
	for _, info := range g.World().Snapshot() {
		if info.Type != "space_station" {
			continue
		}
		state := g.World().Decision(info.Entity)
		if state == nil {
			t.Fatal("station lost its decision state")
		}
		if state.StateTime <= 0 {
			t.Errorf("station state time = %v, want > 0 after stepping", state.StateTime)
		}
	}

	g.Stop()
	if g.Running() {
		t.Error("still running after Stop")
	}
}

func TestSetSpeedClamps(t *testing.T) {
	g := newTestGame(t, 1)

	g.SetSpeed(99)
	if got := g.Speed(); got != 10.0 {
		t.Errorf("speed = %v, want 10.0", got)
	}
	g.SetSpeed(0.001)
	if got := g.Speed(); got != 0.1 {
		t.Errorf("speed = %v, want 0.1", got)
	}
}

// ---------- persistence round trip ----------

func TestSaveLoadMapRoundTrip(t *testing.T) {
	g := newTestGame(t, 1)
	if err := g.Generate("basic", 13); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := g.SaveMap("alpha"); err != nil {
		t.Fatalf("SaveMap: %v", err)
	}

	// A second game over the same maps directory sees the save.
	cfg2, err := config.Load("")
	if err != nil {
		t.Fatalf("Load default config: %v", err)
	}
	cfg2.Paths.MapsDir = g.cfg.Paths.MapsDir
	cfg2.Paths.TemplatesDir = g.cfg.Paths.TemplatesDir
	cfg2.Behaviors = g.cfg.Behaviors
	cfg2.Generator.Seed = 1

	g2, err := New(cfg2, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g2.Close()

	if err := g2.LoadMap("alpha"); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if got := g2.World().Count(); got != 21 {
		t.Errorf("loaded entity count = %d, want 21", got)
	}

	// Identity survives the round trip.
	for _, info := range g.World().Snapshot() {
		if _, ok := g2.World().Lookup(info.ID); !ok {
			t.Errorf("entity %s missing after load", info.ID)
		}
	}
}

// ---------- entity reports ----------

func TestEntityReport(t *testing.T) {
	g := newTestGame(t, 1)
	if err := g.Generate("basic", 17); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var stationID uuid.UUID
	for _, info := range g.World().Snapshot() {
		if info.Type == "space_station" {
			stationID = info.ID
			break
		}
	}

	report, ok := g.EntityReport(stationID)
	if !ok {
		t.Fatal("EntityReport returned false for a known entity")
	}
	if report["type"] != "space_station" {
		t.Errorf("report type = %v, want space_station", report["type"])
	}
	if _, ok := report["decision"]; !ok {
		t.Error("station report missing decision section")
	}
	if _, ok := report["movement"]; ok {
		t.Error("station report should have no movement section")
	}

	if _, ok := g.EntityReport(uuid.New()); ok {
		t.Error("EntityReport returned true for an unknown id")
	}
}
