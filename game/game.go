// Package game wires the world, behavior systems, scheduler, and
// telemetry into one runnable simulation.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/generator"
	"github.com/pthm-cable/drift/loop"
	"github.com/pthm-cable/drift/store"
	"github.com/pthm-cable/drift/systems"
	"github.com/pthm-cable/drift/telemetry"
	"github.com/pthm-cable/drift/world"
)

// Options tune a game instance beyond the config file.
type Options struct {
	OutputDir string // empty disables CSV output
	LogStats  bool   // log window stats as they flush
}

// Game owns the complete simulation state.
type Game struct {
	cfg      *config.Config
	registry *world.ComponentRegistry
	world    *world.World
	store    *store.Store
	gen      *generator.Generator

	decisions *systems.DecisionSystem
	movement  *systems.MovementSystem
	syncSys   *systems.SyncSystem

	loop      *loop.Loop
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool

	frame atomic.Pointer[FrameSnapshot]
}

// New builds a game from configuration: registry, world, systems,
// scheduler, and telemetry, with behavior documents loaded (writing
// the embedded defaults to disk first if absent).
func New(cfg *config.Config, opts Options) (*Game, error) {
	registry := world.NewComponentRegistry()
	if err := loadComponentDefs(registry, cfg.Paths.ComponentsPath); err != nil {
		return nil, fmt.Errorf("loading component definitions: %w", err)
	}

	w := world.New(registry)

	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	g := &Game{
		cfg:       cfg,
		registry:  registry,
		world:     w,
		gen:       generator.New(registry, cfg.Paths.TemplatesDir),
		decisions: systems.NewDecisionSystem(w),
		movement:  systems.NewMovementSystem(w, rng),
		syncSys:   systems.NewSyncSystem(w),
		logStats:  opts.LogStats,
	}

	st, err := store.New(cfg.Paths.MapsDir)
	if err != nil {
		return nil, err
	}
	g.store = st

	g.loadBehaviors()

	g.loop = loop.New(cfg.Loop.TargetTPS, cfg.Loop.TargetFPS)
	g.loop.SetSpeed(cfg.Loop.Speed)

	g.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindowSec, g.loop.TickInterval())
	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.output = om
	if err := g.output.WriteConfig(cfg); err != nil {
		slog.Warn("could not write config snapshot", "error", err)
	}

	g.loop.AddUpdateSystem("decision", g.updateDecision)
	g.loop.AddUpdateSystem("sync", g.updateSync)
	g.loop.AddUpdateSystem("movement", g.updateMovement)
	g.loop.AddUpdateSystem("telemetry", g.updateTelemetry)
	g.loop.AddRenderSystem("frame", g.renderFrame)

	return g, nil
}

// loadBehaviors materializes the default behavior documents when
// missing and loads both registries. A bad document leaves that
// registry empty rather than failing startup.
func (g *Game) loadBehaviors() {
	paths := g.cfg.Behaviors

	if err := ensureBehaviorDoc(paths.MovementPath, defaultMovementJSON); err != nil {
		slog.Warn("could not create default movement behaviors", "error", err)
	}
	if err := ensureBehaviorDoc(paths.DecisionPath, defaultDecisionJSON); err != nil {
		slog.Warn("could not create default decision behaviors", "error", err)
	}

	if paths.MovementPath != "" {
		if err := g.movement.Load(paths.MovementPath); err != nil {
			slog.Warn("movement behaviors not loaded", "path", paths.MovementPath, "error", err)
		}
	}
	if paths.DecisionPath != "" {
		if err := g.decisions.Load(paths.DecisionPath); err != nil {
			slog.Warn("decision behaviors not loaded", "path", paths.DecisionPath, "error", err)
		}
	}

	slog.Info("behaviors loaded",
		"movement", g.movement.Count(),
		"decision", g.decisions.Count())
}

// Generate creates a new map from a template and assigns starting
// behaviors. Empty template and zero seed fall back to the configured
// values; a zero configured seed means time-based.
func (g *Game) Generate(template string, seed int64) error {
	if template == "" {
		template = g.cfg.Generator.Template
	}
	if seed == 0 {
		seed = g.cfg.Generator.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	blueprints, err := g.gen.Generate(template, seed)
	if err != nil {
		return err
	}
	g.gen.Populate(g.world, blueprints)
	g.assignBehaviors()

	stats := g.gen.Stats(blueprints)
	slog.Info("map generated",
		"template", template,
		"seed", seed,
		"entities", stats.TotalEntities)
	return nil
}

// LoadMap loads a saved map into the world and assigns starting
// behaviors to entities that lack them.
func (g *Game) LoadMap(name string) error {
	n, err := g.store.LoadMap(g.world, name)
	if err != nil {
		return err
	}
	g.assignBehaviors()
	slog.Info("map loaded", "map", name, "entities", n)
	return nil
}

// SaveMap writes the current world to a map file.
func (g *Game) SaveMap(name string) error {
	if err := g.store.SaveMap(g.world, name); err != nil {
		return err
	}
	slog.Info("map saved", "map", name, "entities", g.world.Count())
	return nil
}

// Start launches the scheduler.
func (g *Game) Start() { g.loop.Start() }

// Stop halts the scheduler and blocks until both cadences exit.
func (g *Game) Stop() { g.loop.Stop() }

// Pause suspends logic advances; presentation keeps running.
func (g *Game) Pause() { g.loop.Pause() }

// Resume continues logic advances.
func (g *Game) Resume() { g.loop.Resume() }

// Step advances logic exactly one tick while paused.
func (g *Game) Step() { g.loop.Step() }

// SetSpeed sets the logic speed multiplier, clamped to the valid range.
func (g *Game) SetSpeed(speed float64) { g.loop.SetSpeed(speed) }

// Speed returns the current speed multiplier.
func (g *Game) Speed() float64 { return g.loop.Speed() }

// Paused reports whether logic advances are suspended.
func (g *Game) Paused() bool { return g.loop.Paused() }

// Running reports whether the scheduler is active.
func (g *Game) Running() bool { return g.loop.Running() }

// Stats returns the scheduler's live statistics.
func (g *Game) Stats() loop.Stats { return g.loop.Stats() }

// World exposes the entity world.
func (g *Game) World() *world.World { return g.world }

// Decisions exposes the decision system.
func (g *Game) Decisions() *systems.DecisionSystem { return g.decisions }

// Movement exposes the movement system.
func (g *Game) Movement() *systems.MovementSystem { return g.movement }

// Close stops the scheduler and flushes telemetry output.
func (g *Game) Close() error {
	g.loop.Stop()
	return g.output.Close()
}

func (g *Game) updateDecision(dt float64) {
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseDecision)
	g.decisions.Update(g.world, dt)
}

func (g *Game) updateSync(dt float64) {
	g.perf.StartPhase(telemetry.PhaseSync)
	g.syncSys.Update(g.world)
}

func (g *Game) updateMovement(dt float64) {
	g.perf.StartPhase(telemetry.PhaseMovement)
	g.movement.Update(g.world, dt)
}

func (g *Game) updateTelemetry(dt float64) {
	g.perf.StartPhase(telemetry.PhaseTelemetry)

	stats := g.decisions.TakeStats()
	g.collector.RecordSwitches(stats.Switches)
	g.collector.RecordSelections(stats.Kinds)
	g.collector.RecordTargetsSynced(g.syncSys.TakeSynced())

	tick := g.loop.Tick()
	if g.collector.ShouldFlush(tick) {
		g.flushWindow(tick)
	}

	g.perf.EndTick()
}

// flushWindow samples the population and emits one stats window plus a
// matching perf record.
func (g *Game) flushWindow(tick int64) {
	infos := g.world.Snapshot()

	var energies, alertness []float64
	ships := 0
	for _, info := range infos {
		if g.world.Kinematics(info.Entity) != nil {
			ships++
		}
		if state := g.world.Decision(info.Entity); state != nil {
			energies = append(energies, state.Energy)
			alertness = append(alertness, state.Alertness)
		}
	}

	ws := g.collector.Flush(tick, len(infos), ships, energies, alertness)
	if g.logStats {
		ws.LogStats()
	}
	if err := g.output.WriteTelemetry(ws); err != nil {
		slog.Error("telemetry write failed", "error", err)
	}
	if err := g.output.WritePerf(g.perf.Stats(), tick); err != nil {
		slog.Error("perf write failed", "error", err)
	}
}

// renderFrame publishes a fresh presentation snapshot.
func (g *Game) renderFrame(dt float64) {
	g.perf.RecordFrame()
	g.frame.Store(g.buildFrame())
}

// EntityReport assembles a debug view of one entity: identity,
// position, properties, component records, and live system state.
func (g *Game) EntityReport(id uuid.UUID) (map[string]any, bool) {
	e, ok := g.world.Lookup(id)
	if !ok {
		return nil, false
	}

	meta := g.world.Metadata(e)
	pos := g.world.Position(e)

	report := map[string]any{
		"id":         meta.ID.String(),
		"type":       meta.Type,
		"name":       meta.Name,
		"position":   []float64{pos.X, pos.Y},
		"properties": meta.Properties,
		"components": meta.Records,
	}

	if kin := g.world.Kinematics(e); kin != nil {
		movement := map[string]any{
			"behavior": kin.Behavior,
			"velocity": []float64{kin.Velocity.X, kin.Velocity.Y},
		}
		if kin.HasTarget {
			movement["target"] = []float64{kin.Target.X, kin.Target.Y}
		}
		report["movement"] = movement
	}

	if state := g.world.Decision(e); state != nil {
		report["decision"] = map[string]any{
			"behavior":     state.Behavior,
			"state_time":   state.StateTime,
			"energy":       state.Energy,
			"alertness":    state.Alertness,
			"current_goal": state.Memory.CurrentGoal,
		}
	}

	return report, true
}
