package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	mapName := flag.String("map", "", "Load a saved map instead of generating")
	template := flag.String("template", "", "Map template to generate (empty = use config)")
	seed := flag.Int64("seed", 0, "Generation seed (0 = use config, config 0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	saveAs := flag.String("save", "", "Save the map under this name after setup")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	g, err := game.New(cfg, game.Options{
		OutputDir: *outputDir,
		LogStats:  *logStats,
	})
	if err != nil {
		slog.Error("failed to build game", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	if *mapName != "" {
		err = g.LoadMap(*mapName)
	} else {
		err = g.Generate(*template, *seed)
	}
	if err != nil {
		slog.Error("failed to set up map", "error", err)
		os.Exit(1)
	}

	if *saveAs != "" {
		if err := g.SaveMap(*saveAs); err != nil {
			slog.Error("failed to save map", "error", err)
			os.Exit(1)
		}
	}

	g.Start()

	if *headless {
		runHeadless(g, *maxTicks)
		return
	}
	runGraphical(g, cfg, *maxTicks)
}

// runHeadless polls until maxTicks is reached, or forever when zero.
func runHeadless(g *game.Game, maxTicks int64) {
	slog.Info("running headless", "max_ticks", maxTicks)
	for {
		time.Sleep(100 * time.Millisecond)
		if maxTicks > 0 && g.Stats().Tick >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Stats().Tick)
			return
		}
	}
}

// runGraphical owns the raylib window on the main thread and draws the
// latest published frame at the display's pace.
func runGraphical(g *game.Game, cfg *config.Config, maxTicks int64) {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Drift")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	r := renderer.New(cfg.Screen.Width, cfg.Screen.Height, cfg.World.Width, cfg.World.Height)
	controls := ui.NewControls(10, int32(cfg.Screen.Height)-80)

	for !rl.WindowShouldClose() {
		r.HandleInput()
		frame := g.Frame()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		r.Draw(frame)
		if frame != nil {
			ui.DrawHUD(frame.Stats, len(frame.Entities))
		}

		action := controls.Draw(g.Paused(), g.Speed())
		applyAction(g, action)

		rl.EndDrawing()

		if maxTicks > 0 && g.Stats().Tick >= maxTicks {
			break
		}
	}
}

func applyAction(g *game.Game, action ui.Action) {
	if action.TogglePause {
		if g.Paused() {
			g.Resume()
		} else {
			g.Pause()
		}
	}
	if action.Step {
		g.Step()
	}
	if action.SpeedChanged {
		g.SetSpeed(action.Speed)
	}
}
