// Map generation tool - generates a map from a template and saves it,
// without running the simulation.
//
// Usage: go run ./cmd/mapgen -template basic -seed 42 -name example_basic
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/generator"
	"github.com/pthm-cable/drift/store"
	"github.com/pthm-cable/drift/world"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	template := flag.String("template", "basic", "Map template name")
	seed := flag.Int64("seed", 0, "Generation seed (0 = time-based)")
	name := flag.String("name", "", "Save the map under this name (empty = print stats only)")
	list := flag.Bool("list", false, "List built-in templates and saved maps")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	registry := world.NewComponentRegistry()
	w := world.New(registry)
	gen := generator.New(registry, cfg.Paths.TemplatesDir)

	st, err := store.New(cfg.Paths.MapsDir)
	if err != nil {
		slog.Error("failed to open map store", "error", err)
		os.Exit(1)
	}

	if *list {
		maps, err := st.ListMaps()
		if err != nil {
			slog.Error("failed to list maps", "error", err)
			os.Exit(1)
		}
		slog.Info("available", "templates", gen.Templates(), "maps", maps)
		return
	}

	genSeed := *seed
	if genSeed == 0 {
		genSeed = time.Now().UnixNano()
	}

	blueprints, err := gen.Generate(*template, genSeed)
	if err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
	gen.Populate(w, blueprints)

	stats := gen.Stats(blueprints)
	slog.Info("map generated",
		"template", *template,
		"seed", genSeed,
		"entities", stats.TotalEntities,
		"types", stats.EntityTypes)

	if *name != "" {
		if err := st.SaveMap(w, *name); err != nil {
			slog.Error("save failed", "error", err)
			os.Exit(1)
		}
		slog.Info("map saved", "name", *name)
	}
}
