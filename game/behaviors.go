package game

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/drift/systems"
	"github.com/pthm-cable/drift/world"
)

//go:embed data/movement.json
var defaultMovementJSON []byte

//go:embed data/decision.json
var defaultDecisionJSON []byte

// ensureBehaviorDoc writes the embedded default document to path if no
// file exists there yet.
func ensureBehaviorDoc(path string, defaults []byte) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating behaviors directory: %w", err)
	}
	if err := os.WriteFile(path, defaults, 0644); err != nil {
		return fmt.Errorf("writing default behaviors %s: %w", path, err)
	}
	return nil
}

// behaviorAssignment names the movement and decision behaviors an
// entity type starts with. Empty names mean no assignment.
type behaviorAssignment struct {
	movement string
	decision string
}

// assignmentForType maps entity types to their starting behaviors.
// Celestial bodies get nothing, stations guard without moving, and
// anything unrecognized gets the slow defaults.
func assignmentForType(entityType string) behaviorAssignment {
	switch entityType {
	case "fighter":
		return behaviorAssignment{movement: "fast_patrol", decision: "pirate_hunt"}
	case "cargo_ship":
		return behaviorAssignment{movement: "cargo_route", decision: "trade_run"}
	case "mining_ship":
		return behaviorAssignment{movement: "exploration", decision: "default_idle"}
	case "space_station":
		return behaviorAssignment{decision: "station_guard"}
	case "star", "planet", "asteroid":
		return behaviorAssignment{}
	default:
		return behaviorAssignment{movement: "slow_patrol", decision: "default_idle"}
	}
}

// assignBehaviors gives every entity in the world its type's starting
// behaviors. Entities that already have assignments keep them.
func (g *Game) assignBehaviors() {
	for _, info := range g.world.Snapshot() {
		a := assignmentForType(info.Type)

		if a.movement != "" && g.world.Kinematics(info.Entity) == nil {
			g.movement.Assign(g.world, info.Entity, a.movement)
		}
		if a.decision != "" && g.world.Decision(info.Entity) == nil {
			g.decisions.Assign(g.world, info.Entity, a.decision, assignOptionsForType(info.Type))
		}
	}
}

// assignOptionsForType tunes the persisted decision record per type.
func assignOptionsForType(entityType string) systems.AssignOptions {
	opts := systems.DefaultAssignOptions()
	switch entityType {
	case "fighter":
		opts.Energy = 80.0
		opts.Alertness = 60.0
		opts.AggressionLevel = 0.8
	case "space_station":
		opts.Energy = 90.0
		opts.Alertness = 30.0
		opts.AggressionLevel = 0.4
	case "cargo_ship":
		opts.Energy = 70.0
		opts.Alertness = 20.0
		opts.AggressionLevel = 0.2
	}
	return opts
}

// loadComponentDefs merges extra component definitions into the
// registry when a definitions file is configured and present.
func loadComponentDefs(registry *world.ComponentRegistry, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return registry.LoadFile(path)
}
