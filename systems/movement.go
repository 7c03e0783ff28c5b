package systems

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/world"
)

var movementSchema = jsonschema.MustCompileString("movement.schema.json", movementSchemaJSON)

// DefaultMaxSpeed is the speed cap kinematics start with before any
// behavior-specific limit applies.
const DefaultMaxSpeed = 100.0

// MovementSystem dispatches each entity's single assigned movement
// behavior every tick. There is no eligibility or priority concept.
type MovementSystem struct {
	behaviors map[string]MovementBehavior
	rng       *rand.Rand

	filter *ecs.Filter2[components.Position, components.Kinematics]
}

// NewMovementSystem creates a movement system over the given world.
// The rng seeds wander headings.
func NewMovementSystem(w *world.World, rng *rand.Rand) *MovementSystem {
	return &MovementSystem{
		behaviors: make(map[string]MovementBehavior),
		rng:       rng,
		filter:    ecs.NewFilter2[components.Position, components.Kinematics](w.ECS()),
	}
}

// Load reads a movement registry document. On any read, parse, or
// schema failure the registry is left with zero behaviors loaded and
// the error is returned for the caller to report.
func (s *MovementSystem) Load(path string) error {
	raws, err := loadBehaviorDoc(path, movementSchema)
	if err != nil {
		return err
	}

	for _, raw := range raws {
		behavior, err := s.instantiate(raw)
		if err != nil {
			return fmt.Errorf("behavior %q: %w", raw.Header.Name, err)
		}
		if behavior == nil {
			slog.Warn("unknown movement behavior kind, skipping",
				"name", raw.Header.Name, "kind", raw.Header.Type)
			continue
		}
		s.behaviors[raw.Header.Name] = behavior
	}
	return nil
}

// instantiate builds the typed behavior for one definition, or nil for
// an unknown kind.
func (s *MovementSystem) instantiate(raw rawBehavior) (MovementBehavior, error) {
	base := movementBase{name: raw.Header.Name, enabled: raw.Header.enabled()}

	switch raw.Header.Type {
	case "linear":
		cfg := defaultLinearConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &LinearMovement{movementBase: base, cfg: cfg}, nil
	case "circular":
		cfg := defaultCircularConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &CircularMovement{movementBase: base, cfg: cfg}, nil
	case "orbit":
		cfg := defaultOrbitConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &OrbitMovement{movementBase: base, cfg: cfg}, nil
	case "patrol":
		cfg := defaultPatrolConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &PatrolMovement{movementBase: base, cfg: cfg}, nil
	case "wander":
		cfg := defaultWanderConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &WanderMovement{
			movementBase: base,
			cfg:          cfg,
			rng:          s.rng,
			direction:    s.rng.Float64() * 2 * math.Pi,
		}, nil
	case "seek":
		cfg := defaultSeekConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &SeekMovement{movementBase: base, cfg: cfg}, nil
	default:
		return nil, nil
	}
}

// Register adds a behavior directly, keyed by its name.
func (s *MovementSystem) Register(b MovementBehavior) {
	s.behaviors[b.Name()] = b
}

// Behavior returns the named behavior.
func (s *MovementSystem) Behavior(name string) (MovementBehavior, bool) {
	b, ok := s.behaviors[name]
	return b, ok
}

// Count returns the number of loaded behaviors.
func (s *MovementSystem) Count() int {
	return len(s.behaviors)
}

// Assign gives an entity the named movement behavior, creating its
// kinematics record. An unknown name is reported and ignored.
func (s *MovementSystem) Assign(w *world.World, e ecs.Entity, name string) {
	if _, ok := s.behaviors[name]; !ok {
		slog.Warn("unknown movement behavior", "name", name)
		return
	}
	w.AddKinematics(e, components.Kinematics{
		Behavior: name,
		MaxSpeed: DefaultMaxSpeed,
	})
}

// SetTarget sets the target position on an entity's kinematics. A no-op
// for entities without a movement assignment.
func (s *MovementSystem) SetTarget(w *world.World, e ecs.Entity, target components.Vec2) {
	kin := w.Kinematics(e)
	if kin == nil {
		return
	}
	kin.SetTarget(target)
}

// Update steps every entity with an assigned movement behavior.
// Entities whose assigned name is unknown or disabled are skipped.
func (s *MovementSystem) Update(_ *world.World, dt float64) {
	query := s.filter.Query()
	for query.Next() {
		pos, kin := query.Get()
		behavior, ok := s.behaviors[kin.Behavior]
		if !ok || !behavior.Enabled() {
			continue
		}
		behavior.Step(pos, kin, dt)
	}
}
