package systems

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mlange-42/ark/ecs"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/world"
)

var decisionSchema = jsonschema.MustCompileString("decision.schema.json", decisionSchemaJSON)

// DecisionStats counts arbitration outcomes since the last drain.
type DecisionStats struct {
	Switches   int            // behavior changes (state_time resets)
	Selections map[string]int // executions per behavior name
	Kinds      map[string]int // executions per behavior kind
}

// DecisionSystem evaluates every registered decision behavior's
// eligibility per entity per tick and executes the highest-priority
// eligible one. Registration order breaks priority ties: the
// earlier-registered behavior wins.
type DecisionSystem struct {
	behaviors []DecisionBehavior
	byName    map[string]DecisionBehavior

	filter *ecs.Filter2[components.Position, components.DecisionState]
	stats  DecisionStats
}

// NewDecisionSystem creates a decision system over the given world.
func NewDecisionSystem(w *world.World) *DecisionSystem {
	return &DecisionSystem{
		byName: make(map[string]DecisionBehavior),
		filter: ecs.NewFilter2[components.Position, components.DecisionState](w.ECS()),
		stats:  newDecisionStats(),
	}
}

// Load reads a decision registry document. On any read, parse, or
// schema failure the registry is left with zero behaviors loaded and
// the error is returned for the caller to report.
func (s *DecisionSystem) Load(path string) error {
	raws, err := loadBehaviorDoc(path, decisionSchema)
	if err != nil {
		return err
	}

	for _, raw := range raws {
		behavior, err := instantiateDecision(raw)
		if err != nil {
			return fmt.Errorf("behavior %q: %w", raw.Header.Name, err)
		}
		if behavior == nil {
			slog.Warn("unknown decision behavior kind, skipping",
				"name", raw.Header.Name, "kind", raw.Header.Type)
			continue
		}
		s.Register(behavior)
	}
	return nil
}

func instantiateDecision(raw rawBehavior) (DecisionBehavior, error) {
	base := decisionBase{
		name:     raw.Header.Name,
		kind:     raw.Header.Type,
		enabled:  raw.Header.enabled(),
		priority: raw.Header.Priority,
	}

	switch raw.Header.Type {
	case "idle":
		cfg := defaultIdleConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &IdleBehavior{decisionBase: base, cfg: cfg}, nil
	case "patrol":
		cfg := defaultPatrolDecisionConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &PatrolBehavior{decisionBase: base, cfg: cfg}, nil
	case "hunt":
		cfg := defaultHuntConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &HuntBehavior{decisionBase: base, cfg: cfg}, nil
	case "flee":
		cfg := defaultFleeConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &FleeBehavior{decisionBase: base, cfg: cfg}, nil
	case "guard":
		cfg := defaultGuardConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &GuardBehavior{decisionBase: base, cfg: cfg}, nil
	case "trade":
		cfg := defaultTradeConfig()
		if err := json.Unmarshal(raw.Raw, &cfg); err != nil {
			return nil, err
		}
		return &TradeBehavior{decisionBase: base, cfg: cfg}, nil
	default:
		return nil, nil
	}
}

// Register appends a behavior. Position in the registration sequence is
// the tie-break rank, so callers control it through document order.
func (s *DecisionSystem) Register(b DecisionBehavior) {
	if _, exists := s.byName[b.Name()]; exists {
		// Re-registration replaces in place, keeping the original rank.
		for i, old := range s.behaviors {
			if old.Name() == b.Name() {
				s.behaviors[i] = b
				break
			}
		}
		s.byName[b.Name()] = b
		return
	}
	s.behaviors = append(s.behaviors, b)
	s.byName[b.Name()] = b
}

// Behavior returns the named behavior.
func (s *DecisionSystem) Behavior(name string) (DecisionBehavior, bool) {
	b, ok := s.byName[name]
	return b, ok
}

// Count returns the number of registered behaviors.
func (s *DecisionSystem) Count() int {
	return len(s.behaviors)
}

// AssignOptions tune the initial runtime state and persisted record
// created by Assign.
type AssignOptions struct {
	Energy            float64
	Alertness         float64
	CurrentGoal       string
	AggressionLevel   float64
	IntelligenceLevel int
}

// DefaultAssignOptions returns the standard starting levels.
func DefaultAssignOptions() AssignOptions {
	return AssignOptions{
		Energy:            100.0,
		Alertness:         0.0,
		AggressionLevel:   0.5,
		IntelligenceLevel: 50,
	}
}

// Assign gives an entity decision runtime state starting in the named
// behavior, and writes a fresh "decision" record with an ai_type
// derived from that behavior.
func (s *DecisionSystem) Assign(w *world.World, e ecs.Entity, initialBehavior string, opts AssignOptions) {
	state := components.NewDecisionState(initialBehavior, opts.Energy, opts.Alertness)
	state.Memory.CurrentGoal = opts.CurrentGoal
	w.AddDecision(e, state)

	rec := DecisionRecord{
		Memory:            state.Memory,
		CurrentGoal:       opts.CurrentGoal,
		AIType:            aiTypeForBehavior(initialBehavior),
		AggressionLevel:   opts.AggressionLevel,
		IntelligenceLevel: opts.IntelligenceLevel,
	}
	w.SetRecord(e, "decision", rec.ToMap())
}

// SetBehavior forces an entity into a specific behavior.
func (s *DecisionSystem) SetBehavior(w *world.World, e ecs.Entity, name string) {
	state := w.Decision(e)
	if state == nil {
		return
	}
	state.Behavior = name
	state.StateTime = 0
}

// aiTypeForBehavior maps a starting behavior name to the persisted
// ai_type classification.
func aiTypeForBehavior(behavior string) string {
	switch {
	case strings.Contains(behavior, "hunt") || strings.Contains(behavior, "pirate"):
		return "aggressive"
	case strings.Contains(behavior, "guard") || strings.Contains(behavior, "defend"):
		return "defensive"
	case strings.Contains(behavior, "trade") || strings.Contains(behavior, "merchant"):
		return "merchant"
	default:
		return "basic"
	}
}

// Update runs one arbitration pass over every entity with decision
// state: sync with the persisted record, select the highest-priority
// eligible behavior, execute it, sync back.
func (s *DecisionSystem) Update(w *world.World, dt float64) {
	entities := w.Snapshot()
	s.autoAssign(w, entities)

	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		pos, state := query.Get()
		meta := w.Metadata(e)

		ctx := &DecisionContext{
			ID:       meta.ID,
			Type:     meta.Type,
			Pos:      *pos,
			State:    state,
			Entities: entities,
		}

		s.syncRecord(w, e, state)

		var best DecisionBehavior
		for _, b := range s.behaviors {
			if !b.Enabled() || !b.Eligible(ctx) {
				continue
			}
			if best == nil || b.Priority() > best.Priority() {
				best = b
			}
		}
		if best == nil {
			// Nothing eligible: state is left untouched this tick.
			continue
		}

		if state.Behavior != best.Name() {
			state.Behavior = best.Name()
			state.StateTime = 0
			s.stats.Switches++
		}
		state.StateTime += dt
		best.Apply(ctx, dt)
		s.stats.Selections[best.Name()]++
		s.stats.Kinds[best.Kind()]++

		s.syncRecord(w, e, state)
	}
}

// autoAssign creates runtime state for entities that carry a persisted
// "decision" record but have no assignment yet. This is how externally
// loaded or edited entities enter arbitration.
func (s *DecisionSystem) autoAssign(w *world.World, entities []world.EntityInfo) {
	for _, info := range entities {
		if w.Decision(info.Entity) != nil {
			continue
		}
		rec := w.Record(info.Entity, "decision")
		if rec == nil {
			continue
		}
		state := StateFromRecord(DecisionRecordFromMap(rec))
		w.AddDecision(info.Entity, state)
	}
}

// syncRecord mirrors runtime state into the persisted "decision" record
// and applies the record's aggression tunable back onto alertness. The
// feedback is a flat adjustment per sync, clamped with the rest.
func (s *DecisionSystem) syncRecord(w *world.World, e ecs.Entity, state *components.DecisionState) {
	// A missing record is instantiated from the registry's defaults, so
	// directly-attached states still get mirrored.
	rec := w.EnsureRecord(e, "decision")
	if rec == nil {
		return
	}

	// An externally edited goal on the record wins over the runtime one.
	if goal, ok := rec["current_goal"].(string); ok {
		state.Memory.CurrentGoal = goal
	}

	rec["memory"] = memoryToMap(state.Memory)
	rec["current_goal"] = nullableString(state.Memory.CurrentGoal)

	aggression := floatFromAny(rec["aggression_level"], 0.5)
	if aggression > 0.7 {
		state.AddAlertness(10.0)
	} else if aggression < 0.3 {
		state.AddAlertness(-5.0)
	}
}

// TakeStats returns the counters accumulated since the previous call
// and resets them.
func (s *DecisionSystem) TakeStats() DecisionStats {
	out := s.stats
	s.stats = newDecisionStats()
	return out
}

func newDecisionStats() DecisionStats {
	return DecisionStats{
		Selections: make(map[string]int),
		Kinds:      make(map[string]int),
	}
}
