package systems

import (
	"github.com/pthm-cable/drift/components"
)

// DecisionRecord is the typed form of the persisted "decision"
// component payload. Converting record map -> DecisionRecord -> record
// map is idempotent: ToMap always emits the canonical JSON-shaped form.
type DecisionRecord struct {
	Memory            components.Memory
	CurrentGoal       string
	AIType            string
	AggressionLevel   float64
	IntelligenceLevel int
}

// DecisionRecordFromMap decodes a persisted record, tolerating both
// freshly-built values and values that went through a JSON round trip.
func DecisionRecordFromMap(rec map[string]any) DecisionRecord {
	out := DecisionRecord{
		AIType:            "basic",
		AggressionLevel:   0.5,
		IntelligenceLevel: 50,
	}
	if rec == nil {
		out.Memory = emptyMemory()
		return out
	}

	if v, ok := rec["ai_type"].(string); ok {
		out.AIType = v
	}
	out.AggressionLevel = floatFromAny(rec["aggression_level"], out.AggressionLevel)
	out.IntelligenceLevel = int(floatFromAny(rec["intelligence_level"], float64(out.IntelligenceLevel)))
	if v, ok := rec["current_goal"].(string); ok {
		out.CurrentGoal = v
	}

	out.Memory = memoryFromMap(rec["memory"])
	if out.CurrentGoal != "" {
		out.Memory.CurrentGoal = out.CurrentGoal
	} else {
		out.CurrentGoal = out.Memory.CurrentGoal
	}
	return out
}

// ToMap encodes the record in its canonical persisted form.
func (r DecisionRecord) ToMap() map[string]any {
	return map[string]any{
		"memory":             memoryToMap(r.Memory),
		"current_goal":       nullableString(r.CurrentGoal),
		"ai_type":            r.AIType,
		"aggression_level":   r.AggressionLevel,
		"intelligence_level": float64(r.IntelligenceLevel),
	}
}

// StateFromRecord builds decision runtime state from a persisted
// record information. The ai_type picks the starting behavior and
// energy/alertness levels.
func StateFromRecord(rec DecisionRecord) components.DecisionState {
	var behavior string
	var energy, alertness float64
	switch rec.AIType {
	case "aggressive":
		behavior, energy, alertness = "pirate_hunt", 80.0, 60.0
	case "defensive":
		behavior, energy, alertness = "station_guard", 90.0, 30.0
	case "merchant":
		behavior, energy, alertness = "trade_run", 70.0, 20.0
	default:
		behavior, energy, alertness = "default_idle", 100.0, 0.0
	}

	state := components.NewDecisionState(behavior, energy, alertness)
	state.Memory = rec.Memory
	ensureMemoryMaps(&state.Memory)
	return state
}

func emptyMemory() components.Memory {
	m := components.Memory{}
	ensureMemoryMaps(&m)
	return m
}

func ensureMemoryMaps(m *components.Memory) {
	if m.LastSeen == nil {
		m.LastSeen = make(map[string]components.Vec2)
	}
	if m.LastSeenAt == nil {
		m.LastSeenAt = make(map[string]float64)
	}
	if m.GoalData == nil {
		m.GoalData = make(map[string]any)
	}
	if m.Blackboard == nil {
		m.Blackboard = make(map[string]any)
	}
}

// memoryToMap encodes decision memory in its canonical persisted form:
// positions as [x, y] float slices, all numbers as float64.
func memoryToMap(m components.Memory) map[string]any {
	lastSeen := make(map[string]any, len(m.LastSeen))
	for id, pos := range m.LastSeen {
		lastSeen[id] = []float64{pos.X, pos.Y}
	}
	lastSeenAt := make(map[string]any, len(m.LastSeenAt))
	for id, t := range m.LastSeenAt {
		lastSeenAt[id] = t
	}
	return map[string]any{
		"last_seen_targets": lastSeen,
		"last_seen_times":   lastSeenAt,
		"current_target":    nullableString(m.CurrentTarget),
		"current_goal":      nullableString(m.CurrentGoal),
		"goal_data":         canonicalMap(m.GoalData),
		"blackboard":        canonicalMap(m.Blackboard),
	}
}

func memoryFromMap(v any) components.Memory {
	m := emptyMemory()
	data, ok := v.(map[string]any)
	if !ok {
		return m
	}

	if targets, ok := data["last_seen_targets"].(map[string]any); ok {
		for id, raw := range targets {
			if pos, ok := vecFromAny(raw); ok {
				m.LastSeen[id] = pos
			}
		}
	}
	if times, ok := data["last_seen_times"].(map[string]any); ok {
		for id, raw := range times {
			m.LastSeenAt[id] = floatFromAny(raw, 0)
		}
	}
	if s, ok := data["current_target"].(string); ok {
		m.CurrentTarget = s
	}
	if s, ok := data["current_goal"].(string); ok {
		m.CurrentGoal = s
	}
	if goal, ok := data["goal_data"].(map[string]any); ok {
		m.GoalData = canonicalMap(goal)
	}
	if bb, ok := data["blackboard"].(map[string]any); ok {
		m.Blackboard = canonicalMap(bb)
	}
	return m
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// vecFromAny reads a position that may be a Vec2, a float slice, or a
// JSON-decoded []any.
func vecFromAny(v any) (components.Vec2, bool) {
	switch t := v.(type) {
	case components.Vec2:
		return t, true
	case []float64:
		if len(t) >= 2 {
			return components.Vec2{X: t[0], Y: t[1]}, true
		}
	case [2]float64:
		return components.Vec2{X: t[0], Y: t[1]}, true
	case []any:
		if len(t) >= 2 {
			return components.Vec2{X: floatFromAny(t[0], 0), Y: floatFromAny(t[1], 0)}, true
		}
	}
	return components.Vec2{}, false
}

func floatFromAny(v any, fallback float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return fallback
	}
}

// canonicalMap deep-copies a free-form map into its canonical
// JSON-shaped form: ints widen to float64, position-like slices become
// []float64, nested maps recurse.
func canonicalMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = canonicalValue(v)
	}
	return out
}

func canonicalValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return canonicalMap(t)
	case []float64:
		out := make([]float64, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]float64, 0, len(t))
		for _, el := range t {
			f, ok := el.(float64)
			if !ok {
				// Mixed slices pass through untouched.
				cp := make([]any, len(t))
				copy(cp, t)
				return cp
			}
			out = append(out, f)
		}
		return out
	case components.Vec2:
		return []float64{t.X, t.Y}
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
