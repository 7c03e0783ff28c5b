package components

// DecisionState is the decision subsystem's per-entity runtime state.
// Behavior names the currently selected decision behavior; StateTime is
// seconds since the selection last changed. Energy and Alertness are
// bounded scalars gating behavior eligibility.
type DecisionState struct {
	Behavior  string
	StateTime float64
	Energy    float64 // always in [0, 100]
	Alertness float64 // always in [0, 100]
	Memory    Memory
}

// Memory is an entity's decision working memory.
type Memory struct {
	LastSeen      map[string]Vec2    // target id -> last observed position
	LastSeenAt    map[string]float64 // target id -> sim time of observation
	CurrentTarget string
	CurrentGoal   string
	GoalData      map[string]any // waypoint/route indices, pending targets, wait timers
	Blackboard    map[string]any // behavior-private scratch
}

// NewDecisionState returns runtime state with the given starting levels
// and initialized memory maps.
func NewDecisionState(behavior string, energy, alertness float64) DecisionState {
	s := DecisionState{
		Behavior:  behavior,
		Energy:    energy,
		Alertness: alertness,
		Memory: Memory{
			LastSeen:   make(map[string]Vec2),
			LastSeenAt: make(map[string]float64),
			GoalData:   make(map[string]any),
			Blackboard: make(map[string]any),
		},
	}
	s.Clamp()
	return s
}

// Clamp bounds Energy and Alertness to [0, 100].
func (s *DecisionState) Clamp() {
	s.Energy = clamp01x100(s.Energy)
	s.Alertness = clamp01x100(s.Alertness)
}

// AddEnergy adjusts energy by delta and re-clamps.
func (s *DecisionState) AddEnergy(delta float64) {
	s.Energy = clamp01x100(s.Energy + delta)
}

// AddAlertness adjusts alertness by delta and re-clamps.
func (s *DecisionState) AddAlertness(delta float64) {
	s.Alertness = clamp01x100(s.Alertness + delta)
}

func clamp01x100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
