package systems

// Per-kind decision configs. Defaults match the behavior kinds'
// documented parameters; fields absent from the document keep them.

type IdleConfig struct {
	EnergyRecoveryRate float64 `json:"energy_recovery_rate"`
}

func defaultIdleConfig() IdleConfig {
	return IdleConfig{EnergyRecoveryRate: 10.0}
}

type PatrolDecisionConfig struct {
	Waypoints        []pair  `json:"waypoints"`
	ArrivalTolerance float64 `json:"arrival_tolerance"`
	EnergyCost       float64 `json:"energy_cost"`
}

func defaultPatrolDecisionConfig() PatrolDecisionConfig {
	return PatrolDecisionConfig{ArrivalTolerance: 10.0, EnergyCost: 2.0}
}

type HuntConfig struct {
	DetectionRange float64  `json:"detection_range"`
	TargetTypes    []string `json:"target_types"`
	MemoryDuration float64  `json:"memory_duration"`
	EnergyCost     float64  `json:"energy_cost"`
}

func defaultHuntConfig() HuntConfig {
	return HuntConfig{
		DetectionRange: 100.0,
		TargetTypes:    []string{"cargo_ship", "mining_ship"},
		MemoryDuration: 10.0,
		EnergyCost:     5.0,
	}
}

type FleeConfig struct {
	DetectionRange float64  `json:"detection_range"`
	ThreatTypes    []string `json:"threat_types"`
	FleeRange      float64  `json:"flee_range"`
	EnergyCost     float64  `json:"energy_cost"`
}

func defaultFleeConfig() FleeConfig {
	return FleeConfig{
		DetectionRange: 80.0,
		ThreatTypes:    []string{"fighter"},
		FleeRange:      200.0,
		EnergyCost:     8.0,
	}
}

type GuardConfig struct {
	GuardPosition pair    `json:"guard_position"`
	GuardRadius   float64 `json:"guard_radius"`
	AlertRange    float64 `json:"alert_range"`
	EnergyCost    float64 `json:"energy_cost"`
}

func defaultGuardConfig() GuardConfig {
	return GuardConfig{GuardRadius: 100.0, AlertRange: 150.0, EnergyCost: 3.0}
}

type TradeConfig struct {
	TradeRoutes      [][]pair `json:"trade_routes"`
	ArrivalTolerance float64  `json:"arrival_tolerance"`
	WaitTime         float64  `json:"wait_time"`
	EnergyCost       float64  `json:"energy_cost"`
}

func defaultTradeConfig() TradeConfig {
	return TradeConfig{ArrivalTolerance: 15.0, WaitTime: 2.0, EnergyCost: 1.5}
}
