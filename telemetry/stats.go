package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated simulation statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	EntityCount int `csv:"entities"`
	ShipCount   int `csv:"ships"`

	// Decision activity during window
	BehaviorSwitches int `csv:"behavior_switches"`
	IdleSelections   int `csv:"idle_selections"`
	PatrolSelections int `csv:"patrol_selections"`
	HuntSelections   int `csv:"hunt_selections"`
	FleeSelections   int `csv:"flee_selections"`
	GuardSelections  int `csv:"guard_selections"`
	TradeSelections  int `csv:"trade_selections"`

	// Target propagation during window
	TargetsSynced int `csv:"targets_synced"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Alertness distribution (sampled at window end)
	AlertnessMean float64 `csv:"alertness_mean"`
	AlertnessP10  float64 `csv:"alertness_p10"`
	AlertnessP50  float64 `csv:"alertness_p50"`
	AlertnessP90  float64 `csv:"alertness_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistStats calculates mean and percentiles from sampled values.
func ComputeDistStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("entities", s.EntityCount),
		slog.Int("ships", s.ShipCount),
		slog.Int("behavior_switches", s.BehaviorSwitches),
		slog.Int("idle_selections", s.IdleSelections),
		slog.Int("patrol_selections", s.PatrolSelections),
		slog.Int("hunt_selections", s.HuntSelections),
		slog.Int("flee_selections", s.FleeSelections),
		slog.Int("guard_selections", s.GuardSelections),
		slog.Int("trade_selections", s.TradeSelections),
		slog.Int("targets_synced", s.TargetsSynced),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("alertness_mean", s.AlertnessMean),
		slog.Float64("alertness_p10", s.AlertnessP10),
		slog.Float64("alertness_p50", s.AlertnessP50),
		slog.Float64("alertness_p90", s.AlertnessP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"entities", s.EntityCount,
		"ships", s.ShipCount,
		"behavior_switches", s.BehaviorSwitches,
		"idle_selections", s.IdleSelections,
		"patrol_selections", s.PatrolSelections,
		"hunt_selections", s.HuntSelections,
		"flee_selections", s.FleeSelections,
		"guard_selections", s.GuardSelections,
		"trade_selections", s.TradeSelections,
		"targets_synced", s.TargetsSynced,
		"energy_mean", s.EnergyMean,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
		"alertness_mean", s.AlertnessMean,
		"alertness_p10", s.AlertnessP10,
		"alertness_p50", s.AlertnessP50,
		"alertness_p90", s.AlertnessP90,
	)
}
