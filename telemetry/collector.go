package telemetry

// Collector accumulates simulation events within time windows and
// produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	behaviorSwitches int
	selections       map[string]int
	targetsSynced    int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
		selections:          make(map[string]int),
	}
}

// RecordSwitches adds behavior switch events to the current window.
func (c *Collector) RecordSwitches(n int) {
	c.behaviorSwitches += n
}

// RecordSelections merges per-kind selection counts into the current window.
func (c *Collector) RecordSelections(byKind map[string]int) {
	for kind, n := range byKind {
		c.selections[kind] += n
	}
}

// RecordTargetsSynced adds target propagation events to the current window.
func (c *Collector) RecordTargetsSynced(n int) {
	c.targetsSynced += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller must provide:
// - currentTick: the current simulation tick
// - entityCount, shipCount: current population counts
// - energies, alertness: per-ship values for percentile calculation
func (c *Collector) Flush(
	currentTick int64,
	entityCount, shipCount int,
	energies, alertness []float64,
) WindowStats {
	energyMean, energyP10, energyP50, energyP90 := ComputeDistStats(energies)
	alertMean, alertP10, alertP50, alertP90 := ComputeDistStats(alertness)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		EntityCount: entityCount,
		ShipCount:   shipCount,

		BehaviorSwitches: c.behaviorSwitches,
		IdleSelections:   c.selections["idle"],
		PatrolSelections: c.selections["patrol"],
		HuntSelections:   c.selections["hunt"],
		FleeSelections:   c.selections["flee"],
		GuardSelections:  c.selections["guard"],
		TradeSelections:  c.selections["trade"],

		TargetsSynced: c.targetsSynced,

		EnergyMean: energyMean,
		EnergyP10:  energyP10,
		EnergyP50:  energyP50,
		EnergyP90:  energyP90,

		AlertnessMean: alertMean,
		AlertnessP10:  alertP10,
		AlertnessP50:  alertP50,
		AlertnessP90:  alertP90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.behaviorSwitches = 0
	c.selections = make(map[string]int)
	c.targetsSynced = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
