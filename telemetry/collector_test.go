package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindowTicks(t *testing.T) {
	// 10 second windows at 20 TPS.
	c := NewCollector(10.0, 0.05)
	if c.WindowDurationTicks() != 200 {
		t.Errorf("window = %d ticks, want 200", c.WindowDurationTicks())
	}

	// Degenerate windows still flush every tick.
	c = NewCollector(0.01, 0.05)
	if c.WindowDurationTicks() != 1 {
		t.Errorf("window = %d ticks, want clamped to 1", c.WindowDurationTicks())
	}
}

func TestCollectorShouldFlush(t *testing.T) {
	c := NewCollector(1.0, 0.05) // 20 ticks per window

	if c.ShouldFlush(19) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(20) {
		t.Error("should flush at the window boundary")
	}

	c.Flush(20, 0, 0, nil, nil)
	if c.ShouldFlush(39) {
		t.Error("flush should start a new window")
	}
	if !c.ShouldFlush(40) {
		t.Error("second window should end 20 ticks after the first flush")
	}
}

func TestCollectorFlushAggregatesAndResets(t *testing.T) {
	c := NewCollector(1.0, 0.05)

	c.RecordSwitches(3)
	c.RecordSwitches(2)
	c.RecordSelections(map[string]int{"idle": 10, "hunt": 4})
	c.RecordSelections(map[string]int{"idle": 5, "trade": 1})
	c.RecordTargetsSynced(7)

	stats := c.Flush(20, 25, 8, []float64{40, 60}, []float64{10, 30})

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 20 {
		t.Errorf("window = [%d, %d], want [0, 20]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("sim time = %v, want 1.0", stats.SimTimeSec)
	}
	if stats.EntityCount != 25 || stats.ShipCount != 8 {
		t.Errorf("population = (%d, %d), want (25, 8)", stats.EntityCount, stats.ShipCount)
	}
	if stats.BehaviorSwitches != 5 {
		t.Errorf("switches = %d, want 5", stats.BehaviorSwitches)
	}
	if stats.IdleSelections != 15 || stats.HuntSelections != 4 || stats.TradeSelections != 1 {
		t.Errorf("selections = (%d, %d, %d), want (15, 4, 1)",
			stats.IdleSelections, stats.HuntSelections, stats.TradeSelections)
	}
	if stats.TargetsSynced != 7 {
		t.Errorf("targets synced = %d, want 7", stats.TargetsSynced)
	}
	if math.Abs(stats.EnergyMean-50) > 1e-9 {
		t.Errorf("energy mean = %v, want 50", stats.EnergyMean)
	}
	if math.Abs(stats.AlertnessMean-20) > 1e-9 {
		t.Errorf("alertness mean = %v, want 20", stats.AlertnessMean)
	}

	// Counters are reset; the next window starts empty.
	next := c.Flush(40, 0, 0, nil, nil)
	if next.BehaviorSwitches != 0 || next.IdleSelections != 0 || next.TargetsSynced != 0 {
		t.Errorf("second window = %+v, want counters reset", next)
	}
	if next.WindowStartTick != 20 {
		t.Errorf("second window start = %d, want 20", next.WindowStartTick)
	}
}
