package loop

import (
	"math"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	l := New(0, 0)
	if got := l.TickInterval(); math.Abs(got-1.0/20) > 1e-9 {
		t.Errorf("default tick interval = %v, want %v", got, 1.0/20)
	}
	if l.Speed() != 1.0 {
		t.Errorf("default speed = %v, want 1.0", l.Speed())
	}
	if l.Running() {
		t.Error("new scheduler should not be running")
	}
}

func TestTickInterval(t *testing.T) {
	l := New(50, 60)
	if got := l.TickInterval(); math.Abs(got-0.02) > 1e-9 {
		t.Errorf("tick interval = %v, want 0.02", got)
	}
}

func TestSetSpeedClamps(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below min", 0.01, MinSpeed},
		{"at min", 0.1, 0.1},
		{"normal", 2.5, 2.5},
		{"at max", 10.0, 10.0},
		{"above max", 50.0, MaxSpeed},
		{"negative", -1.0, MinSpeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(20, 60)
			l.SetSpeed(tt.in)
			if got := l.Speed(); got != tt.want {
				t.Errorf("SetSpeed(%v): speed = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStepAdvancesExactlyOnce(t *testing.T) {
	// 1 TPS keeps the cadence from firing on its own during the test.
	l := New(1, 60)

	ticks := 0
	var lastDT float64
	l.AddUpdateSystem("count", func(dt float64) {
		ticks++
		lastDT = dt
	})

	l.Start()
	defer l.Stop()
	l.Pause()

	for i := 0; i < 3; i++ {
		l.Step()
	}

	if ticks != 3 {
		t.Errorf("expected 3 callback invocations, got %d", ticks)
	}
	if l.Tick() != 3 {
		t.Errorf("tick counter = %d, want 3", l.Tick())
	}
	if math.Abs(lastDT-1.0) > 1e-9 {
		t.Errorf("step dt = %v, want nominal interval 1.0", lastDT)
	}
	if !l.Paused() {
		t.Error("step should leave the pause flag untouched")
	}
}

func TestStepNoOpWhenStopped(t *testing.T) {
	l := New(1, 60)
	ticks := 0
	l.AddUpdateSystem("count", func(dt float64) { ticks++ })

	l.Step()

	if ticks != 0 {
		t.Errorf("step on a stopped scheduler ran %d callbacks, want 0", ticks)
	}
}

func TestPauseStopsAdvances(t *testing.T) {
	l := New(100, 60)
	ticks := 0
	l.AddUpdateSystem("count", func(dt float64) { ticks++ })

	l.Start()
	defer l.Stop()
	l.Pause()

	time.Sleep(50 * time.Millisecond)
	before := l.Tick()
	time.Sleep(50 * time.Millisecond)
	after := l.Tick()

	if after != before {
		t.Errorf("tick advanced from %d to %d while paused", before, after)
	}
}

func TestDTIsNominalRegardlessOfSpeed(t *testing.T) {
	l := New(4, 60)
	var got []float64
	l.AddUpdateSystem("record", func(dt float64) { got = append(got, dt) })

	l.Start()
	defer l.Stop()
	l.Pause()
	l.SetSpeed(5.0)
	l.Step()
	l.SetSpeed(0.1)
	l.Step()

	if len(got) != 2 {
		t.Fatalf("expected 2 advances, got %d", len(got))
	}
	for i, dt := range got {
		if math.Abs(dt-0.25) > 1e-9 {
			t.Errorf("advance %d got dt %v, want 0.25", i, dt)
		}
	}
}

func TestSimTimeAccumulatesNominalInterval(t *testing.T) {
	l := New(10, 60)
	l.AddUpdateSystem("noop", func(dt float64) {})

	l.Start()
	defer l.Stop()
	l.Pause()
	for i := 0; i < 5; i++ {
		l.Step()
	}

	stats := l.Stats()
	if math.Abs(stats.SimTime-0.5) > 1e-9 {
		t.Errorf("sim time = %v, want 0.5 after 5 ticks at 10 TPS", stats.SimTime)
	}
}

func TestCallbacksCanReadLoopState(t *testing.T) {
	// Callbacks reading the loop's own accessors must not deadlock the
	// advance that is invoking them.
	l := New(1, 60)

	var seenTick int64 = -1
	var seenStats Stats
	l.AddUpdateSystem("introspect", func(dt float64) {
		seenTick = l.Tick()
		seenStats = l.Stats()
		_ = l.Speed()
	})

	l.Start()
	defer l.Stop()
	l.Pause()

	done := make(chan struct{})
	go func() {
		l.Step()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Step did not return; a callback reading loop state blocked the advance")
	}

	// The counter increments after callbacks run.
	if seenTick != 0 {
		t.Errorf("tick observed inside callback = %d, want 0", seenTick)
	}
	if !seenStats.Running {
		t.Error("stats observed inside callback should report running")
	}
	if got := l.Tick(); got != 1 {
		t.Errorf("tick after Step = %d, want 1", got)
	}
}

func TestSpeedScalesSimTimeAccrual(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-dependent")
	}

	// Over a fixed wall interval, speed m accrues about m times as much
	// simulation time: dt stays nominal while the cadence interval
	// shrinks or stretches.
	simTimeAfter := func(speed float64, wall time.Duration) float64 {
		l := New(50, 60)
		l.AddUpdateSystem("noop", func(dt float64) {})
		l.SetSpeed(speed)
		l.Start()
		time.Sleep(wall)
		l.Stop()
		return l.Stats().SimTime
	}

	slow := simTimeAfter(0.5, time.Second)
	fast := simTimeAfter(2.0, time.Second)

	if slow < 0.3 || slow > 0.7 {
		t.Errorf("sim time at speed 0.5 = %v, want about 0.5", slow)
	}
	if fast < 1.2 || fast > 2.6 {
		t.Errorf("sim time at speed 2.0 = %v, want about 2.0", fast)
	}
	if fast < 2*slow {
		t.Errorf("sim time ratio = %v, want at least 2x between speeds 2.0 and 0.5", fast/slow)
	}
}

func TestCallbackPanicDoesNotHaltCadence(t *testing.T) {
	l := New(1, 60)
	ran := false
	l.AddUpdateSystem("faulty", func(dt float64) { panic("boom") })
	l.AddUpdateSystem("healthy", func(dt float64) { ran = true })

	l.Start()
	defer l.Stop()
	l.Pause()
	l.Step()

	if !ran {
		t.Error("callback after a panicking one should still run")
	}
	if l.Tick() != 1 {
		t.Errorf("tick = %d, want 1 after a recovered panic", l.Tick())
	}
}

func TestStatsSnapshot(t *testing.T) {
	l := New(20, 30)
	l.AddUpdateSystem("a", func(dt float64) {})
	l.AddUpdateSystem("b", func(dt float64) {})
	l.AddRenderSystem("r", func(dt float64) {})

	stats := l.Stats()
	if stats.TargetTPS != 20 {
		t.Errorf("target TPS = %v, want 20", stats.TargetTPS)
	}
	if stats.TargetFPS != 30 {
		t.Errorf("target FPS = %v, want 30", stats.TargetFPS)
	}
	if stats.UpdateSystems != 2 || stats.RenderSystems != 1 {
		t.Errorf("system counts = %d/%d, want 2/1", stats.UpdateSystems, stats.RenderSystems)
	}
	if stats.Running || stats.Paused {
		t.Error("stopped scheduler should report not running, not paused")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	l := New(100, 60)
	l.Start()
	l.Start()
	if !l.Running() {
		t.Error("expected running after start")
	}
	l.Stop()
	l.Stop()
	if l.Running() {
		t.Error("expected stopped after stop")
	}
}

func TestRateWindow(t *testing.T) {
	var w rateWindow
	if w.rate() != 0 {
		t.Errorf("empty window rate = %v, want 0", w.rate())
	}

	for i := 0; i < 10; i++ {
		w.add(0.05)
	}
	if got := w.rate(); math.Abs(got-20.0) > 1e-9 {
		t.Errorf("rate = %v, want 20", got)
	}

	// Non-positive samples are dropped
	w.add(0)
	w.add(-1)
	if got := w.rate(); math.Abs(got-20.0) > 1e-9 {
		t.Errorf("rate after invalid samples = %v, want 20", got)
	}

	w.reset()
	if w.rate() != 0 {
		t.Errorf("rate after reset = %v, want 0", w.rate())
	}
}
