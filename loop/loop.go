// Package loop is the dual-cadence scheduler: a fixed-rate logic
// cadence and an independent presentation cadence over shared state,
// with pause, single-step and speed controls.
package loop

import (
	"log/slog"
	"sync"
	"time"
)

// Speed multiplier bounds.
const (
	MinSpeed = 0.1
	MaxSpeed = 10.0
)

// Callback is an update or presentation system invoked each advance.
// Logic callbacks receive the nominal tick interval; presentation
// callbacks receive the wall-clock delta since the previous frame.
type Callback func(dt float64)

type namedCallback struct {
	name string
	fn   Callback
}

// Stats is a read-only snapshot of scheduler state.
type Stats struct {
	Tick          int64
	SimTime       float64
	WallTime      float64
	Running       bool
	Paused        bool
	Speed         float64
	TargetTPS     float64
	ActualTPS     float64
	TargetFPS     float64
	ActualFPS     float64
	UpdateSystems int
	RenderSystems int
}

// Loop runs registered update callbacks at a fixed logic cadence and
// render callbacks at an independent presentation cadence. The run
// mutex serializes both cadences' callback invocation, so a
// presentation advance never observes a half-updated tick. Scheduler
// state lives under a separate mutex; callbacks may call the loop's
// accessors (Tick, Stats, Speed) without deadlocking an advance.
//
// Speed scales the interval between logic advances, never the dt each
// advance passes to its callbacks: dt is always the nominal tick
// interval, so high multipliers catch up and low ones stretch.
type Loop struct {
	tickInterval  float64
	frameInterval float64

	runMu sync.Mutex // serializes logic and presentation advances

	mu            sync.Mutex // guards everything below
	updateSystems []namedCallback
	renderSystems []namedCallback
	running       bool
	paused        bool
	speed         float64
	tick          int64
	simTime       float64

	startWall    time.Time
	accumWall    time.Duration
	lastTickWall time.Time
	tickWindow   rateWindow
	frameWindow  rateWindow

	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a stopped scheduler with the given target rates.
func New(targetTPS, targetFPS int) *Loop {
	if targetTPS < 1 {
		targetTPS = 20
	}
	if targetFPS < 1 {
		targetFPS = 60
	}
	return &Loop{
		tickInterval:  1.0 / float64(targetTPS),
		frameInterval: 1.0 / float64(targetFPS),
		speed:         1.0,
	}
}

// TickInterval returns the nominal seconds per logic advance.
func (l *Loop) TickInterval() float64 {
	return l.tickInterval
}

// AddUpdateSystem registers a logic callback. Callbacks run in
// registration order within each advance.
func (l *Loop) AddUpdateSystem(name string, fn Callback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updateSystems = append(l.updateSystems, namedCallback{name: name, fn: fn})
}

// AddRenderSystem registers a presentation callback.
func (l *Loop) AddRenderSystem(name string, fn Callback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.renderSystems = append(l.renderSystems, namedCallback{name: name, fn: fn})
}

// Start launches the logic and presentation goroutines. A no-op when
// already running.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.startWall = time.Now()
	l.lastTickWall = time.Time{}
	l.tickWindow.reset()
	l.frameWindow.reset()
	l.stop = make(chan struct{})
	l.mu.Unlock()

	l.wg.Add(2)
	go l.logicLoop()
	go l.renderLoop()

	slog.Info("scheduler started",
		"target_tps", 1.0/l.tickInterval,
		"target_fps", 1.0/l.frameInterval)
}

// Stop halts both cadences and blocks until any in-flight advance has
// finished. Idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.accumWall += time.Since(l.startWall)
	close(l.stop)
	l.mu.Unlock()

	l.wg.Wait()
	slog.Info("scheduler stopped", "tick", l.Tick())
}

// Pause suspends the logic cadence. Presentation keeps rendering the
// frozen state.
func (l *Loop) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = true
}

// Resume continues the logic cadence.
func (l *Loop) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = false
}

// Paused reports whether the logic cadence is suspended.
func (l *Loop) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// Running reports whether the scheduler has been started.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Step forces exactly one logic advance regardless of cadence timing
// or pause state, and returns after it completes. The pause flag is
// left untouched. A no-op when the scheduler is not running.
func (l *Loop) Step() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	l.advanceLogic()
}

// SetSpeed sets the speed multiplier, clamped to [MinSpeed, MaxSpeed].
func (l *Loop) SetSpeed(speed float64) {
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.speed = speed
}

// Speed returns the current speed multiplier.
func (l *Loop) Speed() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.speed
}

// Tick returns the logic advance counter.
func (l *Loop) Tick() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

// Stats returns a snapshot of scheduler state and rates.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	wall := l.accumWall
	if l.running {
		wall += time.Since(l.startWall)
	}
	return Stats{
		Tick:          l.tick,
		SimTime:       l.simTime,
		WallTime:      wall.Seconds(),
		Running:       l.running,
		Paused:        l.paused,
		Speed:         l.speed,
		TargetTPS:     1.0 / l.tickInterval,
		ActualTPS:     l.tickWindow.rate(),
		TargetFPS:     1.0 / l.frameInterval,
		ActualFPS:     l.frameWindow.rate(),
		UpdateSystems: len(l.updateSystems),
		RenderSystems: len(l.renderSystems),
	}
}

// logicLoop sleeps the speed-scaled tick interval between advances.
func (l *Loop) logicLoop() {
	defer l.wg.Done()

	for {
		l.mu.Lock()
		interval := time.Duration(l.tickInterval / l.speed * float64(time.Second))
		stop := l.stop
		l.mu.Unlock()

		select {
		case <-stop:
			return
		case <-time.After(interval):
			// Re-check pause after the sleep so Pause takes effect
			// before the next advance.
			if !l.Paused() {
				l.advanceLogic()
			}
		}
	}
}

// renderLoop runs presentation advances at the frame cadence,
// independent of speed and pause.
func (l *Loop) renderLoop() {
	defer l.wg.Done()

	interval := time.Duration(l.frameInterval * float64(time.Second))
	lastFrame := time.Now()

	for {
		l.mu.Lock()
		stop := l.stop
		l.mu.Unlock()

		select {
		case <-stop:
			return
		case <-time.After(interval):
			now := time.Now()
			dt := now.Sub(lastFrame).Seconds()
			lastFrame = now
			l.advanceRender(dt)
		}
	}
}

// advanceLogic runs one tick: every update callback in registration
// order under the run mutex, then the counters.
func (l *Loop) advanceLogic() {
	dt := l.tickInterval

	l.runMu.Lock()
	defer l.runMu.Unlock()

	l.mu.Lock()
	systems := l.updateSystems
	l.mu.Unlock()

	for _, cb := range systems {
		invoke(cb, dt)
	}

	l.mu.Lock()
	l.tick++
	l.simTime += dt

	now := time.Now()
	if !l.lastTickWall.IsZero() {
		l.tickWindow.add(now.Sub(l.lastTickWall).Seconds())
	}
	l.lastTickWall = now
	l.mu.Unlock()
}

// advanceRender runs every presentation callback under the run mutex
// with the wall-clock frame delta.
func (l *Loop) advanceRender(dt float64) {
	l.runMu.Lock()
	defer l.runMu.Unlock()

	l.mu.Lock()
	systems := l.renderSystems
	l.mu.Unlock()

	for _, cb := range systems {
		invoke(cb, dt)
	}

	l.mu.Lock()
	l.frameWindow.add(dt)
	l.mu.Unlock()
}

// invoke runs one callback, converting a panic into a logged error so a
// faulty system degrades instead of halting the cadence.
func invoke(cb namedCallback, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("callback panic", "callback", cb.name, "panic", r)
		}
	}()
	cb.fn(dt)
}
