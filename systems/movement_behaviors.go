package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/drift/components"
)

// MovementBehavior is one movement kind bound to its configuration.
// Step advances an entity's position and kinematics by dt seconds.
type MovementBehavior interface {
	Name() string
	Enabled() bool
	Step(pos *components.Position, kin *components.Kinematics, dt float64)
}

// movementBase carries the header fields shared by every kind.
type movementBase struct {
	name    string
	enabled bool
}

func (b movementBase) Name() string  { return b.name }
func (b movementBase) Enabled() bool { return b.enabled }

// LinearMovement integrates velocity with acceleration, capping speed.
type LinearMovement struct {
	movementBase
	cfg LinearConfig
}

func (m *LinearMovement) Step(pos *components.Position, kin *components.Kinematics, dt float64) {
	kin.Velocity = kin.Velocity.Add(kin.Accel.Scale(dt))

	speed := kin.Velocity.Len()
	if speed > m.cfg.MaxSpeed {
		kin.Velocity = kin.Velocity.Scale(m.cfg.MaxSpeed / speed)
	}

	pos.X += kin.Velocity.X * dt
	pos.Y += kin.Velocity.Y * dt
}

// CircularMovement moves on a fixed circle around a configured center.
type CircularMovement struct {
	movementBase
	cfg CircularConfig
}

func (m *CircularMovement) Step(pos *components.Position, kin *components.Kinematics, dt float64) {
	kin.AngularVel = m.cfg.AngularSpeed
	kin.Rotation += kin.AngularVel * dt
	pos.X = m.cfg.Center[0] + m.cfg.Radius*math.Cos(kin.Rotation)
	pos.Y = m.cfg.Center[1] + m.cfg.Radius*math.Sin(kin.Rotation)
}

// OrbitMovement circles the configured fallback center. Resolving the
// named target entity is configuration-only; the orbit itself is the
// same closed-form update as CircularMovement.
type OrbitMovement struct {
	movementBase
	cfg OrbitConfig
}

func (m *OrbitMovement) Step(pos *components.Position, kin *components.Kinematics, dt float64) {
	kin.AngularVel = m.cfg.AngularSpeed
	kin.Rotation += kin.AngularVel * dt
	pos.X = m.cfg.FallbackCenter[0] + m.cfg.Radius*math.Cos(kin.Rotation)
	pos.Y = m.cfg.FallbackCenter[1] + m.cfg.Radius*math.Sin(kin.Rotation)
}

// PatrolMovement walks the configured waypoint cycle at constant speed.
type PatrolMovement struct {
	movementBase
	cfg PatrolConfig
}

func (m *PatrolMovement) Step(pos *components.Position, kin *components.Kinematics, dt float64) {
	if len(m.cfg.Waypoints) == 0 {
		return
	}

	// Copy the route into the entity's kinematics on first step so the
	// waypoint index survives behavior reassignment.
	if len(kin.Waypoints) == 0 {
		kin.Waypoints = pairsToVecs(m.cfg.Waypoints)
		kin.WaypointIndex = 0
	}
	if kin.WaypointIndex >= len(kin.Waypoints) {
		kin.WaypointIndex = 0
	}

	target := kin.Waypoints[kin.WaypointIndex]
	delta := target.Sub(components.Vec2{X: pos.X, Y: pos.Y})
	distance := delta.Len()

	if distance < m.cfg.ArrivalTolerance {
		kin.WaypointIndex = (kin.WaypointIndex + 1) % len(kin.Waypoints)
		return
	}
	if distance > 0 {
		step := delta.Norm().Scale(m.cfg.Speed * dt)
		pos.X += step.X
		pos.Y += step.Y
	}
}

// WanderMovement drifts in a heading that randomly re-aims on a timer.
// The heading is behavior-level state shared by every entity assigned
// this behavior.
type WanderMovement struct {
	movementBase
	cfg WanderConfig
	rng *rand.Rand

	direction     float64
	untilNextTurn float64
}

func (m *WanderMovement) Step(pos *components.Position, kin *components.Kinematics, dt float64) {
	m.untilNextTurn -= dt
	if m.untilNextTurn <= 0 {
		turn := (m.rng.Float64()*2 - 1) * m.cfg.MaxDirectionChange
		m.direction += turn
		m.untilNextTurn = m.cfg.DirectionChangeInterval
	}

	pos.X += math.Cos(m.direction) * m.cfg.Speed * dt
	pos.Y += math.Sin(m.direction) * m.cfg.Speed * dt
}

// SeekMovement steers toward the entity's target with a clamped
// steering force. A target position in the behavior config overrides
// the per-entity target.
type SeekMovement struct {
	movementBase
	cfg SeekConfig
}

func (m *SeekMovement) Step(pos *components.Position, kin *components.Kinematics, dt float64) {
	var target components.Vec2
	switch {
	case m.cfg.TargetPosition != nil:
		target = m.cfg.TargetPosition.vec()
	case kin.HasTarget:
		target = kin.Target
	default:
		return
	}

	delta := target.Sub(components.Vec2{X: pos.X, Y: pos.Y})
	distance := delta.Len()
	if distance == 0 {
		return
	}

	desired := delta.Norm().Scale(m.cfg.Speed)
	steer := desired.Sub(kin.Velocity)

	force := steer.Len()
	if force > m.cfg.MaxForce {
		steer = steer.Scale(m.cfg.MaxForce / force)
	}

	kin.Accel = steer
	kin.Velocity = kin.Velocity.Add(steer.Scale(dt))
	kin.ClampSpeed()

	pos.X += kin.Velocity.X * dt
	pos.Y += kin.Velocity.Y * dt
}
