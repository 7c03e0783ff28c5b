package components

// Kinematics is the movement subsystem's per-entity runtime state.
// Behavior names the assigned movement behavior; the rest is mutated by
// that behavior's integration step each tick.
type Kinematics struct {
	Behavior string

	Velocity Vec2
	Accel    Vec2
	MaxSpeed float64

	Rotation   float64 // radians
	AngularVel float64 // radians per second

	HasTarget bool
	Target    Vec2

	Waypoints     []Vec2
	WaypointIndex int
}

// ClampSpeed caps velocity magnitude at MaxSpeed. Called after any
// integration step that applied acceleration.
func (k *Kinematics) ClampSpeed() {
	if k.MaxSpeed <= 0 {
		return
	}
	speed := k.Velocity.Len()
	if speed > k.MaxSpeed {
		k.Velocity = k.Velocity.Scale(k.MaxSpeed / speed)
	}
}

// SetTarget sets the target position and marks it present.
func (k *Kinematics) SetTarget(t Vec2) {
	k.Target = t
	k.HasTarget = true
}

// ClearTarget removes the target position.
func (k *Kinematics) ClearTarget() {
	k.HasTarget = false
	k.Target = Vec2{}
}
