package game

import (
	"github.com/google/uuid"

	"github.com/pthm-cable/drift/loop"
)

// EntityView is the read-only per-entity state a frame carries to the
// presentation side.
type EntityView struct {
	ID   uuid.UUID
	Type string
	Name string

	X, Y float64

	// Movement, if the entity has kinematics
	HasKinematics bool
	Behavior      string
	Rotation      float64
	VelX, VelY    float64
	HasTarget     bool
	TargetX       float64
	TargetY       float64

	// Decision, if the entity has runtime state
	HasDecision bool
	Decision    string
	Energy      float64
	Alertness   float64
}

// FrameSnapshot is an immutable copy of presentation-relevant state,
// published once per presentation advance. Readers on other threads
// take the latest pointer and never see a partially written frame.
type FrameSnapshot struct {
	Tick     int64
	SimTime  float64
	Stats    loop.Stats
	Entities []EntityView
}

// buildFrame copies the current world state into a fresh snapshot.
// Runs inside the scheduler's render callback, so it reads the world
// under the same lock the logic side writes under.
func (g *Game) buildFrame() *FrameSnapshot {
	stats := g.loop.Stats()
	infos := g.world.Snapshot()

	frame := &FrameSnapshot{
		Tick:     stats.Tick,
		SimTime:  stats.SimTime,
		Stats:    stats,
		Entities: make([]EntityView, 0, len(infos)),
	}

	for _, info := range infos {
		meta := g.world.Metadata(info.Entity)
		view := EntityView{
			ID:   info.ID,
			Type: info.Type,
			Name: meta.Name,
			X:    info.Pos.X,
			Y:    info.Pos.Y,
		}

		if kin := g.world.Kinematics(info.Entity); kin != nil {
			view.HasKinematics = true
			view.Behavior = kin.Behavior
			view.Rotation = kin.Rotation
			view.VelX = kin.Velocity.X
			view.VelY = kin.Velocity.Y
			view.HasTarget = kin.HasTarget
			view.TargetX = kin.Target.X
			view.TargetY = kin.Target.Y
		}

		if state := g.world.Decision(info.Entity); state != nil {
			view.HasDecision = true
			view.Decision = state.Behavior
			view.Energy = state.Energy
			view.Alertness = state.Alertness
		}

		frame.Entities = append(frame.Entities, view)
	}

	return frame
}

// Frame returns the most recently published snapshot, or nil before the
// first presentation advance.
func (g *Game) Frame() *FrameSnapshot {
	return g.frame.Load()
}
