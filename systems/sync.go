package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/world"
)

// SyncSystem copies decision output into movement input. It is the sole
// data channel between the two subsystems and must run after the
// decision update and before the movement update in the same tick.
type SyncSystem struct {
	filter *ecs.Filter2[components.DecisionState, components.Kinematics]

	synced int
}

// NewSyncSystem creates a sync system over the given world.
func NewSyncSystem(w *world.World) *SyncSystem {
	return &SyncSystem{
		filter: ecs.NewFilter2[components.DecisionState, components.Kinematics](w.ECS()),
	}
}

// Update propagates each pending target position from decision memory
// into the entity's kinematics.
func (s *SyncSystem) Update(_ *world.World) {
	query := s.filter.Query()
	for query.Next() {
		state, kin := query.Get()
		target, ok := vecFromAny(state.Memory.GoalData["target_position"])
		if !ok {
			continue
		}
		kin.SetTarget(target)
		s.synced++
	}
}

// TakeSynced returns the number of targets propagated since the
// previous call and resets the counter.
func (s *SyncSystem) TakeSynced() int {
	n := s.synced
	s.synced = 0
	return n
}
