package systems

import (
	"sort"

	"github.com/google/uuid"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/world"
)

// DecisionContext is everything a decision behavior sees for one
// entity: its own identity and position, its mutable runtime state, and
// a read-only snapshot of every entity for proximity scans.
type DecisionContext struct {
	ID       uuid.UUID
	Type     string
	Pos      components.Position
	State    *components.DecisionState
	Entities []world.EntityInfo
}

// DecisionBehavior is one decision kind bound to its configuration.
// Eligible gates selection each tick; Apply runs the selected
// behavior's effect.
type DecisionBehavior interface {
	Name() string
	Kind() string
	Enabled() bool
	Priority() int
	Eligible(ctx *DecisionContext) bool
	Apply(ctx *DecisionContext, dt float64)
}

// decisionBase carries the header fields shared by every kind.
type decisionBase struct {
	name     string
	kind     string
	enabled  bool
	priority int
}

func (b decisionBase) Name() string  { return b.name }
func (b decisionBase) Kind() string  { return b.kind }
func (b decisionBase) Enabled() bool { return b.enabled }
func (b decisionBase) Priority() int { return b.priority }

// targetPosition writes the position the movement subsystem should
// steer toward into goal data. The synchronization step copies it into
// kinematics within the same tick.
func targetPosition(state *components.DecisionState, x, y float64) {
	state.Memory.GoalData["target_position"] = []float64{x, y}
}

// IdleBehavior recovers energy and lets alertness decay. Always
// eligible, so it acts as the fallback at priority 0.
type IdleBehavior struct {
	decisionBase
	cfg IdleConfig
}

func (b *IdleBehavior) Eligible(*DecisionContext) bool { return true }

func (b *IdleBehavior) Apply(ctx *DecisionContext, dt float64) {
	ctx.State.AddAlertness(-0.1 * dt)
	ctx.State.AddEnergy(b.cfg.EnergyRecoveryRate * dt)
}

// PatrolBehavior cycles through configured waypoints, publishing each
// as the movement target until arrival.
type PatrolBehavior struct {
	decisionBase
	cfg PatrolDecisionConfig
}

func (b *PatrolBehavior) Eligible(ctx *DecisionContext) bool {
	return ctx.State.Energy > 20.0
}

func (b *PatrolBehavior) Apply(ctx *DecisionContext, dt float64) {
	if len(b.cfg.Waypoints) == 0 {
		return
	}

	state := ctx.State
	wp := intFromGoalData(state.Memory.GoalData, "current_waypoint")
	if wp < 0 || wp >= len(b.cfg.Waypoints) {
		wp = 0
	}
	target := b.cfg.Waypoints[wp]

	if components.Dist(ctx.Pos, components.Position{X: target[0], Y: target[1]}) < b.cfg.ArrivalTolerance {
		state.Memory.GoalData["current_waypoint"] = float64((wp + 1) % len(b.cfg.Waypoints))
	}

	state.Memory.CurrentTarget = ""
	targetPosition(state, target[0], target[1])

	state.AddEnergy(-b.cfg.EnergyCost * dt)
}

// HuntBehavior pursues the nearest entity of a configured type within
// detection range, falling back to remembered sightings.
type HuntBehavior struct {
	decisionBase
	cfg HuntConfig
}

func (b *HuntBehavior) Eligible(ctx *DecisionContext) bool {
	return ctx.State.Energy > 30.0
}

func (b *HuntBehavior) Apply(ctx *DecisionContext, dt float64) {
	state := ctx.State
	now := state.StateTime

	var closest *world.EntityInfo
	closestDist := b.cfg.DetectionRange
	for i := range ctx.Entities {
		other := &ctx.Entities[i]
		if other.ID == ctx.ID || !containsString(b.cfg.TargetTypes, other.Type) {
			continue
		}
		d := components.Dist(ctx.Pos, other.Pos)
		if d <= closestDist {
			closest = other
			closestDist = d
		}
	}

	if closest != nil {
		id := closest.ID.String()
		state.Memory.LastSeen[id] = components.Vec2{X: closest.Pos.X, Y: closest.Pos.Y}
		state.Memory.LastSeenAt[id] = now
		state.Memory.CurrentTarget = id
		targetPosition(state, closest.Pos.X, closest.Pos.Y)
		state.AddAlertness(50.0 * dt)
	} else {
		state.AddAlertness(-10.0 * dt)

		// Fall back to the most recently remembered sighting that is
		// still fresh. Sorted for a stable choice.
		ids := make([]string, 0, len(state.Memory.LastSeenAt))
		for id := range state.Memory.LastSeenAt {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if now-state.Memory.LastSeenAt[id] < b.cfg.MemoryDuration {
				last := state.Memory.LastSeen[id]
				state.Memory.CurrentTarget = id
				targetPosition(state, last.X, last.Y)
				break
			}
		}
	}

	state.AddEnergy(-b.cfg.EnergyCost * dt)
}

// FleeBehavior runs from the nearest configured threat. Eligible when
// energy is low or alertness is high.
type FleeBehavior struct {
	decisionBase
	cfg FleeConfig
}

func (b *FleeBehavior) Eligible(ctx *DecisionContext) bool {
	return ctx.State.Energy < 30.0 || ctx.State.Alertness > 70.0
}

func (b *FleeBehavior) Apply(ctx *DecisionContext, dt float64) {
	state := ctx.State

	var nearest *world.EntityInfo
	nearestDist := b.cfg.DetectionRange
	for i := range ctx.Entities {
		other := &ctx.Entities[i]
		if other.ID == ctx.ID || !containsString(b.cfg.ThreatTypes, other.Type) {
			continue
		}
		d := components.Dist(ctx.Pos, other.Pos)
		if d <= nearestDist {
			nearest = other
			nearestDist = d
		}
	}

	if nearest != nil {
		away := components.Vec2{
			X: ctx.Pos.X - nearest.Pos.X,
			Y: ctx.Pos.Y - nearest.Pos.Y,
		}
		if away.Len() > 0 {
			flee := away.Norm().Scale(b.cfg.FleeRange)
			targetPosition(state, ctx.Pos.X+flee.X, ctx.Pos.Y+flee.Y)
			state.AddAlertness(30.0 * dt)
		}
	}

	state.AddEnergy(-b.cfg.EnergyCost * dt)
}

// GuardBehavior holds a position, intercepting anything that comes
// within alert range of the post.
type GuardBehavior struct {
	decisionBase
	cfg GuardConfig
}

func (b *GuardBehavior) Eligible(ctx *DecisionContext) bool {
	return ctx.State.Energy > 40.0
}

func (b *GuardBehavior) Apply(ctx *DecisionContext, dt float64) {
	state := ctx.State
	post := components.Position{X: b.cfg.GuardPosition[0], Y: b.cfg.GuardPosition[1]}

	intruderFound := false
	for i := range ctx.Entities {
		other := &ctx.Entities[i]
		if other.ID == ctx.ID {
			continue
		}
		if components.Dist(other.Pos, post) <= b.cfg.AlertRange {
			intruderFound = true
			state.AddAlertness(40.0 * dt)
			targetPosition(state, other.Pos.X, other.Pos.Y)
			break
		}
	}

	if !intruderFound {
		if components.Dist(ctx.Pos, post) > b.cfg.GuardRadius {
			targetPosition(state, post.X, post.Y)
		} else {
			targetPosition(state, ctx.Pos.X, ctx.Pos.Y)
		}
		state.AddAlertness(-5.0 * dt)
	}

	state.AddEnergy(-b.cfg.EnergyCost * dt)
}

// TradeBehavior walks trade routes point by point, pausing at each
// stop for the configured wait time.
type TradeBehavior struct {
	decisionBase
	cfg TradeConfig
}

func (b *TradeBehavior) Eligible(ctx *DecisionContext) bool {
	return ctx.State.Energy > 25.0
}

func (b *TradeBehavior) Apply(ctx *DecisionContext, dt float64) {
	if len(b.cfg.TradeRoutes) == 0 {
		return
	}

	state := ctx.State
	goal := state.Memory.GoalData

	route := intFromGoalData(goal, "current_route")
	point := intFromGoalData(goal, "current_point")

	if route < 0 || route >= len(b.cfg.TradeRoutes) {
		route = 0
	}
	stops := b.cfg.TradeRoutes[route]
	if point < 0 || point >= len(stops) {
		// Route complete, advance to the next one.
		route = (route + 1) % len(b.cfg.TradeRoutes)
		goal["current_route"] = float64(route)
		goal["current_point"] = float64(0)
		return
	}

	target := stops[point]

	if components.Dist(ctx.Pos, components.Position{X: target[0], Y: target[1]}) < b.cfg.ArrivalTolerance {
		point++
		goal["current_point"] = float64(point)
		goal["wait_until"] = state.StateTime + b.cfg.WaitTime
	}

	waitUntil, _ := goal["wait_until"].(float64)
	if state.StateTime < waitUntil {
		// Holding position at the trade stop.
		targetPosition(state, ctx.Pos.X, ctx.Pos.Y)
	} else {
		targetPosition(state, target[0], target[1])
	}

	state.AddEnergy(-b.cfg.EnergyCost * dt)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// intFromGoalData reads an integer goal-data field that may have been
// stored as a float (the JSON number shape) or an int.
func intFromGoalData(goal map[string]any, key string) int {
	switch v := goal[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
