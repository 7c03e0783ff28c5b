package systems

import (
	"math"

	"github.com/pthm-cable/drift/components"
)

// pair is a JSON [x, y] coordinate.
type pair [2]float64

func (p pair) vec() components.Vec2 {
	return components.Vec2{X: p[0], Y: p[1]}
}

func pairsToVecs(ps []pair) []components.Vec2 {
	out := make([]components.Vec2, len(ps))
	for i, p := range ps {
		out[i] = p.vec()
	}
	return out
}

// Per-kind movement configs. Fields absent from the document keep the
// defaults set before decoding.

type LinearConfig struct {
	MaxSpeed float64 `json:"max_speed"`
}

func defaultLinearConfig() LinearConfig {
	return LinearConfig{MaxSpeed: 50.0}
}

type CircularConfig struct {
	Center       pair    `json:"center"`
	Radius       float64 `json:"radius"`
	AngularSpeed float64 `json:"angular_speed"`
}

func defaultCircularConfig() CircularConfig {
	return CircularConfig{Radius: 100.0, AngularSpeed: 1.0}
}

type OrbitConfig struct {
	TargetEntityID string  `json:"target_entity_id"`
	FallbackCenter pair    `json:"fallback_center"`
	Radius         float64 `json:"radius"`
	AngularSpeed   float64 `json:"angular_speed"`
}

func defaultOrbitConfig() OrbitConfig {
	return OrbitConfig{Radius: 100.0, AngularSpeed: 0.5}
}

type PatrolConfig struct {
	Waypoints        []pair  `json:"waypoints"`
	Speed            float64 `json:"speed"`
	ArrivalTolerance float64 `json:"arrival_tolerance"`
}

func defaultPatrolConfig() PatrolConfig {
	return PatrolConfig{Speed: 30.0, ArrivalTolerance: 5.0}
}

type WanderConfig struct {
	Speed                   float64 `json:"speed"`
	DirectionChangeInterval float64 `json:"direction_change_interval"`
	MaxDirectionChange      float64 `json:"max_direction_change"`
}

func defaultWanderConfig() WanderConfig {
	return WanderConfig{
		Speed:                   20.0,
		DirectionChangeInterval: 2.0,
		MaxDirectionChange:      math.Pi / 4,
	}
}

type SeekConfig struct {
	TargetPosition *pair   `json:"target_position"`
	Speed          float64 `json:"speed"`
	MaxForce       float64 `json:"max_force"`
}

func defaultSeekConfig() SeekConfig {
	return SeekConfig{Speed: 40.0, MaxForce: 100.0}
}
