// Package world is the entity store: an ark ECS world with a stable
// identity index and persisted component payloads per entity.
package world

import (
	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drift/components"
)

// EntityInfo is a per-tick snapshot row used for proximity scans and
// presentation. It carries no references into mutable state.
type EntityInfo struct {
	Entity ecs.Entity
	ID     uuid.UUID
	Type   string
	Pos    components.Position
}

// World wraps the ECS world with component mappers and a uuid index.
// Entities are never destroyed during a run.
type World struct {
	ecs      *ecs.World
	registry *ComponentRegistry

	spawnMap *ecs.Map2[components.Position, components.Metadata]
	posMap   *ecs.Map1[components.Position]
	metaMap  *ecs.Map1[components.Metadata]
	kinMap   *ecs.Map[components.Kinematics]
	decMap   *ecs.Map[components.DecisionState]

	baseFilter *ecs.Filter2[components.Position, components.Metadata]

	byID map[uuid.UUID]ecs.Entity
}

// New creates an empty world backed by the given component registry.
func New(registry *ComponentRegistry) *World {
	w := ecs.NewWorld()
	return &World{
		ecs:        w,
		registry:   registry,
		spawnMap:   ecs.NewMap2[components.Position, components.Metadata](w),
		posMap:     ecs.NewMap1[components.Position](w),
		metaMap:    ecs.NewMap1[components.Metadata](w),
		kinMap:     ecs.NewMap[components.Kinematics](w),
		decMap:     ecs.NewMap[components.DecisionState](w),
		baseFilter: ecs.NewFilter2[components.Position, components.Metadata](w),
		byID:       make(map[uuid.UUID]ecs.Entity),
	}
}

// ECS exposes the underlying world for systems that build their own
// filters.
func (w *World) ECS() *ecs.World {
	return w.ecs
}

// Registry returns the component-definition registry.
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// Spawn creates an entity with a fresh identity.
func (w *World) Spawn(entityType string, x, y float64, props map[string]any) ecs.Entity {
	return w.SpawnWithID(uuid.New(), entityType, x, y, props)
}

// SpawnWithID creates an entity with an explicit identity, used when
// loading persisted maps.
func (w *World) SpawnWithID(id uuid.UUID, entityType string, x, y float64, props map[string]any) ecs.Entity {
	if props == nil {
		props = make(map[string]any)
	}
	pos := components.Position{X: x, Y: y}
	meta := components.Metadata{
		ID:         id,
		Type:       entityType,
		Properties: props,
		Records:    make(map[string]map[string]any),
	}
	if name, ok := props["name"].(string); ok {
		meta.Name = name
	}
	entity := w.spawnMap.NewEntity(&pos, &meta)
	w.byID[id] = entity
	return entity
}

// Lookup resolves a persisted identity to its live entity.
func (w *World) Lookup(id uuid.UUID) (ecs.Entity, bool) {
	e, ok := w.byID[id]
	return e, ok
}

// Count returns the number of entities in the world.
func (w *World) Count() int {
	return len(w.byID)
}

// Position returns the entity's position for mutation.
func (w *World) Position(e ecs.Entity) *components.Position {
	return w.posMap.Get(e)
}

// Metadata returns the entity's metadata for mutation.
func (w *World) Metadata(e ecs.Entity) *components.Metadata {
	return w.metaMap.Get(e)
}

// Kinematics returns the entity's movement runtime state, or nil when
// no movement behavior has been assigned.
func (w *World) Kinematics(e ecs.Entity) *components.Kinematics {
	if !w.kinMap.Has(e) {
		return nil
	}
	return w.kinMap.Get(e)
}

// Decision returns the entity's decision runtime state, or nil when no
// decision behavior has been assigned.
func (w *World) Decision(e ecs.Entity) *components.DecisionState {
	if !w.decMap.Has(e) {
		return nil
	}
	return w.decMap.Get(e)
}

// AddKinematics attaches movement runtime state, replacing any previous
// assignment's state.
func (w *World) AddKinematics(e ecs.Entity, kin components.Kinematics) {
	if w.kinMap.Has(e) {
		*w.kinMap.Get(e) = kin
		return
	}
	w.kinMap.Add(e, &kin)
}

// AddDecision attaches decision runtime state, replacing any previous
// assignment's state.
func (w *World) AddDecision(e ecs.Entity, state components.DecisionState) {
	if w.decMap.Has(e) {
		*w.decMap.Get(e) = state
		return
	}
	w.decMap.Add(e, &state)
}

// Record returns the entity's named persisted payload, or nil.
func (w *World) Record(e ecs.Entity, name string) map[string]any {
	return w.metaMap.Get(e).Record(name)
}

// SetRecord attaches or replaces a named persisted payload.
func (w *World) SetRecord(e ecs.Entity, name string, rec map[string]any) {
	w.metaMap.Get(e).SetRecord(name, rec)
}

// EnsureRecord returns the entity's named payload, instantiating it
// from the registry's defaults when absent. Returns nil for component
// names the registry does not define.
func (w *World) EnsureRecord(e ecs.Entity, name string) map[string]any {
	meta := w.metaMap.Get(e)
	if rec := meta.Record(name); rec != nil {
		return rec
	}
	rec, ok := w.registry.NewRecord(name)
	if !ok {
		return nil
	}
	meta.SetRecord(name, rec)
	return rec
}

// Snapshot returns a stable view of all entities for this tick. Systems
// scan it for proximity queries instead of nesting ECS queries.
func (w *World) Snapshot() []EntityInfo {
	infos := make([]EntityInfo, 0, len(w.byID))
	query := w.baseFilter.Query()
	for query.Next() {
		pos, meta := query.Get()
		infos = append(infos, EntityInfo{
			Entity: query.Entity(),
			ID:     meta.ID,
			Type:   meta.Type,
			Pos:    *pos,
		})
	}
	return infos
}
