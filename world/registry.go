package world

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// FieldDef describes one field of a component definition.
type FieldDef struct {
	Type        string `json:"type"` // integer, float, string, boolean, array, object, position
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// ComponentDef is a named component definition: a description plus the
// typed fields a fresh record of this component carries.
type ComponentDef struct {
	Description string              `json:"description"`
	Fields      map[string]FieldDef `json:"properties"`
}

// ComponentRegistry holds named component definitions. It is constructed
// once at process start and passed into every consumer; there is no
// package-level instance.
type ComponentRegistry struct {
	defs map[string]ComponentDef
}

// NewComponentRegistry returns a registry seeded with the built-in
// component definitions.
func NewComponentRegistry() *ComponentRegistry {
	r := &ComponentRegistry{defs: make(map[string]ComponentDef)}
	for name, def := range builtinComponents() {
		r.defs[name] = def
	}
	return r
}

// Register adds or replaces a component definition.
func (r *ComponentRegistry) Register(name string, def ComponentDef) {
	r.defs[name] = def
}

// LoadFile merges component definitions from a JSON file. The file maps
// component names to definitions; existing names are replaced.
func (r *ComponentRegistry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading component definitions: %w", err)
	}
	var defs map[string]ComponentDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("parsing component definitions: %w", err)
	}
	for name, def := range defs {
		r.defs[name] = def
	}
	return nil
}

// Has reports whether a component definition exists.
func (r *ComponentRegistry) Has(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Def returns the named definition.
func (r *ComponentRegistry) Def(name string) (ComponentDef, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns all registered component names, sorted.
func (r *ComponentRegistry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewRecord instantiates a record of the named component with every
// field set to its default. Returns false for unknown components.
func (r *ComponentRegistry) NewRecord(name string) (map[string]any, bool) {
	def, ok := r.defs[name]
	if !ok {
		return nil, false
	}
	rec := make(map[string]any, len(def.Fields))
	for field, fd := range def.Fields {
		rec[field] = cloneValue(fd.Default)
	}
	return rec, true
}

// cloneValue deep-copies JSON-shaped default values so records never
// share mutable state with the definition.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// builtinComponents returns the definitions every registry starts with.
func builtinComponents() map[string]ComponentDef {
	return map[string]ComponentDef{
		"movement": {
			Description: "Basic movement capability",
			Fields: map[string]FieldDef{
				"max_speed":    {Type: "float", Default: 100.0},
				"acceleration": {Type: "float", Default: 10.0},
				"velocity":     {Type: "array", Default: []any{0.0, 0.0}},
				"destination":  {Type: "position", Default: nil},
			},
		},
		"health": {
			Description: "Hit points, shields and armor",
			Fields: map[string]FieldDef{
				"max_health":     {Type: "integer", Default: 100},
				"current_health": {Type: "integer", Default: 100},
				"shields":        {Type: "integer", Default: 0},
				"armor":          {Type: "integer", Default: 0},
			},
		},
		"cargo": {
			Description: "Cargo hold",
			Fields: map[string]FieldDef{
				"capacity":     {Type: "integer", Default: 100},
				"current_load": {Type: "integer", Default: 0},
				"items":        {Type: "array", Default: []any{}},
			},
		},
		"combat": {
			Description: "Weapons",
			Fields: map[string]FieldDef{
				"weapon_damage":   {Type: "integer", Default: 10},
				"weapon_range":    {Type: "integer", Default: 50},
				"weapon_cooldown": {Type: "float", Default: 1.0},
				"last_fired":      {Type: "float", Default: 0.0},
			},
		},
		"mining": {
			Description: "Resource extraction",
			Fields: map[string]FieldDef{
				"mining_rate":     {Type: "float", Default: 5.0},
				"mining_range":    {Type: "float", Default: 20.0},
				"target_asteroid": {Type: "string", Default: nil},
			},
		},
		"trading": {
			Description: "Trading capability",
			Fields: map[string]FieldDef{
				"credits":     {Type: "integer", Default: 1000},
				"buy_orders":  {Type: "array", Default: []any{}},
				"sell_orders": {Type: "array", Default: []any{}},
			},
		},
		"decision": {
			Description: "Persisted decision-making state",
			Fields: map[string]FieldDef{
				"memory":             {Type: "object", Default: map[string]any{}},
				"current_goal":       {Type: "string", Default: nil},
				"ai_type":            {Type: "string", Default: "basic"},
				"aggression_level":   {Type: "float", Default: 0.5},
				"intelligence_level": {Type: "integer", Default: 50},
			},
		},
	}
}
