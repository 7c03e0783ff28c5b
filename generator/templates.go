package generator

import (
	"encoding/json"
	"fmt"
)

// Bounds is an axis-aligned generation region.
type Bounds struct {
	X [2]float64 `json:"x"`
	Y [2]float64 `json:"y"`
}

// Count is an entity count that deserializes from either a plain
// integer or a [min, max] range.
type Count struct {
	Min int
	Max int
}

func (c *Count) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		c.Min, c.Max = n, n
		return nil
	}
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("count must be an integer or [min, max]: %w", err)
	}
	switch len(pair) {
	case 0:
		c.Min, c.Max = 1, 1
	case 1:
		c.Min, c.Max = pair[0], pair[0]
	default:
		c.Min, c.Max = pair[0], pair[1]
	}
	return nil
}

func (c Count) MarshalJSON() ([]byte, error) {
	if c.Min == c.Max {
		return json.Marshal(c.Min)
	}
	return json.Marshal([2]int{c.Min, c.Max})
}

// EntityGroup describes one batch of same-typed entities in a template.
type EntityGroup struct {
	Type         string         `json:"type"`
	Count        Count          `json:"count"`
	Bounds       *Bounds        `json:"bounds,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
	Spacing      float64        `json:"spacing,omitempty"`
	Distribution string         `json:"distribution,omitempty"`
}

// Rule is a post-generation adjustment applied after all groups exist.
type Rule struct {
	Type         string   `json:"type"`
	MinDistance  float64  `json:"min_distance,omitempty"`
	StarTypes    []string `json:"star_types,omitempty"`
	StationTypes []string `json:"station_types,omitempty"`
}

// MapTemplate is a complete map generation recipe.
type MapTemplate struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Bounds      Bounds        `json:"bounds"`
	Entities    []EntityGroup `json:"entities"`
	Rules       []Rule        `json:"post_generation_rules,omitempty"`
}

// entityTemplate holds per-type defaults merged under group properties,
// plus the component records the type starts with.
type entityTemplate struct {
	properties map[string]any
	components []string
}

// builtinEntityTemplates mirror the standard entity catalog: celestial
// bodies carry no components, ships and stations carry the records
// their systems read.
func builtinEntityTemplates() map[string]entityTemplate {
	return map[string]entityTemplate{
		"star": {
			properties: map[string]any{
				"name":        "Unknown Star",
				"temperature": 5778.0,
				"size":        "medium",
				"color":       "yellow",
			},
		},
		"planet": {
			properties: map[string]any{
				"name":       "Unknown Planet",
				"size":       "medium",
				"habitable":  false,
				"population": 0.0,
			},
		},
		"asteroid": {
			properties: map[string]any{
				"name":      "Asteroid",
				"size":      "small",
				"resources": []any{"iron", "nickel"},
			},
		},
		"space_station": {
			properties: map[string]any{
				"name":       "Station",
				"size":       "large",
				"population": 100.0,
				"services":   []any{"trading", "repair"},
			},
			components: []string{"trading", "cargo"},
		},
		"cargo_ship": {
			properties: map[string]any{
				"name": "Cargo Ship",
				"size": "medium",
				"crew": 5.0,
			},
			components: []string{"movement", "health", "cargo"},
		},
		"fighter": {
			properties: map[string]any{
				"name": "Fighter",
				"size": "small",
				"crew": 1.0,
			},
			components: []string{"movement", "health", "combat"},
		},
		"mining_ship": {
			properties: map[string]any{
				"name": "Mining Ship",
				"size": "medium",
				"crew": 3.0,
			},
			components: []string{"movement", "health", "cargo", "mining"},
		},
	}
}

// builtinMapTemplates are the map recipes available without any
// template files on disk.
func builtinMapTemplates() map[string]MapTemplate {
	return map[string]MapTemplate{
		"basic": {
			Name:        "Basic System",
			Description: "A simple star system with planets and asteroids",
			Bounds:      Bounds{X: [2]float64{0, 1000}, Y: [2]float64{0, 800}},
			Entities: []EntityGroup{
				{
					Type:       "star",
					Count:      Count{Min: 1, Max: 1},
					Bounds:     &Bounds{X: [2]float64{450, 550}, Y: [2]float64{350, 450}},
					Properties: map[string]any{"name": "Central Star", "temperature": 5778.0},
				},
				{
					Type:       "planet",
					Count:      Count{Min: 3, Max: 3},
					Bounds:     &Bounds{X: [2]float64{100, 900}, Y: [2]float64{100, 700}},
					Properties: map[string]any{"habitable": true},
				},
				{
					Type:       "asteroid",
					Count:      Count{Min: 15, Max: 15},
					Bounds:     &Bounds{X: [2]float64{0, 1000}, Y: [2]float64{0, 800}},
					Properties: map[string]any{"resources": []any{"iron", "nickel"}},
				},
				{
					Type:       "space_station",
					Count:      Count{Min: 2, Max: 2},
					Bounds:     &Bounds{X: [2]float64{200, 800}, Y: [2]float64{200, 600}},
					Properties: map[string]any{"services": []any{"trading", "repair"}},
				},
			},
		},
		"frontier": {
			Name:        "Frontier System",
			Description: "A remote system with mining operations",
			Bounds:      Bounds{X: [2]float64{0, 1200}, Y: [2]float64{0, 1000}},
			Entities: []EntityGroup{
				{
					Type:       "star",
					Count:      Count{Min: 1, Max: 1},
					Bounds:     &Bounds{X: [2]float64{550, 650}, Y: [2]float64{450, 550}},
					Properties: map[string]any{"name": "Frontier Star", "temperature": 4500.0},
				},
				{
					Type:       "asteroid",
					Count:      Count{Min: 25, Max: 25},
					Bounds:     &Bounds{X: [2]float64{0, 1200}, Y: [2]float64{0, 1000}},
					Properties: map[string]any{"resources": []any{"iron", "nickel", "platinum"}},
				},
				{
					Type:       "mining_ship",
					Count:      Count{Min: 5, Max: 5},
					Bounds:     &Bounds{X: [2]float64{100, 1100}, Y: [2]float64{100, 900}},
					Properties: map[string]any{"crew": 3.0},
				},
				{
					Type:       "space_station",
					Count:      Count{Min: 1, Max: 1},
					Bounds:     &Bounds{X: [2]float64{300, 900}, Y: [2]float64{300, 700}},
					Properties: map[string]any{"services": []any{"trading", "repair", "refuel"}},
				},
			},
		},
		"warzone": {
			Name:        "Contested System",
			Description: "A system with active combat operations",
			Bounds:      Bounds{X: [2]float64{0, 1500}, Y: [2]float64{0, 1200}},
			Entities: []EntityGroup{
				{
					Type:       "star",
					Count:      Count{Min: 1, Max: 1},
					Bounds:     &Bounds{X: [2]float64{700, 800}, Y: [2]float64{550, 650}},
					Properties: map[string]any{"name": "Contested Star", "temperature": 6000.0},
				},
				{
					Type:       "planet",
					Count:      Count{Min: 2, Max: 2},
					Bounds:     &Bounds{X: [2]float64{200, 1300}, Y: [2]float64{200, 1000}},
					Properties: map[string]any{"habitable": false},
				},
				{
					Type:       "fighter",
					Count:      Count{Min: 10, Max: 10},
					Bounds:     &Bounds{X: [2]float64{100, 1400}, Y: [2]float64{100, 1100}},
					Properties: map[string]any{"crew": 1.0},
				},
				{
					Type:       "cargo_ship",
					Count:      Count{Min: 3, Max: 3},
					Bounds:     &Bounds{X: [2]float64{200, 1300}, Y: [2]float64{200, 1000}},
					Properties: map[string]any{"crew": 5.0},
				},
			},
		},
	}
}
