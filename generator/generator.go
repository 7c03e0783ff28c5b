package generator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/world"
)

// Blueprint is one generated entity before it enters the world.
// Post-generation rules operate on blueprints so they can move things
// around without touching live entities.
type Blueprint struct {
	ID         uuid.UUID
	Type       string
	Pos        components.Position
	Properties map[string]any
	Components map[string]map[string]any
}

// Generator produces maps from templates. Generation is deterministic
// for a given template and seed, except for entity IDs.
type Generator struct {
	registry     *world.ComponentRegistry
	templatesDir string
	mapTemplates map[string]MapTemplate
	entities     map[string]entityTemplate
	lastSeed     int64
}

// New creates a generator. templatesDir may be empty to use only the
// built-in templates.
func New(registry *world.ComponentRegistry, templatesDir string) *Generator {
	return &Generator{
		registry:     registry,
		templatesDir: templatesDir,
		mapTemplates: builtinMapTemplates(),
		entities:     builtinEntityTemplates(),
	}
}

// LastSeed returns the seed used by the most recent Generate call.
func (g *Generator) LastSeed() int64 {
	return g.lastSeed
}

// LoadTemplate resolves a template by name: a JSON file in the
// templates directory wins over a built-in of the same name. Unknown
// names fall back to the basic template.
func (g *Generator) LoadTemplate(name string) (MapTemplate, error) {
	if g.templatesDir != "" {
		path := filepath.Join(g.templatesDir, name+".json")
		data, err := os.ReadFile(path)
		if err == nil {
			var tpl MapTemplate
			if err := json.Unmarshal(data, &tpl); err != nil {
				return MapTemplate{}, fmt.Errorf("parsing template %s: %w", path, err)
			}
			return tpl, nil
		}
		if !os.IsNotExist(err) {
			return MapTemplate{}, fmt.Errorf("reading template %s: %w", path, err)
		}
	}

	if tpl, ok := g.mapTemplates[name]; ok {
		return tpl, nil
	}
	slog.Warn("unknown map template, using basic", "template", name)
	return g.mapTemplates["basic"], nil
}

// SaveTemplate writes a template as JSON into the templates directory.
func (g *Generator) SaveTemplate(name string, tpl MapTemplate) error {
	if g.templatesDir == "" {
		return fmt.Errorf("no templates directory configured")
	}
	if err := os.MkdirAll(g.templatesDir, 0755); err != nil {
		return fmt.Errorf("creating templates directory: %w", err)
	}
	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(g.templatesDir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing template %s: %w", path, err)
	}
	return nil
}

// Templates lists the built-in template names, sorted.
func (g *Generator) Templates() []string {
	names := make([]string, 0, len(g.mapTemplates))
	for name := range g.mapTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate produces blueprints for the named template using the given
// seed.
func (g *Generator) Generate(templateName string, seed int64) ([]Blueprint, error) {
	tpl, err := g.LoadTemplate(templateName)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	g.lastSeed = seed

	var blueprints []Blueprint
	for _, group := range tpl.Entities {
		blueprints = append(blueprints, g.generateGroup(rng, group, tpl)...)
	}

	for _, rule := range tpl.Rules {
		blueprints = g.applyRule(rng, blueprints, rule)
	}

	return blueprints, nil
}

// Populate spawns blueprints into the world and returns the spawned
// entities in blueprint order.
func (g *Generator) Populate(w *world.World, blueprints []Blueprint) []ecs.Entity {
	spawned := make([]ecs.Entity, 0, len(blueprints))
	for _, bp := range blueprints {
		e := w.SpawnWithID(bp.ID, bp.Type, bp.Pos.X, bp.Pos.Y, bp.Properties)
		for name, rec := range bp.Components {
			w.SetRecord(e, name, rec)
		}
		spawned = append(spawned, e)
	}
	return spawned
}

func (g *Generator) generateGroup(rng *rand.Rand, group EntityGroup, tpl MapTemplate) []Blueprint {
	count := group.Count.Min
	if group.Count.Max > group.Count.Min {
		count = group.Count.Min + rng.Intn(group.Count.Max-group.Count.Min+1)
	}
	if count < 1 {
		return nil
	}

	bounds := tpl.Bounds
	if group.Bounds != nil {
		bounds = *group.Bounds
	}

	positions := g.generatePositions(rng, count, bounds, group.Distribution)
	if group.Spacing > 0 {
		positions = applySpacing(rng, positions, group.Spacing)
	}

	blueprints := make([]Blueprint, 0, len(positions))
	for i, pos := range positions {
		props := g.buildProperties(rng, group, i, count)
		blueprints = append(blueprints, Blueprint{
			ID:         uuid.New(),
			Type:       group.Type,
			Pos:        components.Position{X: pos.X, Y: pos.Y},
			Properties: props,
			Components: g.buildComponents(group.Type),
		})
	}
	return blueprints
}

func (g *Generator) generatePositions(rng *rand.Rand, count int, bounds Bounds, distribution string) []components.Vec2 {
	switch distribution {
	case "grid":
		return gridPositions(rng, count, bounds)
	case "cluster":
		return clusteredPositions(rng, count, bounds)
	case "orbital":
		return orbitalPositions(rng, count, bounds)
	default:
		positions := make([]components.Vec2, 0, count)
		for i := 0; i < count; i++ {
			positions = append(positions, components.Vec2{
				X: uniform(rng, bounds.X[0], bounds.X[1]),
				Y: uniform(rng, bounds.Y[0], bounds.Y[1]),
			})
		}
		return positions
	}
}

func gridPositions(rng *rand.Rand, count int, bounds Bounds) []components.Vec2 {
	gridSize := int(math.Ceil(math.Sqrt(float64(count))))
	xStep := (bounds.X[1] - bounds.X[0]) / float64(gridSize)
	yStep := (bounds.Y[1] - bounds.Y[0]) / float64(gridSize)

	positions := make([]components.Vec2, 0, count)
	for i := 0; i < count; i++ {
		gx := float64(i % gridSize)
		gy := float64(i / gridSize)

		x := bounds.X[0] + (gx+0.5)*xStep
		y := bounds.Y[0] + (gy+0.5)*yStep

		// Jitter within the cell
		x += uniform(rng, -xStep*0.3, xStep*0.3)
		y += uniform(rng, -yStep*0.3, yStep*0.3)

		positions = append(positions, components.Vec2{X: x, Y: y})
	}
	return positions
}

func clusteredPositions(rng *rand.Rand, count int, bounds Bounds) []components.Vec2 {
	numClusters := 2 + rng.Intn(3)
	centers := make([]components.Vec2, 0, numClusters)
	for i := 0; i < numClusters; i++ {
		centers = append(centers, components.Vec2{
			X: uniform(rng, bounds.X[0], bounds.X[1]),
			Y: uniform(rng, bounds.Y[0], bounds.Y[1]),
		})
	}

	clusterRadius := math.Min(bounds.X[1]-bounds.X[0], bounds.Y[1]-bounds.Y[0]) * 0.15

	positions := make([]components.Vec2, 0, count)
	for i := 0; i < count; i++ {
		center := centers[i%numClusters]
		angle := uniform(rng, 0, 2*math.Pi)
		distance := uniform(rng, 0, clusterRadius)

		x := center.X + distance*math.Cos(angle)
		y := center.Y + distance*math.Sin(angle)

		x = math.Max(bounds.X[0], math.Min(bounds.X[1], x))
		y = math.Max(bounds.Y[0], math.Min(bounds.Y[1], y))

		positions = append(positions, components.Vec2{X: x, Y: y})
	}
	return positions
}

func orbitalPositions(rng *rand.Rand, count int, bounds Bounds) []components.Vec2 {
	centerX := (bounds.X[0] + bounds.X[1]) / 2
	centerY := (bounds.Y[0] + bounds.Y[1]) / 2
	maxRadius := math.Min(bounds.X[1]-centerX, bounds.Y[1]-centerY) * 0.8

	positions := make([]components.Vec2, 0, count)
	for i := 0; i < count; i++ {
		radius := uniform(rng, maxRadius*0.3, maxRadius)
		baseAngle := float64(i) / float64(count) * 2 * math.Pi
		angle := baseAngle + uniform(rng, -0.5, 0.5)

		positions = append(positions, components.Vec2{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		})
	}
	return positions
}

// applySpacing drops or nudges positions that land within minSpacing of
// an earlier one. The result may hold fewer positions than the input.
func applySpacing(rng *rand.Rand, positions []components.Vec2, minSpacing float64) []components.Vec2 {
	if len(positions) <= 1 {
		return positions
	}

	adjusted := make([]components.Vec2, 1, len(positions))
	adjusted[0] = positions[0]
	for _, pos := range positions[1:] {
		if spacedFrom(pos, adjusted, minSpacing) {
			adjusted = append(adjusted, pos)
			continue
		}
		for attempt := 0; attempt < 10; attempt++ {
			candidate := components.Vec2{
				X: pos.X + uniform(rng, -minSpacing, minSpacing),
				Y: pos.Y + uniform(rng, -minSpacing, minSpacing),
			}
			if spacedFrom(candidate, adjusted, minSpacing) {
				adjusted = append(adjusted, candidate)
				break
			}
		}
	}
	return adjusted
}

func spacedFrom(pos components.Vec2, existing []components.Vec2, minSpacing float64) bool {
	for _, other := range existing {
		if math.Hypot(pos.X-other.X, pos.Y-other.Y) < minSpacing {
			return false
		}
	}
	return true
}

// buildProperties merges the type defaults with the group's properties,
// resolving range and choice variations per entity.
func (g *Generator) buildProperties(rng *rand.Rand, group EntityGroup, index, total int) map[string]any {
	props := make(map[string]any)
	if tpl, ok := g.entities[group.Type]; ok {
		for k, v := range tpl.properties {
			props[k] = cloneJSON(v)
		}
	}

	// Deterministic iteration so variation draws are stable per seed.
	keys := make([]string, 0, len(group.Properties))
	for k := range group.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		props[k] = varyProperty(rng, group.Properties[k])
	}

	name, _ := props["name"].(string)
	if name == "" {
		name = titleWords(group.Type)
	}
	if total > 1 {
		name = fmt.Sprintf("%s %d", name, index+1)
	}
	props["name"] = name

	return props
}

// varyProperty resolves template value variations: a two-element numeric
// list is a uniform range, any other non-empty list is a random choice.
func varyProperty(rng *rand.Rand, value any) any {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return cloneJSON(value)
	}
	if len(list) == 2 {
		lo, okLo := numeric(list[0])
		hi, okHi := numeric(list[1])
		if okLo && okHi {
			return uniform(rng, lo, hi)
		}
	}
	return cloneJSON(list[rng.Intn(len(list))])
}

func (g *Generator) buildComponents(entityType string) map[string]map[string]any {
	tpl, ok := g.entities[entityType]
	if !ok || len(tpl.components) == 0 {
		return nil
	}
	records := make(map[string]map[string]any, len(tpl.components))
	for _, name := range tpl.components {
		rec, ok := g.registry.NewRecord(name)
		if !ok {
			rec = map[string]any{}
		}
		records[name] = rec
	}
	return records
}

func (g *Generator) applyRule(rng *rand.Rand, blueprints []Blueprint, rule Rule) []Blueprint {
	switch rule.Type {
	case "avoid_star_overlap":
		minDistance := rule.MinDistance
		if minDistance <= 0 {
			minDistance = 100
		}
		return avoidStarOverlap(blueprints, minDistance)
	case "orbital_alignment":
		starTypes := rule.StarTypes
		if len(starTypes) == 0 {
			starTypes = []string{"star"}
		}
		return alignPlanetsToStars(blueprints, starTypes)
	case "trade_routes":
		stationTypes := rule.StationTypes
		if len(stationTypes) == 0 {
			stationTypes = []string{"space_station"}
		}
		return connectTradeRoutes(blueprints, stationTypes)
	default:
		slog.Warn("unknown post-generation rule, skipping", "rule", rule.Type)
		return blueprints
	}
}

// avoidStarOverlap pushes later stars away from earlier ones until no
// pair sits closer than minDistance.
func avoidStarOverlap(blueprints []Blueprint, minDistance float64) []Blueprint {
	var stars []*Blueprint
	for i := range blueprints {
		if blueprints[i].Type == "star" {
			stars = append(stars, &blueprints[i])
		}
	}

	for i, a := range stars {
		for _, b := range stars[i+1:] {
			distance := components.Dist(a.Pos, b.Pos)
			if distance >= minDistance {
				continue
			}
			angle := math.Atan2(b.Pos.Y-a.Pos.Y, b.Pos.X-a.Pos.X)
			b.Pos.X = a.Pos.X + minDistance*math.Cos(angle)
			b.Pos.Y = a.Pos.Y + minDistance*math.Sin(angle)
		}
	}
	return blueprints
}

// alignPlanetsToStars pushes each planet out to a minimum orbital
// distance from its nearest star.
func alignPlanetsToStars(blueprints []Blueprint, starTypes []string) []Blueprint {
	const minOrbitalDistance = 80.0

	var stars []*Blueprint
	for i := range blueprints {
		for _, t := range starTypes {
			if blueprints[i].Type == t {
				stars = append(stars, &blueprints[i])
				break
			}
		}
	}
	if len(stars) == 0 {
		return blueprints
	}

	for i := range blueprints {
		planet := &blueprints[i]
		if planet.Type != "planet" {
			continue
		}

		closest := stars[0]
		closestDist := components.Dist(planet.Pos, closest.Pos)
		for _, star := range stars[1:] {
			if d := components.Dist(planet.Pos, star.Pos); d < closestDist {
				closest, closestDist = star, d
			}
		}

		if closestDist < minOrbitalDistance {
			angle := math.Atan2(planet.Pos.Y-closest.Pos.Y, planet.Pos.X-closest.Pos.X)
			planet.Pos.X = closest.Pos.X + minOrbitalDistance*math.Cos(angle)
			planet.Pos.Y = closest.Pos.Y + minOrbitalDistance*math.Sin(angle)
		}
	}
	return blueprints
}

// connectTradeRoutes links each station to up to three nearest stations
// through a trade_routes component.
func connectTradeRoutes(blueprints []Blueprint, stationTypes []string) []Blueprint {
	var stations []*Blueprint
	for i := range blueprints {
		for _, t := range stationTypes {
			if blueprints[i].Type == t {
				stations = append(stations, &blueprints[i])
				break
			}
		}
	}
	if len(stations) < 2 {
		return blueprints
	}

	for _, station := range stations {
		type link struct {
			distance float64
			id       string
		}
		links := make([]link, 0, len(stations)-1)
		for _, other := range stations {
			if other == station {
				continue
			}
			links = append(links, link{
				distance: components.Dist(station.Pos, other.Pos),
				id:       other.ID.String(),
			})
		}
		sort.Slice(links, func(i, j int) bool { return links[i].distance < links[j].distance })

		maxConnections := 3
		if len(links) < maxConnections {
			maxConnections = len(links)
		}
		connected := make([]any, 0, maxConnections)
		for _, l := range links[:maxConnections] {
			connected = append(connected, l.id)
		}

		if station.Components == nil {
			station.Components = make(map[string]map[string]any)
		}
		station.Components["trade_routes"] = map[string]any{"connected_stations": connected}
	}
	return blueprints
}

// GenerationStats summarizes a generated blueprint set.
type GenerationStats struct {
	TotalEntities int
	EntityTypes   map[string]int
	Bounds        Bounds
	AveragePos    components.Vec2
	Seed          int64
}

// Stats computes summary statistics for a blueprint set.
func (g *Generator) Stats(blueprints []Blueprint) GenerationStats {
	stats := GenerationStats{
		TotalEntities: len(blueprints),
		EntityTypes:   make(map[string]int),
		Seed:          g.lastSeed,
	}
	if len(blueprints) == 0 {
		return stats
	}

	stats.Bounds = Bounds{
		X: [2]float64{math.Inf(1), math.Inf(-1)},
		Y: [2]float64{math.Inf(1), math.Inf(-1)},
	}

	var totalX, totalY float64
	for _, bp := range blueprints {
		stats.EntityTypes[bp.Type]++
		totalX += bp.Pos.X
		totalY += bp.Pos.Y

		stats.Bounds.X[0] = math.Min(stats.Bounds.X[0], bp.Pos.X)
		stats.Bounds.X[1] = math.Max(stats.Bounds.X[1], bp.Pos.X)
		stats.Bounds.Y[0] = math.Min(stats.Bounds.Y[0], bp.Pos.Y)
		stats.Bounds.Y[1] = math.Max(stats.Bounds.Y[1], bp.Pos.Y)
	}

	n := float64(len(blueprints))
	stats.AveragePos = components.Vec2{X: totalX / n, Y: totalY / n}
	return stats
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func cloneJSON(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneJSON(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneJSON(item)
		}
		return out
	default:
		return v
	}
}

// titleWords turns an underscore name into a display name, e.g.
// "cargo_ship" becomes "Cargo Ship".
func titleWords(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
