package generator

import (
	"encoding/json"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/world"
)

func newTestGenerator() *Generator {
	return New(world.NewComponentRegistry(), "")
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	g := newTestGenerator()

	first, err := g.Generate("basic", 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := g.Generate("basic", 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Type != second[i].Type {
			t.Errorf("entity %d: type %q vs %q", i, first[i].Type, second[i].Type)
		}
		if first[i].Pos != second[i].Pos {
			t.Errorf("entity %d: position %v vs %v", i, first[i].Pos, second[i].Pos)
		}
		if !reflect.DeepEqual(first[i].Properties, second[i].Properties) {
			t.Errorf("entity %d: properties differ:\n%v\n%v", i, first[i].Properties, second[i].Properties)
		}
		// Identities are the one non-deterministic part.
		if first[i].ID == second[i].ID {
			t.Errorf("entity %d: ids should be fresh per run", i)
		}
	}
}

func TestGenerateBasicCounts(t *testing.T) {
	g := newTestGenerator()

	bps, err := g.Generate("basic", 7)
	if err != nil {
		t.Fatal(err)
	}

	counts := map[string]int{}
	for _, bp := range bps {
		counts[bp.Type]++
	}

	want := map[string]int{"star": 1, "planet": 3, "asteroid": 15, "space_station": 2}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
}

func TestGenerateStaysInBounds(t *testing.T) {
	g := newTestGenerator()

	bps, err := g.Generate("basic", 99)
	if err != nil {
		t.Fatal(err)
	}

	for _, bp := range bps {
		if bp.Pos.X < 0 || bp.Pos.X > 1000 || bp.Pos.Y < 0 || bp.Pos.Y > 800 {
			t.Errorf("%s at (%v, %v) outside the template bounds", bp.Type, bp.Pos.X, bp.Pos.Y)
		}
	}
}

func TestGenerateAttachesTypeComponents(t *testing.T) {
	g := newTestGenerator()

	bps, err := g.Generate("warzone", 3)
	if err != nil {
		t.Fatal(err)
	}

	for _, bp := range bps {
		switch bp.Type {
		case "fighter":
			if bp.Components["combat"] == nil || bp.Components["movement"] == nil {
				t.Errorf("fighter components = %v, want combat and movement records", bp.Components)
			}
		case "star", "planet":
			if len(bp.Components) != 0 {
				t.Errorf("%s components = %v, celestial bodies carry none", bp.Type, bp.Components)
			}
		}
	}
}

func TestGeneratedNamesAreNumbered(t *testing.T) {
	g := newTestGenerator()

	bps, err := g.Generate("basic", 11)
	if err != nil {
		t.Fatal(err)
	}

	planets := 0
	for _, bp := range bps {
		if bp.Type == "star" {
			if bp.Properties["name"] != "Central Star" {
				t.Errorf("star name = %v, want the group's configured name", bp.Properties["name"])
			}
		}
		if bp.Type == "planet" {
			planets++
			want := "Unknown Planet " + string(rune('0'+planets))
			if bp.Properties["name"] != want {
				t.Errorf("planet name = %v, want %q", bp.Properties["name"], want)
			}
		}
	}
}

func TestCountRangeRespected(t *testing.T) {
	g := newTestGenerator()
	tpl := MapTemplate{
		Bounds: Bounds{X: [2]float64{0, 100}, Y: [2]float64{0, 100}},
		Entities: []EntityGroup{
			{Type: "asteroid", Count: Count{Min: 2, Max: 5}},
		},
	}
	g.mapTemplates["range_test"] = tpl

	for seed := int64(0); seed < 20; seed++ {
		bps, err := g.Generate("range_test", seed)
		if err != nil {
			t.Fatal(err)
		}
		if len(bps) < 2 || len(bps) > 5 {
			t.Errorf("seed %d: count = %d, want within [2, 5]", seed, len(bps))
		}
	}
}

func TestCountUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Count
	}{
		{"plain integer", "3", Count{Min: 3, Max: 3}},
		{"range", "[2, 5]", Count{Min: 2, Max: 5}},
		{"single element", "[4]", Count{Min: 4, Max: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Count
			if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if c != tt.want {
				t.Errorf("count = %+v, want %+v", c, tt.want)
			}
		})
	}

	var c Count
	if err := json.Unmarshal([]byte(`"many"`), &c); err == nil {
		t.Error("expected an error for a non-numeric count")
	}
}

func TestDistributionsStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	bounds := Bounds{X: [2]float64{100, 300}, Y: [2]float64{100, 300}}
	g := newTestGenerator()

	for _, distribution := range []string{"random", "cluster"} {
		positions := g.generatePositions(rng, 30, bounds, distribution)
		if len(positions) != 30 {
			t.Fatalf("%s: got %d positions, want 30", distribution, len(positions))
		}
		for _, p := range positions {
			if p.X < 100 || p.X > 300 || p.Y < 100 || p.Y > 300 {
				t.Errorf("%s: (%v, %v) outside bounds", distribution, p.X, p.Y)
			}
		}
	}
}

func TestOrbitalPositionsRingTheCenter(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	bounds := Bounds{X: [2]float64{0, 200}, Y: [2]float64{0, 200}}

	positions := orbitalPositions(rng, 12, bounds)
	maxRadius := 100.0 * 0.8
	for _, p := range positions {
		r := math.Hypot(p.X-100, p.Y-100)
		if r < maxRadius*0.3-1e-9 || r > maxRadius+1e-9 {
			t.Errorf("radius %v outside the orbital band [%v, %v]", r, maxRadius*0.3, maxRadius)
		}
	}
}

func TestApplySpacingEnforcesMinimum(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	positions := []components.Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 100, Y: 100},
	}

	spaced := applySpacing(rng, positions, 10)

	for i := range spaced {
		for j := i + 1; j < len(spaced); j++ {
			d := math.Hypot(spaced[i].X-spaced[j].X, spaced[i].Y-spaced[j].Y)
			if d < 10 {
				t.Errorf("positions %d and %d only %v apart, want >= 10", i, j, d)
			}
		}
	}
}

func TestVaryProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	// A two-element numeric list draws from the range.
	for i := 0; i < 20; i++ {
		v := varyProperty(rng, []any{10.0, 20.0})
		f, ok := v.(float64)
		if !ok || f < 10 || f > 20 {
			t.Fatalf("range draw = %v, want a float in [10, 20]", v)
		}
	}

	// Any other list is a choice.
	choices := map[any]bool{"iron": true, "nickel": true, "gold": true}
	for i := 0; i < 20; i++ {
		v := varyProperty(rng, []any{"iron", "nickel", "gold"})
		if !choices[v] {
			t.Fatalf("choice draw = %v, want one of the listed values", v)
		}
	}

	// Scalars pass through.
	if v := varyProperty(rng, 42.0); v != 42.0 {
		t.Errorf("scalar = %v, want passed through", v)
	}
}

func TestAvoidStarOverlapRule(t *testing.T) {
	bps := []Blueprint{
		{Type: "star", Pos: components.Position{X: 0, Y: 0}},
		{Type: "star", Pos: components.Position{X: 10, Y: 0}},
	}

	out := avoidStarOverlap(bps, 100)

	d := components.Dist(out[0].Pos, out[1].Pos)
	if math.Abs(d-100) > 1e-9 {
		t.Errorf("star separation = %v, want pushed to 100", d)
	}
}

func TestOrbitalAlignmentRule(t *testing.T) {
	bps := []Blueprint{
		{Type: "star", Pos: components.Position{X: 0, Y: 0}},
		{Type: "planet", Pos: components.Position{X: 20, Y: 0}},
		{Type: "planet", Pos: components.Position{X: 500, Y: 0}},
	}

	out := alignPlanetsToStars(bps, []string{"star"})

	if d := components.Dist(out[1].Pos, out[0].Pos); math.Abs(d-80) > 1e-9 {
		t.Errorf("near planet distance = %v, want pushed to the minimum orbit 80", d)
	}
	if out[2].Pos.X != 500 {
		t.Errorf("distant planet moved to %v, want untouched", out[2].Pos)
	}
}

func TestTradeRoutesRule(t *testing.T) {
	g := newTestGenerator()
	g.mapTemplates["stations"] = MapTemplate{
		Bounds: Bounds{X: [2]float64{0, 500}, Y: [2]float64{0, 500}},
		Entities: []EntityGroup{
			{Type: "space_station", Count: Count{Min: 3, Max: 3}},
		},
		Rules: []Rule{{Type: "trade_routes"}},
	}

	bps, err := g.Generate("stations", 1)
	if err != nil {
		t.Fatal(err)
	}

	ids := map[string]bool{}
	for _, bp := range bps {
		ids[bp.ID.String()] = true
	}

	for _, bp := range bps {
		routes := bp.Components["trade_routes"]
		if routes == nil {
			t.Fatalf("station %s has no trade_routes component", bp.ID)
		}
		connected, ok := routes["connected_stations"].([]any)
		if !ok || len(connected) != 2 {
			t.Fatalf("connected stations = %v, want links to the 2 other stations", routes["connected_stations"])
		}
		for _, link := range connected {
			id, _ := link.(string)
			if !ids[id] || id == bp.ID.String() {
				t.Errorf("link %v should reference another generated station", link)
			}
		}
	}
}

func TestPopulateSpawnsBlueprints(t *testing.T) {
	g := newTestGenerator()
	w := world.New(world.NewComponentRegistry())

	bps, err := g.Generate("basic", 21)
	if err != nil {
		t.Fatal(err)
	}

	spawned := g.Populate(w, bps)
	if len(spawned) != len(bps) || w.Count() != len(bps) {
		t.Fatalf("spawned %d of %d blueprints", len(spawned), len(bps))
	}

	for i, bp := range bps {
		e := spawned[i]
		if w.Metadata(e).ID != bp.ID {
			t.Errorf("entity %d: id mismatch", i)
		}
		for name := range bp.Components {
			if w.Record(e, name) == nil {
				t.Errorf("entity %d: component %q not attached", i, name)
			}
		}
	}
}

func TestLoadTemplateFallsBackToBasic(t *testing.T) {
	g := newTestGenerator()

	tpl, err := g.LoadTemplate("no_such_template")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tpl.Name != "Basic System" {
		t.Errorf("template = %q, want the basic fallback", tpl.Name)
	}
}

func TestSaveAndLoadTemplateFromDisk(t *testing.T) {
	g := New(world.NewComponentRegistry(), t.TempDir())

	custom := MapTemplate{
		Name:   "Custom",
		Bounds: Bounds{X: [2]float64{0, 10}, Y: [2]float64{0, 10}},
		Entities: []EntityGroup{
			{Type: "asteroid", Count: Count{Min: 1, Max: 1}},
		},
	}
	if err := g.SaveTemplate("custom", custom); err != nil {
		t.Fatalf("save: %v", err)
	}

	tpl, err := g.LoadTemplate("custom")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tpl.Name != "Custom" || len(tpl.Entities) != 1 {
		t.Errorf("template = %+v, want the saved one", tpl)
	}

	// A disk file wins over a built-in of the same name.
	if err := g.SaveTemplate("basic", custom); err != nil {
		t.Fatal(err)
	}
	tpl, err = g.LoadTemplate("basic")
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Name != "Custom" {
		t.Errorf("template = %q, want the disk override", tpl.Name)
	}
}

func TestStats(t *testing.T) {
	g := newTestGenerator()

	bps, err := g.Generate("basic", 42)
	if err != nil {
		t.Fatal(err)
	}

	stats := g.Stats(bps)
	if stats.TotalEntities != len(bps) {
		t.Errorf("total = %d, want %d", stats.TotalEntities, len(bps))
	}
	if stats.EntityTypes["asteroid"] != 15 {
		t.Errorf("asteroid count = %d, want 15", stats.EntityTypes["asteroid"])
	}
	if stats.Seed != 42 {
		t.Errorf("seed = %d, want 42", stats.Seed)
	}
	if stats.Bounds.X[0] > stats.Bounds.X[1] || stats.Bounds.Y[0] > stats.Bounds.Y[1] {
		t.Errorf("bounds = %+v, want ordered", stats.Bounds)
	}
}
