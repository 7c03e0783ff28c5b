package systems

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pthm-cable/drift/components"
)

func sampleRecord() DecisionRecord {
	return DecisionRecord{
		Memory: components.Memory{
			LastSeen:      map[string]components.Vec2{"a": {X: 1, Y: 2}},
			LastSeenAt:    map[string]float64{"a": 3.5},
			CurrentTarget: "a",
			CurrentGoal:   "patrol sector",
			GoalData:      map[string]any{"current_waypoint": 2.0, "target_position": []float64{10, 20}},
			Blackboard:    map[string]any{"note": "x"},
		},
		CurrentGoal:       "patrol sector",
		AIType:            "aggressive",
		AggressionLevel:   0.8,
		IntelligenceLevel: 70,
	}
}

func TestDecisionRecordRoundTripIsIdempotent(t *testing.T) {
	first := sampleRecord().ToMap()
	second := DecisionRecordFromMap(first).ToMap()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip changed the record:\nfirst:  %#v\nsecond: %#v", first, second)
	}
}

func TestDecisionRecordSurvivesJSONRoundTrip(t *testing.T) {
	first := sampleRecord().ToMap()

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	var viaJSON map[string]any
	if err := json.Unmarshal(data, &viaJSON); err != nil {
		t.Fatal(err)
	}

	second := DecisionRecordFromMap(viaJSON).ToMap()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("JSON round trip changed the record:\nfirst:  %#v\nsecond: %#v", first, second)
	}
}

func TestDecisionRecordFromNilMap(t *testing.T) {
	rec := DecisionRecordFromMap(nil)

	if rec.AIType != "basic" || rec.AggressionLevel != 0.5 || rec.IntelligenceLevel != 50 {
		t.Errorf("defaults = (%q, %v, %d), want (basic, 0.5, 50)",
			rec.AIType, rec.AggressionLevel, rec.IntelligenceLevel)
	}
	if rec.Memory.LastSeen == nil || rec.Memory.GoalData == nil {
		t.Error("memory maps should be initialized")
	}
}

func TestDecisionRecordEmptyGoalIsNull(t *testing.T) {
	rec := DecisionRecord{AIType: "basic", Memory: emptyMemory()}
	m := rec.ToMap()
	if m["current_goal"] != nil {
		t.Errorf("current_goal = %v, want nil for an empty goal", m["current_goal"])
	}
}

func TestStateFromRecordMapsAIType(t *testing.T) {
	tests := []struct {
		aiType   string
		behavior string
		energy   float64
		alert    float64
	}{
		{"aggressive", "pirate_hunt", 80, 60},
		{"defensive", "station_guard", 90, 30},
		{"merchant", "trade_run", 70, 20},
		{"basic", "default_idle", 100, 0},
		{"unheard_of", "default_idle", 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.aiType, func(t *testing.T) {
			state := StateFromRecord(DecisionRecord{AIType: tt.aiType, Memory: emptyMemory()})
			if state.Behavior != tt.behavior {
				t.Errorf("behavior = %q, want %q", state.Behavior, tt.behavior)
			}
			if state.Energy != tt.energy || state.Alertness != tt.alert {
				t.Errorf("levels = (%v, %v), want (%v, %v)",
					state.Energy, state.Alertness, tt.energy, tt.alert)
			}
		})
	}
}

func TestVecFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want components.Vec2
		ok   bool
	}{
		{"vec2", components.Vec2{X: 1, Y: 2}, components.Vec2{X: 1, Y: 2}, true},
		{"float slice", []float64{3, 4}, components.Vec2{X: 3, Y: 4}, true},
		{"array", [2]float64{5, 6}, components.Vec2{X: 5, Y: 6}, true},
		{"json slice", []any{7.0, 8.0}, components.Vec2{X: 7, Y: 8}, true},
		{"short slice", []float64{1}, components.Vec2{}, false},
		{"string", "nope", components.Vec2{}, false},
		{"nil", nil, components.Vec2{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := vecFromAny(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("vecFromAny(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCanonicalValueWidensNumbers(t *testing.T) {
	in := map[string]any{
		"count":  3,
		"ratio":  float32(0.5),
		"pos":    []any{1.0, 2.0},
		"nested": map[string]any{"n": int64(7)},
	}
	out := canonicalMap(in)

	if out["count"] != 3.0 {
		t.Errorf("count = %v (%T), want float64 3", out["count"], out["count"])
	}
	if out["ratio"] != 0.5 {
		t.Errorf("ratio = %v (%T), want float64 0.5", out["ratio"], out["ratio"])
	}
	if !reflect.DeepEqual(out["pos"], []float64{1, 2}) {
		t.Errorf("pos = %#v, want []float64{1, 2}", out["pos"])
	}
	nested := out["nested"].(map[string]any)
	if nested["n"] != 7.0 {
		t.Errorf("nested n = %v (%T), want float64 7", nested["n"], nested["n"])
	}
}
