package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/drift/world"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	src := world.New(world.NewComponentRegistry())
	star := src.Spawn("star", 500, 400, map[string]any{"name": "Sol", "temperature": 5778.0})
	ship := src.Spawn("cargo_ship", 120, 80, map[string]any{"name": "Hauler", "crew": 5.0})
	src.SetRecord(ship, "cargo", map[string]any{"capacity": 200.0, "current_load": 0.0})
	_ = star

	if err := s.SaveMap(src, "roundtrip"); err != nil {
		t.Fatalf("save: %v", err)
	}

	dst := world.New(world.NewComponentRegistry())
	n, err := s.LoadMap(dst, "roundtrip")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 2 || dst.Count() != 2 {
		t.Fatalf("loaded %d entities (world %d), want 2", n, dst.Count())
	}

	// Identity, position, properties and component records all survive.
	id := src.Metadata(ship).ID
	loaded, ok := dst.Lookup(id)
	if !ok {
		t.Fatal("ship identity should survive the round trip")
	}
	pos := dst.Position(loaded)
	if pos.X != 120 || pos.Y != 80 {
		t.Errorf("position = (%v, %v), want (120, 80)", pos.X, pos.Y)
	}
	meta := dst.Metadata(loaded)
	if meta.Type != "cargo_ship" || meta.Name != "Hauler" {
		t.Errorf("metadata = (%q, %q), want (cargo_ship, Hauler)", meta.Type, meta.Name)
	}
	rec := dst.Record(loaded, "cargo")
	if rec == nil || rec["capacity"] != 200.0 {
		t.Errorf("cargo record = %v, want the saved payload", rec)
	}
}

func TestReadMapMetadata(t *testing.T) {
	s := newTestStore(t)

	w := world.New(world.NewComponentRegistry())
	w.Spawn("asteroid", 1, 2, nil)

	if err := s.SaveMap(w, "meta"); err != nil {
		t.Fatal(err)
	}

	file, err := s.ReadMap("meta")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if file.Metadata.EntityCount != 1 || file.Metadata.Filename != "meta" {
		t.Errorf("metadata = %+v, want entity count 1 and filename meta", file.Metadata)
	}
	if file.Metadata.CreatedAt == "" {
		t.Error("created_at should be recorded")
	}
}

func TestListMaps(t *testing.T) {
	s := newTestStore(t)
	w := world.New(world.NewComponentRegistry())

	for _, name := range []string{"beta", "alpha"} {
		if err := s.SaveMap(w, name); err != nil {
			t.Fatal(err)
		}
	}

	names, err := s.ListMaps()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("names = %v, want [alpha beta] sorted and without the backups dir", names)
	}
}

func TestOverwriteCreatesBackup(t *testing.T) {
	s := newTestStore(t)
	w := world.New(world.NewComponentRegistry())
	w.Spawn("star", 0, 0, nil)

	if err := s.SaveMap(w, "twice"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveMap(w, "twice"); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(s.backupsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("backups = %d, want 1 after overwriting once", len(entries))
	}
}

func TestDeleteMap(t *testing.T) {
	s := newTestStore(t)
	w := world.New(world.NewComponentRegistry())

	if err := s.SaveMap(w, "gone"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteMap("gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := os.Stat(filepath.Join(s.mapsDir, "gone.json")); !os.IsNotExist(err) {
		t.Error("map file should be removed")
	}
	entries, err := os.ReadDir(s.backupsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("backups = %d, want the deleted map backed up", len(entries))
	}

	if err := s.DeleteMap("never_existed"); err == nil {
		t.Error("deleting an unknown map should fail")
	}
}

func TestLoadMissingMapFails(t *testing.T) {
	s := newTestStore(t)
	w := world.New(world.NewComponentRegistry())

	if _, err := s.LoadMap(w, "absent"); err == nil {
		t.Error("expected an error for a missing map")
	}
}
