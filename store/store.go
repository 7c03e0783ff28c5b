// Package store persists world snapshots as JSON map files.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/drift/world"
)

// MapMetadata describes a saved map file.
type MapMetadata struct {
	CreatedAt   string `json:"created_at"`
	EntityCount int    `json:"entity_count"`
	Filename    string `json:"filename"`
}

// EntityRecord is one serialized entity.
type EntityRecord struct {
	ID         string                    `json:"id"`
	Type       string                    `json:"type"`
	Position   [2]float64                `json:"position"`
	Properties map[string]any            `json:"properties"`
	Components map[string]map[string]any `json:"components"`
}

// MapFile is the on-disk map format.
type MapFile struct {
	Metadata MapMetadata    `json:"metadata"`
	Entities []EntityRecord `json:"entities"`
}

// Store reads and writes map files under a maps directory. Backups of
// overwritten files go to <dir>/backups.
type Store struct {
	mapsDir    string
	backupsDir string
}

// New creates a store rooted at dir, creating its subdirectories.
func New(dir string) (*Store, error) {
	s := &Store{
		mapsDir:    dir,
		backupsDir: filepath.Join(dir, "backups"),
	}
	for _, d := range []string{s.mapsDir, s.backupsDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", d, err)
		}
	}
	return s, nil
}

// SaveMap writes every entity in the world to <name>.json, backing up
// an existing file of the same name first.
func (s *Store) SaveMap(w *world.World, name string) error {
	entities := snapshotEntities(w)

	file := MapFile{
		Metadata: MapMetadata{
			CreatedAt:   time.Now().Format(time.RFC3339),
			EntityCount: len(entities),
			Filename:    name,
		},
		Entities: entities,
	}

	path := s.mapPath(name)
	if _, err := os.Stat(path); err == nil {
		if err := s.backup(path); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding map %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing map %s: %w", name, err)
	}
	return nil
}

// LoadMap reads <name>.json and spawns its entities into the world.
// Returns the number of entities spawned.
func (s *Store) LoadMap(w *world.World, name string) (int, error) {
	file, err := s.ReadMap(name)
	if err != nil {
		return 0, err
	}

	for _, rec := range file.Entities {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			return 0, fmt.Errorf("map %s: entity %q: %w", name, rec.ID, err)
		}
		e := w.SpawnWithID(id, rec.Type, rec.Position[0], rec.Position[1], rec.Properties)
		for comp, data := range rec.Components {
			w.SetRecord(e, comp, data)
		}
	}
	return len(file.Entities), nil
}

// ReadMap parses <name>.json without touching the world.
func (s *Store) ReadMap(name string) (MapFile, error) {
	data, err := os.ReadFile(s.mapPath(name))
	if err != nil {
		return MapFile{}, fmt.Errorf("reading map %s: %w", name, err)
	}
	var file MapFile
	if err := json.Unmarshal(data, &file); err != nil {
		return MapFile{}, fmt.Errorf("parsing map %s: %w", name, err)
	}
	return file, nil
}

// ListMaps returns saved map names, sorted.
func (s *Store) ListMaps() ([]string, error) {
	entries, err := os.ReadDir(s.mapsDir)
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// DeleteMap removes a saved map after backing it up.
func (s *Store) DeleteMap(name string) error {
	path := s.mapPath(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("map not found: %s", name)
	}
	if err := s.backup(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting map %s: %w", name, err)
	}
	return nil
}

func (s *Store) mapPath(name string) string {
	return filepath.Join(s.mapsDir, name+".json")
}

func (s *Store) backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s for backup: %w", path, err)
	}
	stamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(s.backupsDir, stamp+"_"+filepath.Base(path))
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return fmt.Errorf("writing backup %s: %w", backupPath, err)
	}
	return nil
}

// snapshotEntities serializes the live world into entity records.
func snapshotEntities(w *world.World) []EntityRecord {
	infos := w.Snapshot()
	records := make([]EntityRecord, 0, len(infos))
	for _, info := range infos {
		meta := w.Metadata(info.Entity)

		rec := EntityRecord{
			ID:         meta.ID.String(),
			Type:       meta.Type,
			Position:   [2]float64{info.Pos.X, info.Pos.Y},
			Properties: meta.Properties,
			Components: meta.Records,
		}
		if rec.Properties == nil {
			rec.Properties = map[string]any{}
		}
		if rec.Components == nil {
			rec.Components = map[string]map[string]any{}
		}
		records = append(records, rec)
	}
	return records
}
