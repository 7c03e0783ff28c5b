package components

import "github.com/google/uuid"

// Metadata identifies an entity and carries its free-form data.
// Properties hold scalar/collection values set by generation or external
// callers; Records hold named persisted component payloads ("decision"
// among them). Both survive save/load.
type Metadata struct {
	ID         uuid.UUID
	Type       string
	Name       string
	Properties map[string]any
	Records    map[string]map[string]any
}

// Record returns the named persisted payload, or nil if absent.
func (m *Metadata) Record(name string) map[string]any {
	if m.Records == nil {
		return nil
	}
	return m.Records[name]
}

// SetRecord attaches or replaces a named persisted payload.
func (m *Metadata) SetRecord(name string, rec map[string]any) {
	if m.Records == nil {
		m.Records = make(map[string]map[string]any)
	}
	m.Records[name] = rec
}
