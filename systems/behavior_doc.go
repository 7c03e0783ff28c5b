// Package systems implements the decision and movement behavior
// subsystems and the synchronization step between them.
package systems

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/decision.schema.json
var decisionSchemaJSON string

//go:embed schema/movement.schema.json
var movementSchemaJSON string

// behaviorHeader is the part every behavior definition shares.
type behaviorHeader struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Enabled  *bool  `json:"enabled"`
	Priority int    `json:"priority"`
}

func (h behaviorHeader) enabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// rawBehavior is one definition from a registry document, decoded far
// enough to dispatch on its type tag.
type rawBehavior struct {
	Header behaviorHeader
	Raw    json.RawMessage
}

// loadBehaviorDoc reads a behavior registry document, validates it
// against the registry's schema, and returns the definitions in
// document order. Any failure returns an error; callers degrade to zero
// behaviors loaded.
func loadBehaviorDoc(path string, schema *jsonschema.Schema) ([]rawBehavior, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading behavior config: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing behavior config: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validating behavior config: %w", err)
	}

	var parsed struct {
		Behaviors []json.RawMessage `json:"behaviors"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing behavior list: %w", err)
	}

	out := make([]rawBehavior, 0, len(parsed.Behaviors))
	for i, raw := range parsed.Behaviors {
		var header behaviorHeader
		if err := json.Unmarshal(raw, &header); err != nil {
			return nil, fmt.Errorf("parsing behavior %d header: %w", i, err)
		}
		out = append(out, rawBehavior{Header: header, Raw: raw})
	}
	return out, nil
}
