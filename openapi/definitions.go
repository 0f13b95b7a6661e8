package openapi

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/http4k/reekwest/openapi/schema"
)

// Definitions aggregates the named schema fragments emitted by every
// schema-creation call across all routes of a document. Names are unique per
// document: structurally identical duplicates collapse, while two different
// shapes claiming the same name is a conflict.
type Definitions struct {
	entries map[string]schema.Definition
	keys    map[string]string
}

// NewDefinitions returns an empty registry.
func NewDefinitions() *Definitions {
	return &Definitions{
		entries: make(map[string]schema.Definition),
		keys:    make(map[string]string),
	}
}

// Add merges definitions into the registry. A name already present with a
// structurally different schema fails.
func (d *Definitions) Add(defs ...schema.Definition) error {
	for _, def := range defs {
		key := canonical(def.Schema)
		if existing, ok := d.keys[def.Name]; ok {
			if existing != key {
				return fmt.Errorf("openapi: definition %q maps to two different schemas", def.Name)
			}
			continue
		}
		d.entries[def.Name] = def
		d.keys[def.Name] = key
	}
	return nil
}

// Sorted returns all definitions ordered by name.
func (d *Definitions) Sorted() []schema.Definition {
	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]schema.Definition, 0, len(names))
	for _, name := range names {
		defs = append(defs, d.entries[name])
	}
	return defs
}

// Render returns the registry as one object keyed by name, for the
// document's definitions location.
func (d *Definitions) Render() map[string]any {
	out := make(map[string]any, len(d.entries))
	for name, def := range d.entries {
		out[name] = def.Schema
	}
	return out
}

// canonical returns the string identity of a schema fragment. Example values
// are stripped first: two derivations of the same shape from different
// example instances are the same definition. Map keys marshal sorted, so
// structurally equal fragments share one form.
func canonical(m map[string]any) string {
	data, err := json.Marshal(stripExamples(m))
	if err != nil {
		return ""
	}
	return string(data)
}

func stripExamples(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if k == "example" {
				continue
			}
			out[k] = stripExamples(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stripExamples(val)
		}
		return out
	default:
		return v
	}
}
