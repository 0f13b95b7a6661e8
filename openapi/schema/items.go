package schema

import "sort"

// Item describes one permitted element shape within an array schema.
// Implementations are compared by the string form of their rendering, so two
// elements with identical declared shape collapse to one entry.
type Item interface {
	// Render returns the item's schema fragment.
	Render() map[string]any
}

// ObjectItem marks an element that is an object whose shape is captured by a
// Reference elsewhere.
type ObjectItem struct{}

func (ObjectItem) Render() map[string]any { return map[string]any{"type": "object"} }

// PrimitiveItem is a non-object element of a declared primitive type
// (including "array" for nested arrays).
type PrimitiveItem struct {
	Type string
}

func (i PrimitiveItem) Render() map[string]any { return map[string]any{"type": i.Type} }

// RefItem is an element captured by a named definition.
type RefItem struct {
	Ref string
}

func (i RefItem) Render() map[string]any { return map[string]any{"$ref": i.Ref} }

// Items is the deduplicated, deterministically ordered set of element shapes
// for one array, plus the definitions those elements contribute.
type Items struct {
	entries []Item
	defs    []Definition
}

// NewItems collects the item descriptors of the given element schemas,
// deduplicating by rendered string form and sorting the survivors by that
// same form.
func NewItems(elements []Node) Items {
	seen := make(map[string]Item)
	var defs []Definition
	for _, n := range elements {
		item := n.Item()
		key := renderKey(item.Render())
		if _, ok := seen[key]; !ok {
			seen[key] = item
		}
		defs = append(defs, n.Definitions()...)
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Item, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, seen[k])
	}
	return Items{entries: entries, defs: defs}
}

// OneOf returns the deduplicated element shapes.
func (i Items) OneOf() []Item { return i.entries }

// Definitions returns the definitions flattened from every element schema.
func (i Items) Definitions() []Definition { return i.defs }

// Render returns the array's "items" fragment: empty for an empty array, the
// single shape directly, or a oneOf set.
func (i Items) Render() map[string]any {
	switch len(i.entries) {
	case 0:
		return map[string]any{}
	case 1:
		return i.entries[0].Render()
	default:
		oneOf := make([]any, len(i.entries))
		for n, e := range i.entries {
			oneOf[n] = e.Render()
		}
		return map[string]any{"oneOf": oneOf}
	}
}
