// Package schema derives JSON-schema fragments from example values and parsed
// JSON documents. The node tree is a sealed set of tagged variants; trees are
// built fresh per derivation, never mutated, and flattened into a document
// through Render and Definitions.
package schema

import (
	"sort"

	json "github.com/goccy/go-json"
)

// Kind identifies the variant of a schema node.
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindObject
	KindReference
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// Definition is a named, reusable schema fragment addressed by $ref.
type Definition struct {
	Name   string
	Schema map[string]any
}

// Node is the base interface for all schema tree variants.
type Node interface {
	// Kind returns the node variant for type switching.
	Kind() Kind

	// Name returns the node's name: a field name, a definition id, or "".
	Name() string

	// Nullable reports whether the node's declared type admits null.
	Nullable() bool

	// Render returns the node's schema fragment.
	Render() map[string]any

	// Definitions returns every reusable definition this node and its
	// children contribute to the registry.
	Definitions() []Definition

	// Item returns the descriptor this node contributes when it appears as
	// an array element.
	Item() Item

	// Ensure only types in this package can implement Node.
	sealed()
}

// Primitive is a string, integer, number, or boolean schema.
type Primitive struct {
	name     string
	typ      string
	nullable bool
	example  any
}

// NewPrimitive returns a primitive schema node. typ is one of "string",
// "integer", "number", "boolean".
func NewPrimitive(name, typ string, nullable bool, example any) *Primitive {
	return &Primitive{name: name, typ: typ, nullable: nullable, example: example}
}

func (p *Primitive) Kind() Kind     { return KindPrimitive }
func (p *Primitive) Name() string   { return p.name }
func (p *Primitive) Nullable() bool { return p.nullable }

func (p *Primitive) Render() map[string]any {
	m := map[string]any{"type": p.typ}
	if p.example != nil {
		m["example"] = p.example
	}
	return m
}

func (p *Primitive) Definitions() []Definition { return nil }
func (p *Primitive) Item() Item                { return PrimitiveItem{Type: p.typ} }
func (*Primitive) sealed()                     {}

// Array is an array schema whose permitted element shapes are held in Items.
type Array struct {
	name     string
	nullable bool
	items    Items
}

// NewArray returns an array schema node.
func NewArray(name string, nullable bool, items Items) *Array {
	return &Array{name: name, nullable: nullable, items: items}
}

func (a *Array) Kind() Kind     { return KindArray }
func (a *Array) Name() string   { return a.name }
func (a *Array) Nullable() bool { return a.nullable }

// Items returns the element shape set.
func (a *Array) Items() Items { return a.items }

func (a *Array) Render() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": a.items.Render(),
	}
}

func (a *Array) Definitions() []Definition { return a.items.Definitions() }
func (a *Array) Item() Item                { return PrimitiveItem{Type: "array"} }
func (*Array) sealed()                     {}

// Property is one named member of an object schema. Order is preserved from
// the source.
type Property struct {
	Name string
	Node Node
}

// Object is an object schema with ordered properties.
type Object struct {
	name       string
	nullable   bool
	properties []Property
}

// NewObject returns an object schema node.
func NewObject(name string, nullable bool, properties []Property) *Object {
	return &Object{name: name, nullable: nullable, properties: properties}
}

func (o *Object) Kind() Kind     { return KindObject }
func (o *Object) Name() string   { return o.name }
func (o *Object) Nullable() bool { return o.nullable }

// Properties returns the ordered property list.
func (o *Object) Properties() []Property { return o.properties }

// Required returns the sorted names of all non-nullable properties.
// Nullability comes from the declared type, never from an example value
// happening to be absent.
func (o *Object) Required() []string {
	var required []string
	for _, p := range o.properties {
		if !p.Node.Nullable() {
			required = append(required, p.Name)
		}
	}
	sort.Strings(required)
	return required
}

func (o *Object) Render() map[string]any {
	props := make(map[string]any, len(o.properties))
	for _, p := range o.properties {
		props[p.Name] = p.Node.Render()
	}
	m := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if required := o.Required(); len(required) > 0 {
		m["required"] = required
	}
	return m
}

func (o *Object) Definitions() []Definition {
	var defs []Definition
	for _, p := range o.properties {
		defs = append(defs, p.Node.Definitions()...)
	}
	return defs
}

func (o *Object) Item() Item { return ObjectItem{} }
func (*Object) sealed()      {}

// Reference is a named pointer into the definitions registry. It owns the
// referenced object for definition-flattening purposes; the reference itself
// is shared by every site that names the same definition.
type Reference struct {
	name   string
	ref    string
	target *Object
}

// NewReference returns a reference schema node. ref is the full pointer path,
// e.g. "#/components/schemas/Foo".
func NewReference(name, ref string, target *Object) *Reference {
	return &Reference{name: name, ref: ref, target: target}
}

func (r *Reference) Kind() Kind     { return KindReference }
func (r *Reference) Name() string   { return r.name }
func (r *Reference) Nullable() bool { return r.target.Nullable() }

// Ref returns the pointer path.
func (r *Reference) Ref() string { return r.ref }

// Target returns the referenced object.
func (r *Reference) Target() *Object { return r.target }

func (r *Reference) Render() map[string]any {
	return map[string]any{"$ref": r.ref}
}

func (r *Reference) Definitions() []Definition {
	defs := []Definition{{Name: r.name, Schema: r.target.Render()}}
	return append(defs, r.target.Definitions()...)
}

func (r *Reference) Item() Item { return RefItem{Ref: r.ref} }
func (*Reference) sealed()      {}

// renderKey returns the canonical string form of a rendered fragment, used
// for value-identity comparison. Map keys marshal sorted, so the form is
// deterministic.
func renderKey(m map[string]any) string {
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}
