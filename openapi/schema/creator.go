package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/http4k/reekwest/jsonx"
)

// anonymousID names top-level schemas that have neither an override id nor a
// declared type name.
const anonymousID = "object"

// IllegalSchemaError reports a value no schema can be derived from: a null
// value, or one whose JSON classification is unknown.
type IllegalSchemaError struct {
	Reason string
}

func (e *IllegalSchemaError) Error() string {
	return "schema: " + e.Reason
}

// Result pairs a rendered root schema with the definitions it depends on.
// Callers merge Definitions into a document-wide registry keyed by name.
type Result struct {
	Root        map[string]any
	Definitions []Definition
}

// Creator derives schema trees from example values and parsed JSON nodes.
// refPrefix is the pointer location definitions live at, e.g. "#/definitions/"
// or "#/components/schemas/".
type Creator struct {
	adapter   jsonx.Adapter
	refPrefix string
}

// NewCreator returns a Creator writing references under refPrefix.
func NewCreator(adapter jsonx.Adapter, refPrefix string) *Creator {
	return &Creator{adapter: adapter, refPrefix: refPrefix}
}

// FromJSON derives a schema from a raw JSON example. id overrides the root
// definition name; pass "" for the anonymous fallback. Invalid JSON fails
// with *jsonx.ParseError.
func (c *Creator) FromJSON(raw string, id string) (Result, error) {
	node, err := c.adapter.Parse(raw)
	if err != nil {
		return Result{}, err
	}
	return c.FromNode(node, id)
}

// FromNode derives a schema from a parsed JSON node. Raw JSON carries no
// declared-nullability metadata, so every field is treated as non-nullable;
// a null-valued field fails with *IllegalSchemaError.
func (c *Creator) FromNode(node jsonx.Node, id string) (Result, error) {
	name := id
	if name == "" {
		name = anonymousID
	}
	root, err := c.nodeSchema(node, name, false)
	if err != nil {
		return Result{}, err
	}
	return result(root), nil
}

// FromValue derives a schema from a typed example value. The value's JSON
// projection is walked in parallel with the live reflect.Value, correlating
// object fields by serialized name, so each field's declared nullability
// (pointer- or interface-typed in Go) is captured at every depth. id
// overrides the root definition name; otherwise the value's type name is
// used.
func (c *Creator) FromValue(v any, id string) (Result, error) {
	if v == nil {
		return Result{}, &IllegalSchemaError{Reason: "cannot derive a schema from a nil value"}
	}
	rv := deref(reflect.ValueOf(v))
	if !rv.IsValid() {
		return Result{}, &IllegalSchemaError{Reason: "cannot derive a schema from a nil value"}
	}

	node, err := c.adapter.NodeFrom(v)
	if err != nil {
		return Result{}, err
	}

	name := id
	if name == "" {
		name = typeName(rv)
	}
	if name == "" {
		name = anonymousID
	}

	root, err := c.valueSchema(node, rv, name, false)
	if err != nil {
		return Result{}, err
	}
	return result(root), nil
}

func result(root Node) Result {
	return Result{Root: root.Render(), Definitions: root.Definitions()}
}

// nodeSchema walks a JSON node with no type information alongside it.
func (c *Creator) nodeSchema(node jsonx.Node, name string, nullable bool) (Node, error) {
	switch node.Type() {
	case jsonx.TypeString:
		return NewPrimitive(name, "string", nullable, node.Value()), nil
	case jsonx.TypeInteger:
		return NewPrimitive(name, "integer", nullable, node.Value()), nil
	case jsonx.TypeNumber:
		return NewPrimitive(name, "number", nullable, node.Value()), nil
	case jsonx.TypeBoolean:
		return NewPrimitive(name, "boolean", nullable, node.Value()), nil
	case jsonx.TypeArray:
		var elems []Node
		for _, e := range node.Elements() {
			if e.Type() == jsonx.TypeNull {
				continue
			}
			child, err := c.nodeSchema(e, name, false)
			if err != nil {
				return nil, err
			}
			elems = append(elems, child)
		}
		return NewArray(name, nullable, NewItems(elems)), nil
	case jsonx.TypeObject:
		var props []Property
		for _, f := range node.Fields() {
			child, err := c.nodeSchema(f.Node, f.Name, false)
			if err != nil {
				return nil, err
			}
			props = append(props, Property{Name: f.Name, Node: child})
		}
		obj := NewObject(name, nullable, props)
		return NewReference(name, c.refPrefix+name, obj), nil
	case jsonx.TypeNull:
		return nil, &IllegalSchemaError{Reason: fmt.Sprintf("value of %q is null: a null cannot be typed", name)}
	default:
		return nil, &IllegalSchemaError{Reason: fmt.Sprintf("value of %q has an unrecognised JSON type", name)}
	}
}

// valueSchema walks a JSON node in parallel with the live value it was
// serialized from.
func (c *Creator) valueSchema(node jsonx.Node, rv reflect.Value, name string, nullable bool) (Node, error) {
	rv = deref(rv)

	switch node.Type() {
	case jsonx.TypeString, jsonx.TypeInteger, jsonx.TypeNumber, jsonx.TypeBoolean,
		jsonx.TypeNull:
		return c.nodeSchema(node, name, nullable)

	case jsonx.TypeArray:
		if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return c.nodeSchema(node, name, nullable)
		}
		var elems []Node
		for i, e := range node.Elements() {
			if e.Type() == jsonx.TypeNull {
				continue
			}
			var ev reflect.Value
			if i < rv.Len() {
				ev = deref(rv.Index(i))
			}
			child, err := c.valueSchema(e, ev, childName(ev, name), false)
			if err != nil {
				return nil, err
			}
			elems = append(elems, child)
		}
		return NewArray(name, nullable, NewItems(elems)), nil

	case jsonx.TypeObject:
		switch {
		case rv.IsValid() && rv.Kind() == reflect.Struct:
			return c.structSchema(node, rv, name, nullable)
		case rv.IsValid() && rv.Kind() == reflect.Map:
			return c.mapSchema(node, rv, name, nullable)
		default:
			return c.nodeSchema(node, name, nullable)
		}

	default:
		return nil, &IllegalSchemaError{Reason: fmt.Sprintf("value of %q has an unrecognised JSON type", name)}
	}
}

func (c *Creator) structSchema(node jsonx.Node, rv reflect.Value, name string, nullable bool) (Node, error) {
	fields := structFields(rv.Type())

	var props []Property
	for _, f := range node.Fields() {
		info, ok := fields[f.Name]
		var child Node
		var err error
		if !ok {
			// No declared counterpart (e.g. a custom marshaler); walk the
			// projection generically.
			child, err = c.nodeSchema(f.Node, f.Name, false)
		} else {
			var fv reflect.Value
			fv, err = rv.FieldByIndexErr(info.index)
			if err != nil {
				child, err = c.nodeSchema(f.Node, f.Name, info.nullable)
			} else {
				fv = deref(fv)
				child, err = c.valueSchema(f.Node, fv, childName(fv, f.Name), info.nullable)
			}
		}
		if err != nil {
			return nil, err
		}
		props = append(props, Property{Name: f.Name, Node: child})
	}

	obj := NewObject(name, nullable, props)
	return NewReference(name, c.refPrefix+name, obj), nil
}

func (c *Creator) mapSchema(node jsonx.Node, rv reflect.Value, name string, nullable bool) (Node, error) {
	keyType := rv.Type().Key()

	var props []Property
	for _, f := range node.Fields() {
		var fv reflect.Value
		if keyType.Kind() == reflect.String {
			fv = deref(rv.MapIndex(reflect.ValueOf(f.Name).Convert(keyType)))
		}
		child, err := c.valueSchema(f.Node, fv, childName(fv, f.Name), false)
		if err != nil {
			return nil, err
		}
		props = append(props, Property{Name: f.Name, Node: child})
	}

	obj := NewObject(name, nullable, props)
	return NewReference(name, c.refPrefix+name, obj), nil
}

// fieldInfo correlates a serialized property name with its declared field.
type fieldInfo struct {
	index    []int
	nullable bool
}

// structFields maps serialized property names to declared fields, flattening
// embedded structs the way encoding/json does. Correlation is by name, never
// by position.
func structFields(t reflect.Type) map[string]fieldInfo {
	fields := make(map[string]fieldInfo)
	collectFields(t, nil, fields)
	return fields
}

func collectFields(t reflect.Type, prefix []int, fields map[string]fieldInfo) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		jsonName, skip := parseJSONTag(f.Tag.Get("json"), f.Name)
		if skip {
			continue
		}

		index := append(append([]int(nil), prefix...), i)

		if f.Anonymous && f.Tag.Get("json") == "" {
			embedded := f.Type
			for embedded.Kind() == reflect.Ptr {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				collectFields(embedded, index, fields)
				continue
			}
		}

		kind := f.Type.Kind()
		if _, exists := fields[jsonName]; !exists {
			fields[jsonName] = fieldInfo{
				index:    index,
				nullable: kind == reflect.Ptr || kind == reflect.Interface,
			}
		}
	}
}

// parseJSONTag returns the serialized name for a field and whether it is
// skipped entirely.
func parseJSONTag(tag, fieldName string) (jsonName string, skip bool) {
	if tag == "" {
		return fieldName, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return "", true
	}
	if parts[0] == "" {
		return fieldName, false
	}
	return parts[0], false
}

// deref unwraps pointers and interfaces; a nil along the way yields an
// invalid value.
func deref(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// typeName returns the canonical definition name for a value: its declared
// struct type's simple name, or "" when the value is anonymous.
func typeName(rv reflect.Value) string {
	if !rv.IsValid() {
		return ""
	}
	t := rv.Type()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct && t.Name() != "" && t.PkgPath() != "" {
		return sanitizeName(t.Name())
	}
	return ""
}

// childName names a nested schema: the value's declared type name when it has
// one, otherwise the enclosing field name.
func childName(rv reflect.Value, fallback string) string {
	if n := typeName(rv); n != "" {
		return n
	}
	return fallback
}

// sanitizeName flattens generic instantiation names (Container[pkg.T]) into
// identifier-safe definition keys.
func sanitizeName(name string) string {
	if !strings.Contains(name, "[") {
		return name
	}
	r := strings.NewReplacer(".", "_", "/", "_", "[", "_", "]", "", ",", "_", " ", "", "*", "Ptr")
	return r.Replace(name)
}
