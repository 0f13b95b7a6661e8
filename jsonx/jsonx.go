// Package jsonx defines the narrow JSON capability surface the schema and
// document machinery is built against. The schema creator never touches a
// concrete JSON library directly; it works through Adapter and Node, so any
// backend that can parse, classify, and enumerate JSON values can drive it.
package jsonx

// NodeType classifies a parsed JSON node.
type NodeType int

const (
	TypeUnknown NodeType = iota
	TypeString
	TypeInteger
	TypeNumber
	TypeBoolean
	TypeArray
	TypeObject
	TypeNull
)

// String returns the string representation of the node type.
func (t NodeType) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeInteger:
		return "Integer"
	case TypeNumber:
		return "Number"
	case TypeBoolean:
		return "Boolean"
	case TypeArray:
		return "Array"
	case TypeObject:
		return "Object"
	case TypeNull:
		return "Null"
	default:
		return "Unknown"
	}
}

// Field is one named member of an object node.
type Field struct {
	Name string
	Node Node
}

// Node is one parsed JSON value.
//
// Fields returns object members in the order they appear in the source
// document. For nodes produced from marshaled Go structs this is the struct's
// declared field order, which is what lets callers correlate a node tree with
// the value it was built from.
type Node interface {
	// Type classifies the node.
	Type() NodeType

	// Fields returns the ordered members of an object node, nil otherwise.
	Fields() []Field

	// Elements returns the ordered elements of an array node, nil otherwise.
	Elements() []Node

	// Value returns the underlying scalar: string, json.Number, bool, or nil.
	// Object and array nodes return nil.
	Value() any
}

// Adapter is the capability interface a JSON backend satisfies.
type Adapter interface {
	// Parse decodes text into a node tree, failing with *ParseError.
	Parse(text string) (Node, error)

	// NodeFrom serializes v and parses the result, yielding the node tree of
	// v's JSON projection.
	NodeFrom(v any) (Node, error)

	// Marshal serializes v to JSON text.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes JSON text into v.
	Unmarshal(data []byte, v any) error
}

// ParseError reports input that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "jsonx: invalid JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
