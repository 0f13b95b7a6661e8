package jsonx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
)

// GoJSON is the goccy/go-json backed Adapter. Parsing streams tokens rather
// than decoding into a map so that object member order survives.
type GoJSON struct{}

// NewGoJSON returns the default adapter.
func NewGoJSON() *GoJSON {
	return &GoJSON{}
}

// Parse decodes text into a node tree. Trailing data after the first JSON
// value is an error.
func (g *GoJSON) Parse(text string) (Node, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	node, err := decodeNode(dec)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: errors.New("trailing data after JSON value")}
	}

	return node, nil
}

// NodeFrom serializes v and parses the result.
func (g *GoJSON) NodeFrom(v any) (Node, error) {
	data, err := g.Marshal(v)
	if err != nil {
		return nil, err
	}
	return g.Parse(string(data))
}

// Marshal serializes v to JSON text.
func (g *GoJSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON text into v.
func (g *GoJSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func decodeNode(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return nodeFromToken(dec, tok)
}

func nodeFromToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case string:
		return stringNode(t), nil
	case json.Number:
		return numberNode(t), nil
	case bool:
		return boolNode(t), nil
	case nil:
		return nullNode{}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (Node, error) {
	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		child, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: key, Node: child})
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return objectNode(fields), nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	var elems []Node
	for dec.More() {
		child, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}
		elems = append(elems, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arrayNode(elems), nil
}

type stringNode string

func (stringNode) Type() NodeType { return TypeString }
func (stringNode) Fields() []Field { return nil }
func (stringNode) Elements() []Node { return nil }
func (n stringNode) Value() any { return string(n) }

type numberNode json.Number

// Type distinguishes integers from floats by literal form: a mantissa dot or
// an exponent makes the value a Number.
func (n numberNode) Type() NodeType {
	if strings.ContainsAny(string(n), ".eE") {
		return TypeNumber
	}
	return TypeInteger
}

func (numberNode) Fields() []Field { return nil }
func (numberNode) Elements() []Node { return nil }
func (n numberNode) Value() any { return json.Number(n) }

type boolNode bool

func (boolNode) Type() NodeType { return TypeBoolean }
func (boolNode) Fields() []Field { return nil }
func (boolNode) Elements() []Node { return nil }
func (n boolNode) Value() any { return bool(n) }

type nullNode struct{}

func (nullNode) Type() NodeType { return TypeNull }
func (nullNode) Fields() []Field { return nil }
func (nullNode) Elements() []Node { return nil }
func (nullNode) Value() any { return nil }

type objectNode []Field

func (objectNode) Type() NodeType { return TypeObject }
func (n objectNode) Fields() []Field { return []Field(n) }
func (objectNode) Elements() []Node { return nil }
func (objectNode) Value() any { return nil }

type arrayNode []Node

func (arrayNode) Type() NodeType { return TypeArray }
func (arrayNode) Fields() []Field { return nil }
func (n arrayNode) Elements() []Node { return []Node(n) }
func (arrayNode) Value() any { return nil }
