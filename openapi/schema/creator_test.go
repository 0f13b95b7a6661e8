package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/http4k/reekwest/jsonx"
)

func newCreator() *Creator {
	return NewCreator(jsonx.NewGoJSON(), "#/definitions/")
}

type ArbObject struct {
	AString string `json:"aString"`
}

type Mixed struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Ratio   float64 `json:"ratio"`
	Enabled bool    `json:"enabled"`
}

type WithOptional struct {
	Needed   string  `json:"needed"`
	Optional *string `json:"optional"`
}

type Nested struct {
	Child ArbObject `json:"child"`
}

func TestFromValue_SimpleStruct(t *testing.T) {
	res, err := newCreator().FromValue(ArbObject{AString: "hello"}, "")
	if err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}

	want := map[string]any{"$ref": "#/definitions/ArbObject"}
	if !reflect.DeepEqual(res.Root, want) {
		t.Errorf("Root = %v, want %v", res.Root, want)
	}

	if len(res.Definitions) != 1 {
		t.Fatalf("got %d definitions, want 1", len(res.Definitions))
	}
	def := res.Definitions[0]
	if def.Name != "ArbObject" {
		t.Errorf("definition name = %q, want ArbObject", def.Name)
	}

	wantSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"aString": map[string]any{"type": "string", "example": "hello"},
		},
		"required": []string{"aString"},
	}
	if !reflect.DeepEqual(def.Schema, wantSchema) {
		t.Errorf("definition schema = %v, want %v", def.Schema, wantSchema)
	}
}

func TestFromValue_PrimitiveTypes(t *testing.T) {
	res, err := newCreator().FromValue(Mixed{Name: "x", Count: 3, Ratio: 1.5, Enabled: true}, "")
	if err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}

	props := res.Definitions[0].Schema["properties"].(map[string]any)
	wantTypes := map[string]string{
		"name":    "string",
		"count":   "integer",
		"ratio":   "number",
		"enabled": "boolean",
	}
	for field, wantType := range wantTypes {
		prop, ok := props[field].(map[string]any)
		if !ok {
			t.Fatalf("missing property %q", field)
		}
		if prop["type"] != wantType {
			t.Errorf("property %q type = %v, want %v", field, prop["type"], wantType)
		}
	}
}

func TestFromValue_NullableFieldNotRequired(t *testing.T) {
	opt := "present"
	res, err := newCreator().FromValue(WithOptional{Needed: "yes", Optional: &opt}, "")
	if err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}

	required := res.Definitions[0].Schema["required"]
	want := []string{"needed"}
	if !reflect.DeepEqual(required, want) {
		t.Errorf("required = %v, want %v", required, want)
	}
}

func TestFromValue_NilPointerField(t *testing.T) {
	_, err := newCreator().FromValue(WithOptional{Needed: "yes"}, "")
	var illegal *IllegalSchemaError
	if !errors.As(err, &illegal) {
		t.Fatalf("error = %v, want *IllegalSchemaError", err)
	}
}

func TestFromValue_NestedStruct(t *testing.T) {
	res, err := newCreator().FromValue(Nested{Child: ArbObject{AString: "in"}}, "")
	if err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}

	if len(res.Definitions) != 2 {
		t.Fatalf("got %d definitions, want 2", len(res.Definitions))
	}
	if res.Definitions[0].Name != "Nested" || res.Definitions[1].Name != "ArbObject" {
		t.Errorf("definition names = [%s, %s], want [Nested, ArbObject]",
			res.Definitions[0].Name, res.Definitions[1].Name)
	}

	props := res.Definitions[0].Schema["properties"].(map[string]any)
	child := props["child"].(map[string]any)
	if child["$ref"] != "#/definitions/ArbObject" {
		t.Errorf("nested child = %v, want $ref to ArbObject", child)
	}
}

func TestFromValue_IDOverride(t *testing.T) {
	res, err := newCreator().FromValue(ArbObject{AString: "x"}, "Custom")
	if err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if res.Root["$ref"] != "#/definitions/Custom" {
		t.Errorf("Root = %v, want $ref to Custom", res.Root)
	}
	if res.Definitions[0].Name != "Custom" {
		t.Errorf("definition name = %q, want Custom", res.Definitions[0].Name)
	}
}

func TestFromValue_Map(t *testing.T) {
	res, err := newCreator().FromValue(map[string]any{"key": "value"}, "Dict")
	if err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}
	if res.Root["$ref"] != "#/definitions/Dict" {
		t.Errorf("Root = %v, want $ref to Dict", res.Root)
	}

	props := res.Definitions[0].Schema["properties"].(map[string]any)
	key := props["key"].(map[string]any)
	if key["type"] != "string" {
		t.Errorf("key type = %v, want string", key["type"])
	}
}

func TestFromValue_ArrayDedupe(t *testing.T) {
	type holder struct {
		Values []any `json:"values"`
	}

	res, err := newCreator().FromValue(holder{Values: []any{1, 2, "three"}}, "")
	if err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}

	props := res.Definitions[0].Schema["properties"].(map[string]any)
	values := props["values"].(map[string]any)
	items := values["items"].(map[string]any)
	oneOf, ok := items["oneOf"].([]any)
	if !ok {
		t.Fatalf("items = %v, want oneOf", items)
	}
	if len(oneOf) != 2 {
		t.Errorf("got %d distinct item shapes, want 2", len(oneOf))
	}
}

func TestFromValue_Nil(t *testing.T) {
	var illegal *IllegalSchemaError

	_, err := newCreator().FromValue(nil, "")
	if !errors.As(err, &illegal) {
		t.Errorf("FromValue(nil) error = %v, want *IllegalSchemaError", err)
	}

	var p *ArbObject
	_, err = newCreator().FromValue(p, "")
	if !errors.As(err, &illegal) {
		t.Errorf("FromValue(nil pointer) error = %v, want *IllegalSchemaError", err)
	}
}

func TestFromJSON_AnonymousObject(t *testing.T) {
	res, err := newCreator().FromJSON(`{"name":"bob","age":30}`, "")
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if res.Root["$ref"] != "#/definitions/object" {
		t.Errorf("Root = %v, want $ref to object", res.Root)
	}

	required := res.Definitions[0].Schema["required"]
	want := []string{"age", "name"}
	if !reflect.DeepEqual(required, want) {
		t.Errorf("required = %v, want %v", required, want)
	}
}

func TestFromJSON_NullValue(t *testing.T) {
	_, err := newCreator().FromJSON(`{"field":null}`, "")
	var illegal *IllegalSchemaError
	if !errors.As(err, &illegal) {
		t.Fatalf("error = %v, want *IllegalSchemaError", err)
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := newCreator().FromJSON(`{broken`, "")
	var parseErr *jsonx.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *jsonx.ParseError", err)
	}
}

func TestFromJSON_ArraySkipsNullElements(t *testing.T) {
	res, err := newCreator().FromJSON(`[1, null, 2]`, "")
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	items := res.Root["items"].(map[string]any)
	if items["type"] != "integer" {
		t.Errorf("items = %v, want single integer shape", items)
	}
}

func TestFromValue_EmbeddedStruct(t *testing.T) {
	type Base struct {
		ID string `json:"id"`
	}
	type Derived struct {
		Base
		Extra string `json:"extra"`
	}

	res, err := newCreator().FromValue(Derived{Base: Base{ID: "1"}, Extra: "e"}, "")
	if err != nil {
		t.Fatalf("FromValue failed: %v", err)
	}

	required := res.Definitions[0].Schema["required"]
	want := []string{"extra", "id"}
	if !reflect.DeepEqual(required, want) {
		t.Errorf("required = %v, want %v", required, want)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plain", "Plain"},
		{"Container[main.Inner]", "Container_main_Inner"},
		{"Pair[main.A,main.B]", "Pair_main_A_main_B"},
	}
	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
