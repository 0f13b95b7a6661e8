package openapi

import (
	"net/http"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/http4k/reekwest/contract"
	"github.com/http4k/reekwest/jsonx"
)

type echoMessage struct {
	Message string `json:"message"`
}

var noopHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

func newAssembler(v Version) *Assembler {
	return NewAssembler(ApiInfo{Title: "test api", Version: "1.0"}, v, jsonx.NewGoJSON())
}

func TestDocument_V3Envelope(t *testing.T) {
	routes := []*contract.Route{
		contract.NewRoute("GET", "/echo/{message}", noopHandler).
			WithSummary("echoes a message"),
	}

	doc, err := newAssembler(V3).Document(routes)
	require.NoError(t, err)

	assert.Equal(t, "3.0.0", doc["openapi"])
	info := doc["info"].(map[string]any)
	assert.Equal(t, "test api", info["title"])
	assert.Equal(t, "1.0", info["version"])

	paths := doc["paths"].(map[string]any)
	require.Contains(t, paths, "/echo/{message}")
	methods := paths["/echo/{message}"].(map[string]any)
	require.Contains(t, methods, "get")

	op := methods["get"].(map[string]any)
	assert.Equal(t, "echoes a message", op["summary"])
	assert.Equal(t, "getEchoMessage", op["operationId"])

	components := doc["components"].(map[string]any)
	assert.Contains(t, components, "schemas")
	assert.Contains(t, components, "securitySchemes")
}

func TestDocument_V2Envelope(t *testing.T) {
	routes := []*contract.Route{
		contract.NewRoute("POST", "/things", noopHandler).
			WithRequest(contract.JSONBody(echoMessage{Message: "hi"})).
			WithResponse(contract.JSONResponse(200, "created", echoMessage{Message: "ok"})),
	}

	doc, err := newAssembler(V2).Document(routes)
	require.NoError(t, err)

	assert.Equal(t, "2.0", doc["swagger"])
	assert.Equal(t, "/", doc["basePath"])

	defs := doc["definitions"].(map[string]any)
	require.Contains(t, defs, "echoMessage")

	paths := doc["paths"].(map[string]any)
	op := paths["/things"].(map[string]any)["post"].(map[string]any)

	params := op["parameters"].([]any)
	require.Len(t, params, 1)
	body := params[0].(map[string]any)
	assert.Equal(t, "body", body["in"])
	assert.Equal(t, map[string]any{"$ref": "#/definitions/echoMessage"}, body["schema"])

	assert.Equal(t, []string{"application/json"}, op["consumes"])
	assert.Equal(t, []string{"application/json"}, op["produces"])
}

func TestDocument_StableAcrossRegistrationOrder(t *testing.T) {
	routeA := func() *contract.Route {
		return contract.NewRoute("GET", "/alpha", noopHandler).
			WithResponse(contract.JSONResponse(200, "ok", echoMessage{Message: "a"}))
	}
	// Both routes share one example value so the retained definition is the
	// same whichever route contributes it first.
	routeB := func() *contract.Route {
		return contract.NewRoute("POST", "/beta", noopHandler).
			WithRequest(contract.JSONBody(echoMessage{Message: "a"}))
	}

	docAB, err := newAssembler(V3).Document([]*contract.Route{routeA(), routeB()})
	require.NoError(t, err)
	docBA, err := newAssembler(V3).Document([]*contract.Route{routeB(), routeA()})
	require.NoError(t, err)

	bytesAB, err := json.Marshal(docAB)
	require.NoError(t, err)
	bytesBA, err := json.Marshal(docBA)
	require.NoError(t, err)

	assert.Equal(t, string(bytesAB), string(bytesBA))
}

func TestDocument_PathsIncludeBasePath(t *testing.T) {
	routes := []*contract.Route{
		contract.NewRoute("GET", "/echo/{message}", noopHandler),
	}

	doc, err := newAssembler(V3).WithBasePath("/basepath").Document(routes)
	require.NoError(t, err)

	paths := doc["paths"].(map[string]any)
	require.Contains(t, paths, "/basepath/echo/{message}",
		"advertised paths must carry the mount path the routes are served under")
	assert.NotContains(t, paths, "/echo/{message}")

	op := paths["/basepath/echo/{message}"].(map[string]any)["get"].(map[string]any)
	assert.Equal(t, "getBasepathEchoMessage", op["operationId"])
}

func TestDocument_MultipleMethodsOnePath(t *testing.T) {
	routes := []*contract.Route{
		contract.NewRoute("GET", "/widget", noopHandler),
		contract.NewRoute("POST", "/widget", noopHandler),
	}

	doc, err := newAssembler(V3).Document(routes)
	require.NoError(t, err)

	methods := doc["paths"].(map[string]any)["/widget"].(map[string]any)
	assert.Contains(t, methods, "get")
	assert.Contains(t, methods, "post")
}

func TestDocument_DefinitionsConflict(t *testing.T) {
	type other struct {
		Different int `json:"different"`
	}

	routes := []*contract.Route{
		contract.NewRoute("POST", "/a", noopHandler).
			WithRequest(contract.Body{ContentType: "application/json", Example: echoMessage{Message: "x"}, DefinitionID: "Shared"}),
		contract.NewRoute("POST", "/b", noopHandler).
			WithRequest(contract.Body{ContentType: "application/json", Example: other{Different: 1}, DefinitionID: "Shared"}),
	}

	_, err := newAssembler(V3).Document(routes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Shared")
}

func TestDocument_ImplicitPathParams(t *testing.T) {
	routes := []*contract.Route{
		contract.NewRoute("GET", "/echo/{message}", noopHandler),
	}

	doc, err := newAssembler(V3).Document(routes)
	require.NoError(t, err)

	op := doc["paths"].(map[string]any)["/echo/{message}"].(map[string]any)["get"].(map[string]any)
	params := op["parameters"].([]any)
	require.Len(t, params, 1)

	p := params[0].(map[string]any)
	assert.Equal(t, "path", p["in"])
	assert.Equal(t, "message", p["name"])
	assert.Equal(t, true, p["required"])
	assert.Equal(t, map[string]any{"type": "string"}, p["schema"])
}

func TestDocument_NoRequestBodyForGET(t *testing.T) {
	routes := []*contract.Route{
		contract.NewRoute("GET", "/search", noopHandler).
			WithRequest(contract.JSONBody(echoMessage{Message: "x"})),
	}

	doc, err := newAssembler(V3).Document(routes)
	require.NoError(t, err)

	op := doc["paths"].(map[string]any)["/search"].(map[string]any)["get"].(map[string]any)
	assert.NotContains(t, op, "requestBody")
}

func TestDocument_FormBody(t *testing.T) {
	form := contract.FormBody(
		contract.Query("name", contract.TypeString, true),
		contract.Query("age", contract.TypeInteger, false),
	)

	t.Run("v2 renders formData params", func(t *testing.T) {
		routes := []*contract.Route{
			contract.NewRoute("POST", "/signup", noopHandler).WithRequest(form),
		}
		doc, err := newAssembler(V2).Document(routes)
		require.NoError(t, err)

		op := doc["paths"].(map[string]any)["/signup"].(map[string]any)["post"].(map[string]any)
		params := op["parameters"].([]any)
		require.Len(t, params, 2)
		first := params[0].(map[string]any)
		assert.Equal(t, "formData", first["in"])
	})

	t.Run("v3 renders an object schema", func(t *testing.T) {
		routes := []*contract.Route{
			contract.NewRoute("POST", "/signup", noopHandler).WithRequest(form),
		}
		doc, err := newAssembler(V3).Document(routes)
		require.NoError(t, err)

		op := doc["paths"].(map[string]any)["/signup"].(map[string]any)["post"].(map[string]any)
		body := op["requestBody"].(map[string]any)
		content := body["content"].(map[string]any)
		media := content["application/x-www-form-urlencoded"].(map[string]any)
		schema := media["schema"].(map[string]any)
		assert.Equal(t, "object", schema["type"])
		assert.Equal(t, []string{"name"}, schema["required"])
	})
}

func TestDocument_BadExampleDegradesToEmptySchema(t *testing.T) {
	routes := []*contract.Route{
		contract.NewRoute("POST", "/broken", noopHandler).
			WithRequest(contract.RawJSONBody(`{not valid json`)),
	}

	doc, err := newAssembler(V3).Document(routes)
	require.NoError(t, err)

	op := doc["paths"].(map[string]any)["/broken"].(map[string]any)["post"].(map[string]any)
	body := op["requestBody"].(map[string]any)
	media := body["content"].(map[string]any)["application/json"].(map[string]any)
	assert.Equal(t, map[string]any{}, media["schema"])
}

func TestDocument_DefaultTags(t *testing.T) {
	routes := []*contract.Route{
		contract.NewRoute("GET", "/echo/{message}", noopHandler),
		contract.NewRoute("GET", "/users", noopHandler).
			WithTags(contract.Tag{Name: "accounts", Description: "account ops"}),
	}

	doc, err := newAssembler(V3).WithBasePath("/api").Document(routes)
	require.NoError(t, err)

	tags := doc["tags"].([]any)
	require.Len(t, tags, 2)
	first := tags[0].(map[string]any)
	second := tags[1].(map[string]any)
	assert.Equal(t, "accounts", first["name"])
	assert.Equal(t, "account ops", first["description"])
	assert.Equal(t, "api", second["name"])
}

func TestDocument_Security(t *testing.T) {
	apiKey := contract.NewApiKey(
		contract.Query("the_api_key", contract.TypeString, true),
		func(v string) bool { return v == "secret" },
	)

	routes := []*contract.Route{
		contract.NewRoute("GET", "/secured", noopHandler).WithSecurity(apiKey),
		contract.NewRoute("GET", "/open", noopHandler),
	}

	doc, err := newAssembler(V3).Document(routes)
	require.NoError(t, err)

	schemes := doc["components"].(map[string]any)["securitySchemes"].(map[string]any)
	require.Contains(t, schemes, "api_key")
	scheme := schemes["api_key"].(map[string]any)
	assert.Equal(t, "apiKey", scheme["type"])
	assert.Equal(t, "query", scheme["in"])
	assert.Equal(t, "the_api_key", scheme["name"])

	secured := doc["paths"].(map[string]any)["/secured"].(map[string]any)["get"].(map[string]any)
	require.Contains(t, secured, "security")
	open := doc["paths"].(map[string]any)["/open"].(map[string]any)["get"].(map[string]any)
	assert.NotContains(t, open, "security")
}

func TestOperationID(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"GET", "/basepath/echo/{message}", "getBasepathEchoMessage"},
		{"POST", "/", "post"},
		{"DELETE", "/users/{id}", "deleteUsersId"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, operationID(tt.method, tt.path))
	}
}

func TestRenderYAML(t *testing.T) {
	doc, err := newAssembler(V3).Document([]*contract.Route{
		contract.NewRoute("GET", "/ping", noopHandler),
	})
	require.NoError(t, err)

	data, err := RenderYAML(doc)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.Contains(text, "openapi: 3.0.0"), "yaml output missing version: %s", text)
	assert.True(t, strings.Contains(text, "/ping:"), "yaml output missing path: %s", text)
}
