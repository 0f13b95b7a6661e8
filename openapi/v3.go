package openapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/http4k/reekwest/contract"
)

// operationV3 renders one route as an OpenAPI 3 operation. Bodies are split
// out into requestBody grouped by media type; GET, DELETE, and HEAD
// operations never carry one.
func (a *Assembler) operationV3(route *contract.Route, defs *Definitions) (map[string]any, error) {
	params := make([]any, 0, len(route.Params))
	for _, p := range allParams(route) {
		entry := map[string]any{
			"in":       string(p.In),
			"name":     p.Name,
			"required": p.Required,
			"schema":   map[string]any{"type": string(p.Datatype)},
		}
		if p.Description != "" {
			entry["description"] = p.Description
		}
		params = append(params, entry)
	}

	op := map[string]any{
		"summary":     route.Summary,
		"description": route.Description,
		"tags":        a.tagNames(route),
		"operationId": operationID(route.Method, a.basePath+route.Path),
		"parameters":  params,
	}

	if bodyAllowed(route.Method) && len(route.Requests) > 0 {
		content := make(map[string]any)
		for _, body := range route.Requests {
			switch {
			case len(body.FormFields) > 0:
				content[body.ContentType] = map[string]any{"schema": formSchema(body.FormFields)}
			case isJSON(body.ContentType):
				res := a.deriveSchema(body.Example, body.Raw, body.DefinitionID)
				if err := defs.Add(res.Definitions...); err != nil {
					return nil, err
				}
				media := map[string]any{"schema": res.Root}
				if example := a.exampleValue(body.Example, body.Raw); example != nil {
					media["example"] = example
				}
				content[body.ContentType] = media
			default:
				content[body.ContentType] = map[string]any{"schema": map[string]any{"type": "string"}}
			}
		}
		op["requestBody"] = map[string]any{"content": content}
	}

	responses := make(map[string]any)
	for _, resp := range route.Responses {
		entry := map[string]any{"description": resp.Description}
		if isJSON(resp.ContentType) {
			res := a.deriveSchema(resp.Example, resp.Raw, resp.DefinitionID)
			if err := defs.Add(res.Definitions...); err != nil {
				return nil, err
			}
			media := map[string]any{"schema": res.Root}
			if example := a.exampleValue(resp.Example, resp.Raw); example != nil {
				media["example"] = example
			}
			entry["content"] = map[string]any{resp.ContentType: media}
		}
		responses[strconv.Itoa(resp.Status)] = entry
	}
	if len(responses) == 0 {
		responses["200"] = map[string]any{"description": "OK"}
	}
	op["responses"] = responses

	if s := a.routeSecurity(route); s != nil {
		op["security"] = securityRequirement(s)
	}
	return op, nil
}

// exampleValue normalizes a declared example for embedding in a media-type
// object: the typed value as-is, or a raw payload re-parsed into plain Go
// values. Unparseable raw payloads are omitted.
func (a *Assembler) exampleValue(example any, raw string) any {
	if example != nil {
		return example
	}
	if raw == "" {
		return nil
	}
	var v any
	if err := a.adapter.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return v
}

// bodyAllowed reports whether an HTTP method may carry a request body in the
// v3 shape.
func bodyAllowed(method string) bool {
	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		return false
	}
	return true
}

// formSchema hand-builds an object schema from declared form fields.
func formSchema(fields []contract.Parameter) map[string]any {
	props := make(map[string]any, len(fields))
	var required []string
	for _, f := range fields {
		props[f.Name] = map[string]any{"type": string(f.Datatype)}
		if f.Required {
			required = append(required, f.Name)
		}
	}
	sort.Strings(required)

	m := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		m["required"] = required
	}
	return m
}
