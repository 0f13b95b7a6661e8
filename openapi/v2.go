package openapi

import (
	"sort"
	"strconv"

	"github.com/http4k/reekwest/contract"
)

// operationV2 renders one route as an OpenAPI 2 operation.
func (a *Assembler) operationV2(route *contract.Route, defs *Definitions) (map[string]any, error) {
	params := make([]any, 0, len(route.Params))
	for _, p := range allParams(route) {
		entry := map[string]any{
			"in":       string(p.In),
			"name":     p.Name,
			"required": p.Required,
			"type":     string(p.Datatype),
		}
		if p.Description != "" {
			entry["description"] = p.Description
		}
		params = append(params, entry)
	}

	var consumes []string
	for _, body := range route.Requests {
		if body.ContentType != "" {
			consumes = append(consumes, body.ContentType)
		}
		switch {
		case len(body.FormFields) > 0:
			for _, f := range body.FormFields {
				params = append(params, map[string]any{
					"in":       "formData",
					"name":     f.Name,
					"required": f.Required,
					"type":     string(f.Datatype),
				})
			}
		case isJSON(body.ContentType):
			res := a.deriveSchema(body.Example, body.Raw, body.DefinitionID)
			if err := defs.Add(res.Definitions...); err != nil {
				return nil, err
			}
			params = append(params, map[string]any{
				"in":       "body",
				"name":     "body",
				"required": true,
				"schema":   res.Root,
			})
		default:
			params = append(params, map[string]any{
				"in":       "body",
				"name":     "body",
				"required": true,
				"schema":   map[string]any{"type": "string"},
			})
		}
	}

	responses := make(map[string]any)
	var produces []string
	for _, resp := range route.Responses {
		if resp.ContentType != "" {
			produces = append(produces, resp.ContentType)
		}
		entry := map[string]any{"description": resp.Description}
		if isJSON(resp.ContentType) {
			res := a.deriveSchema(resp.Example, resp.Raw, resp.DefinitionID)
			if err := defs.Add(res.Definitions...); err != nil {
				return nil, err
			}
			entry["schema"] = res.Root
		}
		responses[strconv.Itoa(resp.Status)] = entry
	}
	if len(responses) == 0 {
		responses["200"] = map[string]any{"description": "OK"}
	}

	op := map[string]any{
		"summary":     route.Summary,
		"description": route.Description,
		"tags":        a.tagNames(route),
		"operationId": operationID(route.Method, a.basePath+route.Path),
		"parameters":  params,
		"responses":   responses,
	}
	if len(produces) > 0 {
		op["produces"] = sortedUnique(produces)
	}
	if len(consumes) > 0 {
		op["consumes"] = sortedUnique(consumes)
	}
	if s := a.routeSecurity(route); s != nil {
		op["security"] = securityRequirement(s)
	}
	return op, nil
}

func sortedUnique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
