// Package openapi assembles OpenAPI v2 and v3 documents from contract route
// descriptions. Schema derivation is delegated to openapi/schema; this
// package owns grouping, ordering, definition merging, and the two envelope
// shapes.
package openapi

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/http4k/reekwest/contract"
	"github.com/http4k/reekwest/jsonx"
	"github.com/http4k/reekwest/openapi/schema"
)

// Version selects the document shape.
type Version int

const (
	V2 Version = iota
	V3
)

// ApiInfo is the document's info block.
type ApiInfo struct {
	Title       string
	Version     string
	Description string
}

// Assembler turns a set of contract routes into one document tree. It holds
// no mutable state across calls; Document recomputes the whole tree each
// time.
type Assembler struct {
	info     ApiInfo
	version  Version
	adapter  jsonx.Adapter
	creator  *schema.Creator
	logger   *slog.Logger
	basePath string
	security contract.Security
}

// NewAssembler returns an assembler for the given document version.
func NewAssembler(info ApiInfo, version Version, adapter jsonx.Adapter) *Assembler {
	refPrefix := "#/definitions/"
	if version == V3 {
		refPrefix = "#/components/schemas/"
	}
	return &Assembler{
		info:    info,
		version: version,
		adapter: adapter,
		creator: schema.NewCreator(adapter, refPrefix),
	}
}

// WithDefaultSecurity sets the document-wide security requirement applied to
// operations that declare none of their own.
func (a *Assembler) WithDefaultSecurity(s contract.Security) *Assembler {
	a.security = s
	return a
}

// WithBasePath sets the mount path used to derive default tags.
func (a *Assembler) WithBasePath(p string) *Assembler {
	a.basePath = p
	return a
}

// WithLogger sets the logger used to report degraded schemas.
func (a *Assembler) WithLogger(logger *slog.Logger) *Assembler {
	a.logger = logger
	return a
}

func (a *Assembler) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}

// Document renders the full document tree for the given routes. Paths are
// keyed by the mount path plus the route's path template, so advertised
// paths are the ones actually served; methods are keyed by lower-cased
// method name. Both marshal sorted, so output is stable regardless of
// registration order. The only error condition is a definitions conflict:
// one name claimed by two different shapes.
func (a *Assembler) Document(routes []*contract.Route) (map[string]any, error) {
	defs := NewDefinitions()
	paths := make(map[string]any)

	for _, route := range routes {
		op, err := a.operation(route, defs)
		if err != nil {
			return nil, err
		}

		fullPath := a.basePath + route.Path
		methods, ok := paths[fullPath].(map[string]any)
		if !ok {
			methods = make(map[string]any)
			paths[fullPath] = methods
		}
		methods[strings.ToLower(route.Method)] = op
	}

	doc := a.envelope(paths, a.tags(routes), a.securitySchemes(routes), defs)
	return doc, nil
}

// operation renders one route, merging its schema definitions into defs.
func (a *Assembler) operation(route *contract.Route, defs *Definitions) (map[string]any, error) {
	if a.version == V3 {
		return a.operationV3(route, defs)
	}
	return a.operationV2(route, defs)
}

// deriveSchema derives a schema from a declared example, degrading to an
// empty placeholder when the example cannot be typed. One bad example must
// not break the whole document.
func (a *Assembler) deriveSchema(example any, raw string, id string) schema.Result {
	var res schema.Result
	var err error
	switch {
	case example != nil:
		res, err = a.creator.FromValue(example, id)
	case raw != "":
		res, err = a.creator.FromJSON(raw, id)
	default:
		return schema.Result{Root: map[string]any{}}
	}
	if err != nil {
		var illegal *schema.IllegalSchemaError
		var parse *jsonx.ParseError
		if !errors.As(err, &illegal) && !errors.As(err, &parse) {
			a.log().Warn("unexpected schema derivation failure", slog.Any("error", err))
		} else {
			a.log().Warn("example cannot be typed; substituting empty schema",
				slog.String("definition", id),
				slog.Any("error", err))
		}
		return schema.Result{Root: map[string]any{}}
	}
	return res
}

// allParams returns the route's declared parameters plus implicit string
// path parameters for template variables it never declared.
func allParams(route *contract.Route) []contract.Parameter {
	declared := make(map[string]bool, len(route.Params))
	for _, p := range route.Params {
		if p.In == contract.InPath {
			declared[p.Name] = true
		}
	}

	params := append([]contract.Parameter(nil), route.Params...)
	for _, v := range route.TemplateVars() {
		if !declared[v] {
			params = append(params, contract.PathParam(v, contract.TypeString))
		}
	}
	return params
}

// routeSecurity resolves a route's effective scheme: its own, or the
// document default.
func (a *Assembler) routeSecurity(route *contract.Route) contract.Security {
	if route.Security != nil {
		return route.Security
	}
	return a.security
}

// tags returns the union of all routes' tags sorted by name. A route with no
// explicit tag is tagged with its mount path segment.
func (a *Assembler) tags(routes []*contract.Route) []contract.Tag {
	byName := make(map[string]contract.Tag)
	for _, route := range routes {
		for _, t := range a.routeTags(route) {
			if _, ok := byName[t.Name]; !ok {
				byName[t.Name] = t
			}
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	tags := make([]contract.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, byName[name])
	}
	return tags
}

func (a *Assembler) routeTags(route *contract.Route) []contract.Tag {
	if len(route.Tags) > 0 {
		return route.Tags
	}
	return []contract.Tag{{Name: a.defaultTag(route)}}
}

func (a *Assembler) defaultTag(route *contract.Route) string {
	full := a.basePath + route.Path
	for _, seg := range strings.Split(full, "/") {
		if seg != "" && !strings.HasPrefix(seg, "{") {
			return seg
		}
	}
	return "default"
}

func (a *Assembler) tagNames(route *contract.Route) []string {
	tags := a.routeTags(route)
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	sort.Strings(names)
	return names
}

// securitySchemes unions the distinct schemes of all routes plus the
// document default, keyed by scheme name. Duplicates by name collapse.
func (a *Assembler) securitySchemes(routes []*contract.Route) map[string]contract.Security {
	schemes := make(map[string]contract.Security)
	if a.security != nil {
		schemes[a.security.Name()] = a.security
	}
	for _, route := range routes {
		if route.Security != nil {
			schemes[route.Security.Name()] = route.Security
		}
	}
	return schemes
}

func securityRequirement(s contract.Security) []any {
	return []any{map[string]any{s.Name(): []any{}}}
}

// envelope wraps the assembled parts in the version-specific document shell.
func (a *Assembler) envelope(paths map[string]any, tags []contract.Tag, schemes map[string]contract.Security, defs *Definitions) map[string]any {
	renderedTags := make([]any, len(tags))
	for i, t := range tags {
		entry := map[string]any{"name": t.Name}
		if t.Description != "" {
			entry["description"] = t.Description
		}
		renderedTags[i] = entry
	}

	info := map[string]any{
		"title":   a.info.Title,
		"version": a.info.Version,
	}
	if a.info.Description != "" {
		info["description"] = a.info.Description
	}

	if a.version == V3 {
		renderedSchemes := make(map[string]any, len(schemes))
		for name, s := range schemes {
			renderedSchemes[name] = s.SchemeV3()
		}
		return map[string]any{
			"openapi": "3.0.0",
			"info":    info,
			"tags":    renderedTags,
			"paths":   paths,
			"components": map[string]any{
				"schemas":         defs.Render(),
				"securitySchemes": renderedSchemes,
			},
		}
	}

	renderedSchemes := make(map[string]any, len(schemes))
	for name, s := range schemes {
		renderedSchemes[name] = s.SchemeV2()
	}
	return map[string]any{
		"swagger":             "2.0",
		"info":                info,
		"basePath":            "/",
		"tags":                renderedTags,
		"paths":               paths,
		"securityDefinitions": renderedSchemes,
		"definitions":         defs.Render(),
	}
}

// operationID builds a deterministic identifier from the method and path
// template, e.g. GET /basepath/echo/{message} -> getBasepathEchoMessage.
func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		clean := identifier(seg)
		if clean == "" {
			continue
		}
		b.WriteString(strings.ToUpper(clean[:1]))
		b.WriteString(clean[1:])
	}
	return b.String()
}

func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isJSON reports whether a content type carries JSON.
func isJSON(contentType string) bool {
	return strings.Contains(contentType, "json")
}
