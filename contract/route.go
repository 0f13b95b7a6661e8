// Package contract describes HTTP routes richly enough to serve them and to
// derive an API document from them: declared parameters, request and response
// bodies with example payloads, tags, and security requirements.
package contract

import (
	"net/http"
	"strings"
)

// Location is where a parameter travels in a request.
type Location string

const (
	InQuery  Location = "query"
	InHeader Location = "header"
	InPath   Location = "path"
	InCookie Location = "cookie"
)

// Datatype is the declared primitive type of a parameter or form field.
type Datatype string

const (
	TypeString  Datatype = "string"
	TypeInteger Datatype = "integer"
	TypeNumber  Datatype = "number"
	TypeBoolean Datatype = "boolean"
)

// Parameter is one declared request parameter.
type Parameter struct {
	Name        string
	In          Location
	Datatype    Datatype
	Required    bool
	Description string
}

// Query declares a query parameter.
func Query(name string, datatype Datatype, required bool) Parameter {
	return Parameter{Name: name, In: InQuery, Datatype: datatype, Required: required}
}

// Header declares a header parameter.
func Header(name string, datatype Datatype, required bool) Parameter {
	return Parameter{Name: name, In: InHeader, Datatype: datatype, Required: required}
}

// PathParam declares a path parameter. Path parameters are always required.
func PathParam(name string, datatype Datatype) Parameter {
	return Parameter{Name: name, In: InPath, Datatype: datatype, Required: true}
}

// Cookie declares a cookie parameter.
func Cookie(name string, datatype Datatype, required bool) Parameter {
	return Parameter{Name: name, In: InCookie, Datatype: datatype, Required: required}
}

// WithDescription returns a copy of the parameter with a description.
func (p Parameter) WithDescription(d string) Parameter {
	p.Description = d
	return p
}

// Body is one declared request body. Exactly one of Example, Raw, or
// FormFields is normally set; Example takes precedence over Raw when both
// are present.
type Body struct {
	// ContentType is the declared media type, e.g. "application/json".
	ContentType string

	// Example is a typed example value; its declared structure drives schema
	// derivation.
	Example any

	// Raw is a raw example payload used when no typed example exists.
	Raw string

	// FormFields declares the fields of a form-encoded body.
	FormFields []Parameter

	// DefinitionID overrides the derived schema's definition name.
	DefinitionID string
}

// JSONBody declares a JSON request body with a typed example.
func JSONBody(example any) Body {
	return Body{ContentType: "application/json", Example: example}
}

// RawJSONBody declares a JSON request body from a raw example string.
func RawJSONBody(raw string) Body {
	return Body{ContentType: "application/json", Raw: raw}
}

// FormBody declares a form-encoded request body from its declared fields.
func FormBody(fields ...Parameter) Body {
	return Body{ContentType: "application/x-www-form-urlencoded", FormFields: fields}
}

// Response is one declared response.
type Response struct {
	Status      int
	ContentType string
	Description string

	// Example is a typed example value for schema derivation.
	Example any

	// Raw is a raw example payload used when no typed example exists.
	Raw string

	// DefinitionID overrides the derived schema's definition name.
	DefinitionID string
}

// JSONResponse declares a JSON response with a typed example.
func JSONResponse(status int, description string, example any) Response {
	return Response{Status: status, ContentType: "application/json", Description: description, Example: example}
}

// RawJSONResponse declares a JSON response from a raw example string.
func RawJSONResponse(status int, description string, raw string) Response {
	return Response{Status: status, ContentType: "application/json", Description: description, Raw: raw}
}

// Tag groups operations in the generated document.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Route is one contract route: an HTTP handler annotated with everything the
// document assembler needs.
type Route struct {
	Method      string
	Path        string
	Summary     string
	Description string
	Tags        []Tag
	Params      []Parameter
	Requests    []Body
	Responses   []Response

	// Security overrides the document-wide default when non-nil.
	Security Security

	Handler http.Handler
}

// NewRoute returns a route for the given method and path template. Template
// segments of the form {name} capture path variables.
func NewRoute(method, path string, handler http.Handler) *Route {
	return &Route{
		Method:  strings.ToUpper(method),
		Path:    path,
		Handler: handler,
	}
}

// WithSummary sets the operation summary.
func (r *Route) WithSummary(s string) *Route {
	r.Summary = s
	return r
}

// WithDescription sets the operation description.
func (r *Route) WithDescription(d string) *Route {
	r.Description = d
	return r
}

// WithTags adds tags to the route.
func (r *Route) WithTags(tags ...Tag) *Route {
	r.Tags = append(r.Tags, tags...)
	return r
}

// WithParams declares request parameters.
func (r *Route) WithParams(params ...Parameter) *Route {
	r.Params = append(r.Params, params...)
	return r
}

// WithRequest declares a request body.
func (r *Route) WithRequest(b Body) *Route {
	r.Requests = append(r.Requests, b)
	return r
}

// WithResponse declares a response.
func (r *Route) WithResponse(resp Response) *Route {
	r.Responses = append(r.Responses, resp)
	return r
}

// WithSecurity sets the route's security requirement.
func (r *Route) WithSecurity(s Security) *Route {
	r.Security = s
	return r
}

// TemplateVars returns the {name} variable names of the path template, in
// order of appearance.
func (r *Route) TemplateVars() []string {
	var vars []string
	for _, seg := range strings.Split(r.Path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2 {
			vars = append(vars, seg[1:len(seg)-1])
		}
	}
	return vars
}
