package contract

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Security is a named authentication scheme attached to a route or to the
// whole document. Check gates requests at serve time; SchemeV2/SchemeV3
// render the scheme's definition for the two document shapes.
type Security interface {
	// Name is the scheme's key in the document's security-scheme section.
	Name() string

	// Check reports whether the request satisfies the scheme.
	Check(r *http.Request) bool

	// SchemeV2 renders the OpenAPI v2 securityDefinitions entry.
	SchemeV2() map[string]any

	// SchemeV3 renders the OpenAPI v3 securitySchemes entry.
	SchemeV3() map[string]any
}

// ApiKey authenticates by a key carried in a query parameter, header, or
// cookie.
type ApiKey struct {
	// Param locates the key in the request.
	Param Parameter

	// Validate accepts or rejects a presented key. When nil, any non-empty
	// key passes.
	Validate func(key string) bool
}

// NewApiKey returns an api_key scheme reading the given parameter.
func NewApiKey(param Parameter, validate func(string) bool) *ApiKey {
	return &ApiKey{Param: param, Validate: validate}
}

func (a *ApiKey) Name() string { return "api_key" }

func (a *ApiKey) Check(r *http.Request) bool {
	var key string
	switch a.Param.In {
	case InQuery:
		key = r.URL.Query().Get(a.Param.Name)
	case InHeader:
		key = r.Header.Get(a.Param.Name)
	case InCookie:
		if c, err := r.Cookie(a.Param.Name); err == nil {
			key = c.Value
		}
	}
	if key == "" {
		return false
	}
	if a.Validate == nil {
		return true
	}
	return a.Validate(key)
}

func (a *ApiKey) SchemeV2() map[string]any {
	return map[string]any{
		"type": "apiKey",
		"in":   string(a.Param.In),
		"name": a.Param.Name,
	}
}

func (a *ApiKey) SchemeV3() map[string]any {
	return map[string]any{
		"type": "apiKey",
		"in":   string(a.Param.In),
		"name": a.Param.Name,
	}
}

// BasicAuth authenticates with HTTP Basic credentials.
type BasicAuth struct {
	Realm    string
	User     string
	Password string
}

// NewBasicAuth returns a basicAuth scheme accepting exactly one credential
// pair.
func NewBasicAuth(realm, user, password string) *BasicAuth {
	return &BasicAuth{Realm: realm, User: user, Password: password}
}

func (b *BasicAuth) Name() string { return "basicAuth" }

func (b *BasicAuth) Check(r *http.Request) bool {
	user, password, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(b.User)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(b.Password)) == 1
	return userOK && passOK
}

func (b *BasicAuth) SchemeV2() map[string]any {
	return map[string]any{"type": "basic"}
}

func (b *BasicAuth) SchemeV3() map[string]any {
	return map[string]any{"type": "http", "scheme": "basic"}
}

// BearerAuth authenticates with a bearer token in the Authorization header.
type BearerAuth struct {
	// Validate accepts or rejects a presented token. When nil, any non-empty
	// token passes.
	Validate func(token string) bool
}

// NewBearerAuth returns a bearerAuth scheme.
func NewBearerAuth(validate func(string) bool) *BearerAuth {
	return &BearerAuth{Validate: validate}
}

func (b *BearerAuth) Name() string { return "bearerAuth" }

func (b *BearerAuth) Check(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return false
	}
	if b.Validate == nil {
		return true
	}
	return b.Validate(token)
}

func (b *BearerAuth) SchemeV2() map[string]any {
	return map[string]any{
		"type": "apiKey",
		"in":   "header",
		"name": "Authorization",
	}
}

func (b *BearerAuth) SchemeV3() map[string]any {
	return map[string]any{"type": "http", "scheme": "bearer"}
}
