// Package reekwest is an HTTP toolkit for contract routes: handlers annotated
// with declared parameters, bodies, and responses. The App serves the routes,
// validates declared parameters up front, enforces security schemes, and
// serves an OpenAPI description derived from the same route annotations.
package reekwest

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/http4k/reekwest/contract"
	"github.com/http4k/reekwest/jsonx"
	"github.com/http4k/reekwest/openapi"
)

// App is the central router for contract routes. It manages route
// registration, middleware, and the description endpoint.
// Use Handler() to get an http.Handler for use with http.ListenAndServe.
type App struct {
	mu              sync.RWMutex
	basePath        string
	routes          []*contract.Route
	descriptionPath string
	info            openapi.ApiInfo
	version         openapi.Version
	adapter         jsonx.Adapter
	security        contract.Security
	middlewares     []func(http.Handler) http.Handler
	logger          *slog.Logger
}

// defaultDescriptionPath is where the generated document is served, relative
// to the mount path.
const defaultDescriptionPath = "/openapi.json"

// NewApp returns an App mounted at basePath.
func NewApp(basePath string) *App {
	return &App{
		basePath:        strings.TrimRight(basePath, "/"),
		descriptionPath: defaultDescriptionPath,
		version:         openapi.V3,
		adapter:         jsonx.NewGoJSON(),
	}
}

// WithInfo sets the document's info block.
// It returns the app for chaining.
func (a *App) WithInfo(info openapi.ApiInfo) *App {
	a.info = info
	return a
}

// WithVersion selects the document shape served at the description path.
// Default is OpenAPI 3.
func (a *App) WithVersion(v openapi.Version) *App {
	a.version = v
	return a
}

// WithDescriptionPath sets where the generated document is served, relative
// to the mount path. Default is "/openapi.json".
func (a *App) WithDescriptionPath(p string) *App {
	a.descriptionPath = p
	return a
}

// WithDefaultSecurity sets the security requirement applied to every route
// that declares none of its own.
func (a *App) WithDefaultSecurity(s contract.Security) *App {
	a.security = s
	return a
}

// WithAdapter sets the JSON backend. Default is the goccy-backed adapter.
func (a *App) WithAdapter(adapter jsonx.Adapter) *App {
	a.adapter = adapter
	return a
}

// WithMiddleware adds an HTTP middleware to wrap the app.
// Middleware is applied in the order added (first added is outermost).
func (a *App) WithMiddleware(mw func(http.Handler) http.Handler) *App {
	a.middlewares = append(a.middlewares, mw)
	return a
}

// WithLogger sets a custom logger for the app.
// If not set, slog.Default() will be used.
func (a *App) WithLogger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// Register adds contract routes to the app.
func (a *App) Register(routes ...*contract.Route) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes = append(a.routes, routes...)
	return a
}

// Handler returns an http.Handler for use with http.ListenAndServe or other
// HTTP servers. The returned handler includes all configured middleware.
func (a *App) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(a.serveHTTP)
	// Apply middleware in reverse order so first added is outermost
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}

// serveHTTP handles incoming requests (internal, called via Handler()).
func (a *App) serveHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			a.log().Error("PANIC recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(stack)))
			writeError(w, NewError(CodeInternal, fmt.Sprintf("internal server error (panic): %v", rec)), a.logger)
		}
	}()

	if r.URL.Path == a.basePath+a.descriptionPath && r.Method == http.MethodGet {
		a.serveDescription(w, r)
		return
	}

	a.mu.RLock()
	routes := a.routes
	a.mu.RUnlock()

	for _, route := range routes {
		if route.Method != r.Method {
			continue
		}
		vars, ok := matchTemplate(a.basePath+route.Path, r.URL.Path)
		if !ok {
			continue
		}
		a.serveRoute(w, r, route, vars)
		return
	}

	// The fixed 404 body also covers a known path hit with the wrong verb.
	writeNotFound(w, a.logger)
}

func (a *App) serveRoute(w http.ResponseWriter, r *http.Request, route *contract.Route, vars map[string]string) {
	// Security gates first: an unauthenticated caller learns nothing about
	// the route's declared parameters.
	security := route.Security
	if security == nil {
		security = a.security
	}
	if security != nil && !security.Check(r) {
		writeError(w, NewError(CodeUnauthenticated, "Unauthorized"), a.logger)
		return
	}

	if failures := validateParams(r, vars, route.Params); len(failures) > 0 {
		writeBadRequest(w, failures, a.logger)
		return
	}

	ctx := newContext(r.Context(), route, vars)
	route.Handler.ServeHTTP(w, r.WithContext(ctx))
}

// serveDescription recomputes the document from the currently registered
// routes on every call; there is no cross-call cache.
func (a *App) serveDescription(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	routes := append([]*contract.Route(nil), a.routes...)
	a.mu.RUnlock()

	assembler := openapi.NewAssembler(a.info, a.version, a.adapter).
		WithBasePath(a.basePath).
		WithDefaultSecurity(a.security).
		WithLogger(a.log())

	doc, err := assembler.Document(routes)
	if err != nil {
		a.log().Error("document generation failed", slog.Any("error", err))
		writeError(w, NewError(CodeInternal, "document generation failed"), a.logger)
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		data, err := openapi.RenderYAML(doc)
		if err != nil {
			writeError(w, NewError(CodeInternal, "document generation failed"), a.logger)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			a.log().Error("failed to write description", slog.Any("error", err))
		}
		return
	}

	writeJSON(w, http.StatusOK, doc, a.logger)
}
