package reekwest

import (
	"context"

	"github.com/http4k/reekwest/contract"
)

type contextKey struct {
	name string
}

var (
	routeKey = &contextKey{"route"}
	varsKey  = &contextKey{"path_vars"}
)

// RouteFromContext returns the matched contract route from the context.
func RouteFromContext(ctx context.Context) *contract.Route {
	if r, ok := ctx.Value(routeKey).(*contract.Route); ok {
		return r
	}
	return nil
}

// PathVars returns every captured path variable.
func PathVars(ctx context.Context) map[string]string {
	if vars, ok := ctx.Value(varsKey).(map[string]string); ok {
		return vars
	}
	return nil
}

// PathVar returns one captured path variable, or "" if absent.
func PathVar(ctx context.Context, name string) string {
	return PathVars(ctx)[name]
}

func newContext(ctx context.Context, route *contract.Route, vars map[string]string) context.Context {
	ctx = context.WithValue(ctx, routeKey, route)
	ctx = context.WithValue(ctx, varsKey, vars)
	return ctx
}
