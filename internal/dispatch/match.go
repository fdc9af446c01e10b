package dispatch

import (
	"strings"

	"github.com/takashialpha/motmot/internal/config"
)

// MatchRoute returns the longest registered route path that is a prefix
// of the normalized request path, per spec.md §4.5. Route-path keys are
// unique, so no tie is possible.
func MatchRoute(routes map[string]config.RouteSpec, normalizedPath string) (string, config.RouteSpec, bool) {
	var bestPath string
	var best config.RouteSpec
	found := false

	for path, route := range routes {
		if !strings.HasPrefix(normalizedPath, path) {
			continue
		}
		if !found || len(path) > len(bestPath) {
			bestPath, best, found = path, route, true
		}
	}
	return bestPath, best, found
}

// SelectAction resolves the Action for method against route, per
// spec.md §4.5: direct match, else HEAD falls back to GET, else the
// route's fallback.
func SelectAction(route config.RouteSpec, method string) (config.Action, bool) {
	method = strings.ToUpper(method)

	if a, ok := route.Methods[method]; ok {
		return a, true
	}
	if method == "HEAD" {
		if a, ok := route.Methods["GET"]; ok {
			return a, true
		}
	}
	if route.Fallback != nil {
		return *route.Fallback, true
	}
	return config.Action{}, false
}
