package config

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
)

// Validate enforces every invariant named in spec.md §3:
//   - at most one ServerSpec binds any (host, port) pair
//   - every route path begins with "/"
//   - a Redirect action's status is in [300, 400)
//   - a JSON action's body parses as valid JSON
//   - host is never a bare IPv4 literal
func (c *AppConfig) Validate() error {
	if len(c.Servers) == 0 {
		return ErrMissingServer
	}

	bindings := make(map[string]string, len(c.Servers))
	for name, srv := range c.Servers {
		if err := srv.validate(name); err != nil {
			return err
		}
		key := fmt.Sprintf("%s/%d", normalizeHost(srv.Host), srv.Port)
		if other, taken := bindings[key]; taken {
			return fmt.Errorf("%w: %s and %s both bind %s", ErrDuplicateBinding, other, name, key)
		}
		bindings[key] = name
	}
	return nil
}

func normalizeHost(h string) string {
	if ip := net.ParseIP(h); ip != nil {
		return ip.String()
	}
	return strings.ToLower(h)
}

func (s *ServerSpec) validate(name string) error {
	if s.Host == "" {
		return fmt.Errorf("%w: server %q has no host", ErrMalformedURL, name)
	}
	if ip := net.ParseIP(s.Host); ip != nil && ip.To4() != nil && !strings.Contains(s.Host, ":") {
		return fmt.Errorf("%w: server %q host %q", ErrIPv4Host, name, s.Host)
	}

	for path, route := range s.Routes {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%w: server %q route %q must start with \"/\"", ErrMalformedURL, name, path)
		}
		if err := route.validate(name, path); err != nil {
			return err
		}
	}
	return nil
}

func (r *RouteSpec) validate(server, path string) error {
	for method, action := range r.Methods {
		if err := action.validate(server, path, method); err != nil {
			return err
		}
	}
	if r.Fallback != nil {
		if err := r.Fallback.validate(server, path, "fallback"); err != nil {
			return err
		}
	}
	return nil
}

func (a *Action) validate(server, path, method string) error {
	switch a.Kind {
	case ActionRedirect:
		if a.Redirect == nil || a.Redirect.Status < 300 || a.Redirect.Status >= 400 {
			return fmt.Errorf("%w: server %q route %q method %q redirect status must be in [300,400)", ErrBadStatus, server, path, method)
		}
	case ActionJSON:
		if a.JSON == nil || !json.Valid([]byte(a.JSON.Body)) {
			return fmt.Errorf("%w: server %q route %q method %q", ErrInvalidJSONBody, server, path, method)
		}
	case ActionStatic, ActionProxy, ActionText, ActionDeny:
		// no cross-field invariant beyond what UnmarshalTOML already enforced.
	default:
		return fmt.Errorf("%w: server %q route %q method %q has unknown action kind %q", ErrMalformedURL, server, path, method, a.Kind)
	}
	return nil
}
