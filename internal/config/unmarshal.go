package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnmarshalTOML implements toml.Unmarshaler. BurntSushi/toml hands us the
// already-decoded primitive value (map[string]interface{} for a table),
// which we redecode into the concrete variant named by "type". Round
// tripping through encoding/json keeps the per-variant structs free of
// TOML-specific tags; their json tags name the TOML keys.
func (a *Action) UnmarshalTOML(data interface{}) error {
	m, ok := data.(map[string]interface{})
	if !ok {
		return fmt.Errorf("action: expected a table, got %T", data)
	}

	rawKind, ok := m["type"]
	if !ok {
		return fmt.Errorf("action: missing required field \"type\"")
	}
	kindStr, ok := rawKind.(string)
	if !ok {
		return fmt.Errorf("action: \"type\" must be a string")
	}

	a.Kind = ActionKind(strings.ToLower(kindStr))

	switch a.Kind {
	case ActionStatic:
		a.Static = &StaticAction{}
		return redecode(m, a.Static)
	case ActionProxy:
		a.Proxy = &ProxyAction{}
		return redecode(m, a.Proxy)
	case ActionJSON:
		a.JSON = &JSONAction{}
		return redecode(m, a.JSON)
	case ActionText:
		a.Text = &TextAction{}
		return redecode(m, a.Text)
	case ActionRedirect:
		a.Redirect = &RedirectAction{}
		return redecode(m, a.Redirect)
	case ActionDeny:
		a.Deny = &DenyAction{}
		return redecode(m, a.Deny)
	default:
		return fmt.Errorf("action: unknown type %q", kindStr)
	}
}

// redecode marshals a generic TOML table back to JSON and into dst. It is
// a deliberately small alternative to pulling in a reflection-based
// decoder just for six tiny structs.
func redecode(m map[string]interface{}, dst interface{}) error {
	buf, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("action: re-encode failed: %w", err)
	}
	if err := json.Unmarshal(buf, dst); err != nil {
		return fmt.Errorf("action: decode failed: %w", err)
	}
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler for RouteSpec. A route table
// is a flat map of method-name (or the literal key "fallback") to an
// Action table; method keys are upper-cased here so lookups at match
// time never need case folding.
func (r *RouteSpec) UnmarshalTOML(data interface{}) error {
	m, ok := data.(map[string]interface{})
	if !ok {
		return fmt.Errorf("route: expected a table, got %T", data)
	}

	r.Methods = make(map[string]Action, len(m))
	for key, val := range m {
		var action Action
		if err := action.UnmarshalTOML(val); err != nil {
			return fmt.Errorf("route: key %q: %w", key, err)
		}
		if strings.EqualFold(key, "fallback") {
			fb := action
			r.Fallback = &fb
			continue
		}
		r.Methods[strings.ToUpper(key)] = action
	}
	return nil
}
