// Package config defines the AppConfig data model consumed by the core
// server subsystems (C1-C7) and the loader that builds it from a TOML
// document on disk.
package config

// AppConfig is an immutable-after-load mapping from server name to
// ServerSpec, plus process-wide logging, health and metrics settings.
// Once loaded it is wrapped in a Generation and installed read-only;
// every connection and request goroutine only ever holds a *Generation.
type AppConfig struct {
	Servers map[string]ServerSpec `toml:"servers"`
	Logging LoggingConfig         `toml:"logging"`
	Health  HealthConfig          `toml:"health"`
	Metrics MetricsConfig         `toml:"metrics"`
}

// LoggingConfig carries the process-wide log settings that cmd/motmotd
// passes to internal/logging. The same type is decoded into
// ServerSpec.Logging, but that per-server copy is not read anywhere.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" (default) or "console"
}

// HealthConfig is accepted for forward compatibility with the external
// health pre-flight collaborator (port-conflict + bind probing); the core
// does not act on it directly.
type HealthConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// MetricsConfig configures the Prometheus exposition listener (A3). Addr
// is used as given (it is not restricted to loopback); Addr == "" disables
// the listener.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// ServerSpec describes one named HTTP/3 server: its bind address, TLS
// material, optional WebTransport support, and route table.
type ServerSpec struct {
	Host         string               `toml:"host"`
	Port         uint16               `toml:"port"`
	TLS          *TLSSpec             `toml:"tls"`
	WebTransport bool                 `toml:"webtransport"`
	Routes       map[string]RouteSpec `toml:"routes"`
	Logging      *LoggingConfig       `toml:"logging"`

	// StandardResponses optionally overrides the dispatcher's built-in
	// not-found/method-not-allowed/internal-error actions (spec.md §4.5:
	// "These MAY be overridable per ServerSpec; when absent, use the
	// defaults.").
	StandardResponses *StandardResponses `toml:"standard_responses"`
}

// StandardResponses overrides the three synthetic responses the
// dispatcher (C5) emits when routing fails. Any nil field falls back to
// the package-level default for that response.
type StandardResponses struct {
	NotFound         *Action `toml:"not_found"`
	MethodNotAllowed *Action `toml:"method_not_allowed"`
	InternalError    *Action `toml:"internal_error"`
}

// TLSSpec names the PEM certificate chain and private key files to load.
// Absence of either field (a nil *TLSSpec, or either path empty) tells
// internal/tlsprovider to fall back to load-or-generate.
type TLSSpec struct {
	CertPath string `toml:"cert_path"`
	KeyPath  string `toml:"key_path"`
}

// RouteSpec maps an uppercase HTTP method to the Action it dispatches to,
// plus an optional fallback Action used when no method matches directly
// (and, for GET routes, no HEAD->GET fallback applies either).
type RouteSpec struct {
	Methods  map[string]Action
	Fallback *Action
}

// ActionKind is the tagged-union discriminator for Action, decoded from
// the TOML `type` field.
type ActionKind string

const (
	ActionStatic   ActionKind = "static"
	ActionProxy    ActionKind = "proxy"
	ActionJSON     ActionKind = "json"
	ActionText     ActionKind = "text"
	ActionRedirect ActionKind = "redirect"
	ActionDeny     ActionKind = "deny"
)

// Action is a tagged variant over the six response-producing behaviors
// the dispatcher (C5) can execute. Exactly one of the pointer fields
// matching Kind is populated.
type Action struct {
	Kind     ActionKind
	Static   *StaticAction
	Proxy    *ProxyAction
	JSON     *JSONAction
	Text     *TextAction
	Redirect *RedirectAction
	Deny     *DenyAction
}

// StaticAction serves a file from directory+file. Cache is accepted but
// inert (spec.md Non-goals: content caching).
type StaticAction struct {
	Directory string `json:"directory"`
	File      string `json:"file"`
	Cache     bool   `json:"cache"`
}

// ProxyAction is specified as not-implemented: C5 always answers 501 for
// it regardless of these fields. They are retained so a future
// implementation has somewhere to land without a config schema break.
type ProxyAction struct {
	Upstream     string `json:"upstream"`
	PreserveHost bool   `json:"preserve_host"`
	TimeoutSecs  int    `json:"timeout_secs"`
	StripPrefix  string `json:"strip_prefix"`
}

// JSONAction's Body must parse as a valid JSON value (validated at load
// time by Validate, and defensively re-checked before every response).
type JSONAction struct {
	Body   string `json:"body"`
	Status int    `json:"status"`
}

// TextAction answers verbatim with the given content type and status.
type TextAction struct {
	Body        string `json:"body"`
	ContentType string `json:"content_type"`
	Status      int    `json:"status"`
}

// RedirectAction's Status must be in [300, 400).
type RedirectAction struct {
	To     string `json:"to"`
	Status int    `json:"status"`
}

// DenyAction synthesizes an error response; Message is optional.
type DenyAction struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Generation is one installed, read-only snapshot of AppConfig. Reload
// produces a new Generation; in-flight connections retain the Generation
// they were spawned with until they terminate.
type Generation struct {
	ID     uint64
	Config *AppConfig
}
