package config

import "errors"

// Config-kind errors (spec.md §7 taxonomy: Config). All are fatal to
// loading the generation they occur in; they never cause a running
// generation to be torn down.
var (
	ErrMissingServer    = errors.New("config: no servers defined")
	ErrMalformedURL     = errors.New("config: malformed host or route path")
	ErrBadStatus        = errors.New("config: invalid response status")
	ErrDuplicateBinding = errors.New("config: duplicate (host, port) binding")
	ErrInvalidJSONBody  = errors.New("config: json action body is not valid JSON")
	ErrIPv4Host         = errors.New("config: host must be IPv6, not IPv4")
)
