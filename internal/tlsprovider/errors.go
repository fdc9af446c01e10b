package tlsprovider

import "errors"

// TLS-kind errors (spec.md §7 taxonomy: TLS). Each is fatal to the server
// that produced it; sibling servers in the same AppConfig are unaffected.
var (
	ErrCertUnreadable   = errors.New("tlsprovider: certificate file unreadable")
	ErrCertParseFailed  = errors.New("tlsprovider: certificate PEM parse failed")
	ErrKeyUnreadable    = errors.New("tlsprovider: key file unreadable")
	ErrKeyParseFailed   = errors.New("tlsprovider: key PEM parse failed")
	ErrGenerationFailed = errors.New("tlsprovider: self-signed certificate generation failed")
	ErrWriteFailed      = errors.New("tlsprovider: failed to persist generated certificate")
	ErrConfigBuildFailed = errors.New("tlsprovider: failed to build TLS server config")
)
