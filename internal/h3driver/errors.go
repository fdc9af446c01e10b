package h3driver

import "errors"

// ErrH3SetupFailed tags the Connection-kind error spec.md §7 names for a
// connection whose HTTP/3 request-stream loop ended with anything other
// than a clean or normal-close termination.
var ErrH3SetupFailed = errors.New("h3driver: http/3 setup failed")
