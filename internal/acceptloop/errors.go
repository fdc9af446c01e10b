package acceptloop

import "errors"

// ErrHandshakeFailed tags the Connection-kind error spec.md §7 names for
// a QUIC handshake that never completes. The loop logs and drops it
// without ending the accept loop itself.
var ErrHandshakeFailed = errors.New("acceptloop: quic handshake failed")
