package h3driver

import "strings"

// isNormalClose recognizes the one error text quic-go surfaces for a
// clean peer close with application error code 0x0. quic-go does not
// expose a typed zero-close-code check, so this string match is the
// only signal available; it is isolated here precisely because it is
// brittle (spec.md §9).
func isNormalClose(err error) bool {
	if err == nil {
		return true
	}
	return strings.Contains(err.Error(), "ApplicationClose: 0x0")
}
