package netendpoint

import "errors"

// Network-kind errors (spec.md §7 taxonomy: Network). Fatal to the server
// that produced them.
var (
	ErrResolutionFailed = errors.New("netendpoint: address resolution failed")
	ErrNoIPv6           = errors.New("netendpoint: host has no IPv6 address")
	ErrSocketCreate     = errors.New("netendpoint: socket create/configure/bind failed")
	ErrEndpointCreate   = errors.New("netendpoint: quic endpoint create failed")
)
