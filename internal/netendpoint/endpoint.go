// Package netendpoint implements C2: resolve a ServerSpec's host to an
// IPv6 address, build an IPv6-only UDP socket, and wrap it in a QUIC
// endpoint carrying the TLS config produced by internal/tlsprovider.
//
// Grounded on the teacher's cmd/aether-gateway/main.go quic.Config
// construction (flow-control windows, datagrams, idle timeout) and on
// the override/validation shape of internal/core/quic_window.go
// (window.go), retargeted from a tunnel client's single hardcoded
// profile to two profiles chosen by whether this server carries
// WebTransport traffic.
package netendpoint

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/quic-go/quic-go"
	"golang.org/x/sys/unix"
)

// Endpoint owns the UDP socket and QUIC transport/listener for one
// ServerSpec generation. It lives for exactly one generation of one
// server and is closed on shutdown/reload, after the accept loop has
// drained in-flight connections.
type Endpoint struct {
	Addr      *net.UDPAddr
	transport *quic.Transport
	listener  *quic.Listener
}

// Build resolves host to an IPv6 address, creates an IPv6-only UDP
// socket bound to (host, port) with IPV6_V6ONLY set before bind, and
// constructs a QUIC listener over it using tlsConfig (already restricted
// to TLS 1.3 / ALPN h3 by internal/tlsprovider) and the window profile
// this server's webTransport setting selects.
func Build(ctx context.Context, host string, port uint16, tlsConfig *tls.Config, webTransport bool) (*Endpoint, error) {
	ipv6, err := resolveIPv6(ctx, host)
	if err != nil {
		return nil, err
	}

	window, err := resolveWindowConfig(webTransport)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEndpointCreate, err)
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1)
			}); err != nil {
				return err
			}
			return sockErr
		},
	}

	addr := net.JoinHostPort(ipv6.String(), strconv.Itoa(int(port)))
	pc, err := lc.ListenPacket(ctx, "udp6", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSocketCreate, addr, err)
	}

	quicConfig := &quic.Config{
		EnableDatagrams:                true,
		MaxIdleTimeout:                 60 * time.Second,
		KeepAlivePeriod:                20 * time.Second,
		InitialStreamReceiveWindow:     window.InitialStreamReceiveWindow,
		InitialConnectionReceiveWindow: window.InitialConnectionReceiveWindow,
		MaxStreamReceiveWindow:         window.MaxStreamReceiveWindow,
		MaxConnectionReceiveWindow:     window.MaxConnectionReceiveWindow,
	}

	transport := &quic.Transport{Conn: pc}
	listener, err := transport.Listen(tlsConfig, quicConfig)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("%w: %v", ErrEndpointCreate, err)
	}

	udpAddr, _ := net.ResolveUDPAddr("udp6", addr)
	return &Endpoint{Addr: udpAddr, transport: transport, listener: listener}, nil
}

// Listener exposes the underlying QUIC listener for the accept loop (C3).
func (e *Endpoint) Listener() *quic.Listener {
	return e.listener
}

// Close shuts down the listener and releases the socket. quic-go's
// Listener.Close does not itself wait for in-flight connections; the
// accept loop is responsible for draining before calling Close, per
// spec.md §5.
func (e *Endpoint) Close() error {
	err := e.listener.Close()
	if cerr := e.transport.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// resolveIPv6 implements spec.md §4.2's host resolution: an IPv6 literal
// (including "::") is used directly; otherwise DNS is consulted and the
// first AAAA answer wins. Absence of any IPv6 answer is fatal.
func resolveIPv6(ctx context.Context, host string) (net.IP, error) {
	isIPv6Literal := strings.Contains(host, ":")

	if ip := net.ParseIP(host); ip != nil {
		if !isIPv6Literal {
			// Dotted-quad IPv4 literal, e.g. "192.0.2.1" (spec.md §8:
			// "a plain IPv4 literal is rejected").
			return nil, fmt.Errorf("%w: %q is an IPv4 literal", ErrNoIPv6, host)
		}
		return ip, nil
	}

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip6", host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResolutionFailed, host, err)
	}
	for _, ip := range ips {
		if ip.To4() == nil {
			return ip, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no AAAA record", ErrNoIPv6, host)
}
