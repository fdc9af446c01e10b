// Package h3driver implements C4: per-connection HTTP/3 settings
// negotiation and the request-stream dispatch that routes an extended
// CONNECT :protocol=webtransport request to C6 and every other request
// to C5.
//
// Grounded on the teacher's cmd/aether-gateway/main.go webtransport.Server
// wiring (Upgrade-then-fallback pattern) and internal/core/session.go's
// H3/QUIC settings construction, adapted to drive quic-go/http3's
// http3.Server.ServeQUICConn directly (rather than its own
// ListenAndServe) because C3 already owns the QUIC listener.
package h3driver

import (
	"crypto/tls"
	"net/http"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/quic-go/webtransport-go"
	"go.uber.org/zap"

	"github.com/takashialpha/motmot/internal/metrics"
	"github.com/takashialpha/motmot/internal/wtsession"
)

// Driver negotiates HTTP/3 settings for one server's connections and
// dispatches each request stream to either the WebTransport session
// handler (C6) or the request dispatcher (C5, supplied as Dispatcher).
type Driver struct {
	ServerName string
	Dispatcher http.Handler
	Logger     *zap.Logger
	Metrics    *metrics.Set

	h3 *http3.Server
	wt *webtransport.Server
}

// New builds a Driver for one ServerSpec generation. The transport
// parameters (flow-control windows, idle timeout) are already fixed on
// conn by C2 when it was accepted, so the driver itself only needs the
// TLS config to answer http3.Server's interface. webTransport enables
// extended-CONNECT handling and hands upgraded sessions to
// wtsession.Handle; otherwise the driver is a plain HTTP/3 handler. m
// feeds wtsession.Handle's per-session instruments and may be nil.
func New(serverName string, tlsConfig *tls.Config, webTransport bool, dispatcher http.Handler, logger *zap.Logger, m *metrics.Set) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Driver{ServerName: serverName, Dispatcher: dispatcher, Logger: logger, Metrics: m}

	base := &http3.Server{
		TLSConfig:       tlsConfig,
		EnableDatagrams: true,
	}

	if webTransport {
		d.wt = &webtransport.Server{
			H3:          *base,
			CheckOrigin: func(r *http.Request) bool { return true },
		}
		d.wt.H3.Handler = http.HandlerFunc(d.serveHTTP)
	} else {
		base.Handler = http.HandlerFunc(d.serveHTTP)
		d.h3 = base
	}
	return d
}

// Serve drives one QUIC connection's HTTP/3 request-stream loop to
// completion. It always returns nil: per spec.md §4.4 every termination
// condition ("None", a normal remote close, or any other error) ends the
// driver's loop cleanly and the caller's connection task simply returns.
func (d *Driver) Serve(conn quic.Connection) error {
	var err error
	if d.wt != nil {
		err = d.wt.H3.ServeQUICConn(conn)
	} else {
		err = d.h3.ServeQUICConn(conn)
	}

	switch {
	case err == nil, isNormalClose(err):
		d.Logger.Debug("connection closed", zap.String("server", d.ServerName), zap.Error(err))
	default:
		d.Logger.Error("connection ended with error",
			zap.String("server", d.ServerName), zap.NamedError("cause", err), zap.Error(ErrH3SetupFailed))
	}
	return nil
}

// serveHTTP is the single entry point for every request stream on every
// connection this driver serves. An extended CONNECT that successfully
// upgrades to WebTransport consumes the H3 connection for the life of
// the session (spec.md §4.4 point 2: "a connection that upgraded cannot
// serve further H3 requests"); anything else, including a CONNECT that
// fails to upgrade, falls through to the dispatcher.
func (d *Driver) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if d.wt != nil && r.Method == http.MethodConnect {
		session, err := d.wt.Upgrade(w, r)
		if err == nil {
			d.Logger.Info("webtransport session upgraded",
				zap.String("server", d.ServerName), zap.String("remote", r.RemoteAddr))
			wtsession.Handle(r.Context(), session, d.ServerName, d.Logger.With(zap.String("server", d.ServerName)), d.Metrics)
			return
		}
		d.Logger.Debug("connect request was not a webtransport upgrade",
			zap.String("server", d.ServerName), zap.Error(err))
	}
	d.Dispatcher.ServeHTTP(w, r)
}
