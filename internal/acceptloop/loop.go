// Package acceptloop implements C3: the per-server accept loop that
// selects between newly arrived QUIC connections and the process-wide
// shutdown/reload signal, spawning an independent task per connection
// that hands off to the H3 driver (C4).
//
// Grounded on the teacher's internal/core/state.go StateMachine
// (retargeted as statemachine.go) and cmd/aether-gateway/main.go's
// per-connection goroutine spawn over Listener.Accept.
package acceptloop

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/quic-go/quic-go"
	"go.uber.org/zap"

	"github.com/takashialpha/motmot/internal/h3driver"
	"github.com/takashialpha/motmot/internal/metrics"
	"github.com/takashialpha/motmot/internal/netendpoint"
)

// Loop owns one ServerSpec generation's connection-accept lifecycle.
type Loop struct {
	ServerName string
	Endpoint   *netendpoint.Endpoint
	Driver     *h3driver.Driver
	Logger     *zap.Logger
	Metrics    *metrics.Set

	sm          *stateMachine
	wg          sync.WaitGroup
	activeConns atomic.Int64
}

// New builds a Loop in the Starting state.
func New(serverName string, endpoint *netendpoint.Endpoint, driver *h3driver.Driver, logger *zap.Logger, m *metrics.Set) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		ServerName: serverName,
		Endpoint:   endpoint,
		Driver:     driver,
		Logger:     logger,
		Metrics:    m,
		sm:         newStateMachine(),
	}
}

// State reports the loop's current lifecycle state.
func (l *Loop) State() State {
	return l.sm.State()
}

// ActiveConnections reports the number of connection tasks currently in
// flight. Run's drain step waits on its own WaitGroup, not on this count.
func (l *Loop) ActiveConnections() int64 {
	return l.activeConns.Load()
}

// Run accepts connections until shutdownCh or reloadCh fires (or ctx is
// canceled), then drains in-flight connections before returning.
// reloaded reports whether the loop stopped because of a reload signal
// (true) rather than shutdown (false); the caller is responsible for
// building a fresh Loop against the new AppConfig generation in that
// case (spec.md §4.3, §9 "hot reload").
func (l *Loop) Run(ctx context.Context, shutdownCh, reloadCh <-chan struct{}) (reloaded bool, err error) {
	if err := l.sm.transition(StateServing); err != nil {
		return false, err
	}

	acceptCtx, cancelAccept := context.WithCancel(ctx)
	defer cancelAccept()

	var wantsReload atomic.Bool
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		select {
		case <-shutdownCh:
		case <-reloadCh:
			wantsReload.Store(true)
		case <-ctx.Done():
		}
		cancelAccept()
	}()

	for {
		conn, acceptErr := l.Endpoint.Listener().Accept(acceptCtx)
		if acceptErr != nil {
			if acceptCtx.Err() != nil {
				break
			}
			// A failed handshake (or any other per-connection accept
			// error) is logged and dropped; the loop keeps running
			// (spec.md §4.3).
			l.Logger.Error("accept failed",
				zap.String("server", l.ServerName), zap.NamedError("cause", acceptErr), zap.Error(ErrHandshakeFailed))
			continue
		}
		l.spawnConnection(conn)
	}

	<-watchDone

	if err := l.sm.transition(StateDraining); err != nil {
		return false, err
	}
	l.wg.Wait()

	if err := l.Endpoint.Close(); err != nil {
		l.Logger.Error("endpoint close failed during drain", zap.String("server", l.ServerName), zap.Error(err))
	}

	if err := l.sm.transition(StateStopped); err != nil {
		return false, err
	}
	return wantsReload.Load(), nil
}

func (l *Loop) spawnConnection(conn quic.Connection) {
	l.wg.Add(1)
	l.activeConns.Add(1)
	if l.Metrics != nil {
		l.Metrics.ConnectionsTotal.WithLabelValues(l.ServerName).Inc()
	}
	go func() {
		defer l.wg.Done()
		defer l.activeConns.Add(-1)
		_ = l.Driver.Serve(conn)
	}()
}
