package dispatch

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/takashialpha/motmot/internal/config"
	"github.com/takashialpha/motmot/internal/metrics"
)

// Dispatcher is C5: it implements http.Handler so it plugs directly into
// internal/h3driver's per-connection http3.Server.Handler, and is the
// sole place request routing, action execution and standard responses
// live.
type Dispatcher struct {
	ServerName string
	Spec       config.ServerSpec
	Logger     *zap.Logger
	Metrics    *metrics.Set
}

// New builds a Dispatcher for one server generation.
func New(serverName string, spec config.ServerSpec, logger *zap.Logger, m *metrics.Set) *Dispatcher {
	return &Dispatcher{ServerName: serverName, Spec: spec, Logger: logger, Metrics: m}
}

// ServeHTTP implements the full C5 contract: normalize, longest-prefix
// match, method/fallback resolution, action execution, error recovery,
// and the one structured per-request log line spec.md §4.5 requires.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()

	normalized := Normalize(r.URL.Path)
	routePath, route, matched := MatchRoute(d.Spec.Routes, normalized)

	var action config.Action
	switch {
	case !matched:
		action = notFoundAction(d.Spec.StandardResponses)
	default:
		if a, ok := SelectAction(route, r.Method); ok {
			action = a
		} else {
			action = methodNotAllowedAction(d.Spec.StandardResponses)
		}
	}

	tw := newTrackingWriter(w)
	aborted := false
	if err := execute(tw, r, action); err != nil {
		if !tw.headerWritten {
			// No bytes of the original response head were sent; it is
			// still safe to attempt the internal-error standard
			// response on the same stream (spec.md §4.5).
			fallback := internalErrorAction(d.Spec.StandardResponses)
			if ferr := execute(tw, r, fallback); ferr != nil {
				d.logger().Error("internal-error standard response also failed",
					zap.String("request_id", requestID), zap.Error(ferr))
			}
		} else {
			d.logger().Error("action failed after response head was sent; stream ends abruptly",
				zap.String("request_id", requestID), zap.Error(err))
			aborted = true
		}
	}

	dur := time.Since(start)
	d.observe(r.Method, routePath, tw.status, dur, tw.bytesWritten)
	d.logger().Info("request completed",
		zap.String("server", d.ServerName),
		zap.String("method", r.Method),
		zap.String("path", normalized),
		zap.String("route", routePath),
		zap.Int("status", tw.status),
		zap.Int64("dur_ms", dur.Milliseconds()),
		zap.Int64("bytes", tw.bytesWritten),
		zap.String("request_id", requestID),
	)

	if aborted {
		// Abort the stream instead of finishing it, so a truncated
		// response is not delivered as if it were complete.
		panic(http.ErrAbortHandler)
	}
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

func (d *Dispatcher) observe(method, route string, status int, dur time.Duration, bytes int64) {
	if d.Metrics == nil {
		return
	}
	d.Metrics.RequestsTotal.WithLabelValues(d.ServerName, method, strconv.Itoa(status)).Inc()
	d.Metrics.RequestDurationSeconds.WithLabelValues(d.ServerName, route).Observe(dur.Seconds())
}
