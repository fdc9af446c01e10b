// Package wtsession implements C6: the WebTransport session handler
// that runs after C4 accepts an extended CONNECT upgrade. It echoes
// datagrams and spawns per-stream echo tasks for accepted uni/bidi
// streams, per spec.md §4.6.
//
// Grounded on the teacher's cmd/aether-gateway/main.go handleSession/
// handleStream (per-stream goroutine spawn over an AcceptStream loop)
// and internal/core/session.go's session shape, rewritten from tunnel
// record framing into a plain echo.
package wtsession

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/quic-go/webtransport-go"
	"go.uber.org/zap"

	"github.com/takashialpha/motmot/internal/metrics"
)

// echoChunkSize bounds the per-read buffer for stream echo tasks.
const echoChunkSize = 32 * 1024

// session is the subset of *webtransport.Session that Handle depends
// on, extracted as an interface so tests can drive the echo logic
// against an in-memory fake instead of a real QUIC connection.
type session interface {
	ReceiveDatagram(ctx context.Context) ([]byte, error)
	SendDatagram(b []byte) error
	AcceptStream(ctx context.Context) (webtransport.Stream, error)
	AcceptUniStream(ctx context.Context) (webtransport.ReceiveStream, error)
	OpenUniStreamSync(ctx context.Context) (webtransport.SendStream, error)
	CloseWithError(code webtransport.SessionErrorCode, msg string) error
}

// Handle runs the session's cooperative select loop until any one source
// (datagrams, uni streams, bidi streams) reports an error or ctx is
// canceled; the first such event ends the session.
// It does not return until the session itself ends; per-stream echo
// tasks are independent and are not awaited (spec.md §4.6: "the session
// task does not await them"). serverName and m drive the
// motmot_webtransport_sessions_active and
// motmot_webtransport_datagrams_echoed_total instruments; m may be nil.
// Every log line this session produces carries a session_id so one
// session's datagram/stream activity can be correlated across the log.
func Handle(ctx context.Context, sess *webtransport.Session, serverName string, logger *zap.Logger, m *metrics.Set) {
	if logger == nil {
		logger = zap.NewNop()
	}
	handle(ctx, sess, serverName, logger, m)
}

func handle(ctx context.Context, sess session, serverName string, logger *zap.Logger, m *metrics.Set) {
	sessionID := uuid.NewString()
	logger = logger.With(zap.String("session_id", sessionID))

	if m != nil {
		m.WebTransportSessionsActive.WithLabelValues(serverName).Inc()
		defer m.WebTransportSessionsActive.WithLabelValues(serverName).Dec()
	}

	logger.Info("webtransport session started")
	defer logger.Info("webtransport session ended")
	defer func() { _ = sess.CloseWithError(0, "") }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	datagrams := make(chan []byte)
	datagramErr := make(chan error, 1)
	go func() {
		for {
			data, err := sess.ReceiveDatagram(ctx)
			if err != nil {
				datagramErr <- err
				return
			}
			select {
			case datagrams <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	uniStreams := make(chan webtransport.ReceiveStream)
	uniErr := make(chan error, 1)
	go func() {
		for {
			str, err := sess.AcceptUniStream(ctx)
			if err != nil {
				uniErr <- err
				return
			}
			select {
			case uniStreams <- str:
			case <-ctx.Done():
				return
			}
		}
	}()

	biStreams := make(chan webtransport.Stream)
	biErr := make(chan error, 1)
	go func() {
		for {
			str, err := sess.AcceptStream(ctx)
			if err != nil {
				biErr <- err
				return
			}
			select {
			case biStreams <- str:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case data := <-datagrams:
			logger.Debug("datagram received", zap.Int("len", len(data)))
			if err := sess.SendDatagram(data); err != nil {
				logger.Error("datagram echo failed", zap.Error(err))
			} else if m != nil {
				m.DatagramsEchoedTotal.WithLabelValues(serverName).Inc()
			}

		case err := <-datagramErr:
			logger.Debug("datagram reader ended session", zap.Error(err))
			return

		case str := <-uniStreams:
			go echoUni(ctx, sess, str, logger)

		case err := <-uniErr:
			logger.Debug("uni-stream acceptor ended session", zap.Error(err))
			return

		case str := <-biStreams:
			go echoBidi(str, logger)

		case err := <-biErr:
			logger.Debug("bidi-stream acceptor ended session", zap.Error(err))
			return

		case <-ctx.Done():
			return
		}
	}
}

// echoUni opens a matching outbound unidirectional stream, copies
// everything read from in onto it until in ends, then shuts it down.
func echoUni(ctx context.Context, sess session, in webtransport.ReceiveStream, logger *zap.Logger) {
	out, err := sess.OpenUniStreamSync(ctx)
	if err != nil {
		logger.Error("failed to open outbound uni stream for echo", zap.Error(err))
		return
	}
	defer out.Close()

	buf := make([]byte, echoChunkSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		logger.Error("uni stream echo failed", zap.Error(err))
	}
}

// echoBidi reads whatever the peer sends and writes it straight back on
// the same stream, then closes its send side.
func echoBidi(stream webtransport.Stream, logger *zap.Logger) {
	defer stream.Close()

	buf := make([]byte, echoChunkSize)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := stream.Write(buf[:n]); werr != nil {
				logger.Error("bidi stream echo write failed", zap.Error(werr))
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				logger.Error("bidi stream echo read failed", zap.Error(err))
			}
			return
		}
	}
}
