package wtsession

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/quic-go/webtransport-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/takashialpha/motmot/internal/metrics"
)

var errFakeStreamsExhausted = errors.New("wtsession test: no more fake streams")

// fakeStream is an in-memory webtransport.Stream: reads come from an
// internal buffer, writes accumulate into another for assertions.
type fakeStream struct {
	mu     sync.Mutex
	in     *bytes.Reader
	out    bytes.Buffer
	closed bool
}

func newFakeStream(payload []byte) *fakeStream {
	return &fakeStream{in: bytes.NewReader(payload)}
}

func (f *fakeStream) Read(p []byte) (int, error)  { return f.in.Read(p) }
func (f *fakeStream) CancelRead(webtransport.StreamErrorCode)  {}
func (f *fakeStream) CancelWrite(webtransport.StreamErrorCode) {}
func (f *fakeStream) SetReadDeadline(time.Time) error          { return nil }
func (f *fakeStream) SetWriteDeadline(time.Time) error         { return nil }
func (f *fakeStream) StreamID() webtransport.StreamID          { return 0 }

func (f *fakeStream) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.Write(p)
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStream) written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.out.Bytes()...)
}

func (f *fakeStream) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeSession drives Handle's select loop with one datagram, one bidi
// stream and one uni stream; after that every source blocks until ctx is
// done and then returns an error, so the loop ends when ctx does.
type fakeSession struct {
	datagramSent  chan []byte
	datagramsOnce sync.Once
	datagramData  []byte

	biOnce   sync.Once
	biStream *fakeStream

	uniOnce   sync.Once
	uniStream *fakeStream

	echoOut *fakeStream

	closeErrCalled atomic.Bool
}

func newFakeSession(datagram, bidiPayload, uniPayload []byte) *fakeSession {
	return &fakeSession{
		datagramSent: make(chan []byte, 1),
		datagramData: datagram,
		biStream:     newFakeStream(bidiPayload),
		uniStream:    newFakeStream(uniPayload),
		echoOut:      newFakeStream(nil),
	}
}

func (f *fakeSession) ReceiveDatagram(ctx context.Context) ([]byte, error) {
	var data []byte
	sent := false
	f.datagramsOnce.Do(func() { data = f.datagramData; sent = true })
	if sent {
		return data, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSession) SendDatagram(b []byte) error {
	f.datagramSent <- append([]byte(nil), b...)
	return nil
}

func (f *fakeSession) AcceptStream(ctx context.Context) (webtransport.Stream, error) {
	var got *fakeStream
	f.biOnce.Do(func() { got = f.biStream })
	if got != nil {
		return got, nil
	}
	<-ctx.Done()
	return nil, errFakeStreamsExhausted
}

func (f *fakeSession) AcceptUniStream(ctx context.Context) (webtransport.ReceiveStream, error) {
	var got *fakeStream
	f.uniOnce.Do(func() { got = f.uniStream })
	if got != nil {
		return got, nil
	}
	<-ctx.Done()
	return nil, errFakeStreamsExhausted
}

func (f *fakeSession) OpenUniStreamSync(ctx context.Context) (webtransport.SendStream, error) {
	return f.echoOut, nil
}

func (f *fakeSession) CloseWithError(code webtransport.SessionErrorCode, msg string) error {
	f.closeErrCalled.Store(true)
	return nil
}

func TestHandle_EchoesDatagramVerbatim(t *testing.T) {
	sess := newFakeSession([]byte{0xDE, 0xAD, 0xBE, 0xEF}, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	m := metrics.New()
	go handle(ctx, sess, "edge-1", zap.NewNop(), m)

	select {
	case got := <-sess.datagramSent:
		require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for datagram echo")
	}

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.DatagramsEchoedTotal.WithLabelValues("edge-1")) == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, float64(1), testutil.ToFloat64(m.WebTransportSessionsActive.WithLabelValues("edge-1")))
}

func TestHandle_BidiStreamEchoesThenCloses(t *testing.T) {
	sess := newFakeSession(nil, []byte("hello world"), nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go handle(ctx, sess, "edge-1", zap.NewNop(), nil)

	require.Eventually(t, func() bool {
		return bytes.Equal(sess.biStream.written(), []byte("hello world")) && sess.biStream.isClosed()
	}, time.Second, 5*time.Millisecond)
}

func TestHandle_UniStreamEchoedToOpenedOutbound(t *testing.T) {
	sess := newFakeSession(nil, nil, []byte("ping"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go handle(ctx, sess, "edge-1", zap.NewNop(), nil)

	require.Eventually(t, func() bool {
		return bytes.Equal(sess.echoOut.written(), []byte("ping")) && sess.echoOut.isClosed()
	}, time.Second, 5*time.Millisecond)
}

func TestHandle_ReturnsOnContextCancel(t *testing.T) {
	sess := newFakeSession(nil, nil, nil)
	// Exhaust the datagram source up front so ReceiveDatagram only blocks
	// until ctx is canceled and then returns ctx.Err().
	sess.datagramsOnce.Do(func() {})

	m := metrics.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		handle(ctx, sess, "edge-1", zap.NewNop(), m)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handle did not return after context cancellation")
	}
	require.True(t, sess.closeErrCalled.Load())
	require.Equal(t, float64(0), testutil.ToFloat64(m.WebTransportSessionsActive.WithLabelValues("edge-1")))
}

var _ io.Reader = (*fakeStream)(nil)
