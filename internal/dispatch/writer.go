package dispatch

import "net/http"

// trackingWriter records whether the response head has already been
// sent and how many body bytes were written, so the dispatcher can
// decide (per spec.md §4.5 "Error recovery") whether an internal-error
// standard response can still be attempted after an action fails
// partway through.
type trackingWriter struct {
	http.ResponseWriter
	status        int
	bytesWritten  int64
	headerWritten bool
}

func newTrackingWriter(w http.ResponseWriter) *trackingWriter {
	return &trackingWriter{ResponseWriter: w}
}

func (t *trackingWriter) WriteHeader(code int) {
	if t.headerWritten {
		return
	}
	t.headerWritten = true
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	if !t.headerWritten {
		t.WriteHeader(http.StatusOK)
	}
	n, err := t.ResponseWriter.Write(b)
	t.bytesWritten += int64(n)
	return n, err
}
