package dispatch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/takashialpha/motmot/internal/config"
	"github.com/takashialpha/motmot/internal/pathutil"
)

// staticChunkSize matches spec.md §4.5's "chunk size ~= 40 KiB for
// streaming file reads".
const staticChunkSize = 40 * 1024

// execute runs action against w/r and reports the bytes written for
// observability. It returns an error only when the action failed before
// (or partway through) emitting a well-formed response; the caller
// decides whether recovery is still possible based on whether any bytes
// of the response head were already sent.
func execute(w *trackingWriter, r *http.Request, action config.Action) error {
	switch action.Kind {
	case config.ActionStatic:
		return executeStatic(w, action.Static)
	case config.ActionJSON:
		return executeJSON(w, action.JSON)
	case config.ActionText:
		return executeText(w, action.Text)
	case config.ActionRedirect:
		return executeRedirect(w, action.Redirect)
	case config.ActionDeny:
		return executeDeny(w, action.Deny)
	case config.ActionProxy:
		return executeProxy(w)
	default:
		return fmt.Errorf("dispatch: unknown action kind %q", action.Kind)
	}
}

func executeStatic(w *trackingWriter, a *config.StaticAction) error {
	if strings.Contains(a.File, "{path}") {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotImplemented)
		_, err := w.Write([]byte("Not Implemented"))
		return err
	}

	resolved, err := pathutil.SafeJoin(a.Directory, a.File)
	if err != nil {
		return fmt.Errorf("dispatch: static: %w", err)
	}
	if err := pathutil.ValidateFile(resolved); err != nil {
		return fmt.Errorf("dispatch: static: %w", err)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return fmt.Errorf("dispatch: static: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("dispatch: static: %w", err)
	}

	mimeType := pathutil.GuessMIMEType(resolved)
	if mimeType == pathutil.DefaultMIMEType {
		sniff := make([]byte, 512)
		n, _ := io.ReadFull(f, sniff)
		mimeType = http.DetectContentType(sniff[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("dispatch: static: %w", err)
		}
	}

	w.Header().Set("content-type", mimeType)
	w.Header().Set("content-length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	buf := make([]byte, staticChunkSize)
	if _, err := io.CopyBuffer(w, f, buf); err != nil {
		return fmt.Errorf("dispatch: static: %w", err)
	}
	return nil
}

func executeJSON(w *trackingWriter, a *config.JSONAction) error {
	if !json.Valid([]byte(a.Body)) {
		return fmt.Errorf("dispatch: json action body is not valid JSON")
	}
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("content-type", "application/json")
	w.Header().Set("content-length", strconv.Itoa(len(a.Body)))
	w.WriteHeader(status)
	_, err := io.WriteString(w, a.Body)
	return err
}

func executeText(w *trackingWriter, a *config.TextAction) error {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	contentType := a.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("content-type", contentType)
	w.Header().Set("content-length", strconv.Itoa(len(a.Body)))
	w.WriteHeader(status)
	_, err := io.WriteString(w, a.Body)
	return err
}

func executeRedirect(w *trackingWriter, a *config.RedirectAction) error {
	if a.Status < 300 || a.Status >= 400 {
		return fmt.Errorf("dispatch: redirect status %d is not in [300,400)", a.Status)
	}
	w.Header().Set("location", a.To)
	w.WriteHeader(a.Status)
	return nil
}

func executeDeny(w *trackingWriter, a *config.DenyAction) error {
	status := a.Status
	if status == 0 {
		status = http.StatusForbidden
	}
	if a.Message != "" {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(status)
	if a.Message == "" {
		return nil
	}
	_, err := io.WriteString(w, a.Message)
	return err
}

func executeProxy(w *trackingWriter) error {
	w.Header().Set("content-type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotImplemented)
	_, err := io.WriteString(w, "Proxy not implemented")
	return err
}
