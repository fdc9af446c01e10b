// Package dispatch implements C5: path normalization, longest-prefix
// route matching, method/fallback selection, action execution and the
// three standard responses.
//
// No direct teacher analog exists (the teacher is a tunnel proxy, not a
// route dispatcher); the request-to-handler control flow here is
// grounded on internal/core/http_proxy.go's method-switch-plus-structured-
// logging shape from the teacher repo, applied to http.Handler instead
// of a raw net.Conn.
package dispatch

import (
	"strings"

	"github.com/takashialpha/motmot/internal/pathutil"
)

// Normalize implements spec.md §4.5's path normalization: collapse
// repeated slashes, and strip exactly one trailing slash unless the
// result is the root path.
func Normalize(rawPath string) string {
	collapsed := pathutil.CollapseSlashes(rawPath)
	if collapsed == "" {
		return "/"
	}
	if collapsed == "/" {
		return "/"
	}
	if strings.HasSuffix(collapsed, "/") {
		return strings.TrimSuffix(collapsed, "/")
	}
	return collapsed
}
