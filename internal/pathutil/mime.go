package pathutil

import (
	"path/filepath"
	"strings"
)

// DefaultMIMEType is returned for any extension not present in the table.
const DefaultMIMEType = "application/octet-stream"

var extToMIME = map[string]string{
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".mjs":  "text/javascript; charset=utf-8",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".woff": "font/woff",
	".woff2": "font/woff2",
	".ttf":  "font/ttf",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".wasm": "application/wasm",
	".pdf":  "application/pdf",
	".txt":  "text/plain; charset=utf-8",
	".xml":  "application/xml",
}

// GuessMIMEType maps a file extension to a MIME type, per spec.md §4.7's
// static extension table, defaulting to application/octet-stream.
func GuessMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := extToMIME[ext]; ok {
		return mime
	}
	return DefaultMIMEType
}
