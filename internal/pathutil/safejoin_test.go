package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeJoin_RejectsDotDot(t *testing.T) {
	_, err := SafeJoin("/srv", "../etc/passwd")
	require.ErrorIs(t, err, ErrTraversal)
}

func TestSafeJoin_RejectsTemplatedPath(t *testing.T) {
	_, err := SafeJoin("/srv", "{path}/index.html")
	require.ErrorIs(t, err, ErrNotImplemented)
}

func TestSafeJoin_ResolvesWithinBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "index.html"), []byte("<h1>hi</h1>"), 0o644))

	resolved, err := SafeJoin(base, "index.html")
	require.NoError(t, err)

	canonicalBase, err := filepath.EvalSymlinks(base)
	require.NoError(t, err)

	rel, err := filepath.Rel(canonicalBase, resolved)
	require.NoError(t, err)
	require.Equal(t, "index.html", rel)
}

func TestSafeJoin_CollapsesSlashesAndLeadingSlash(t *testing.T) {
	base := t.TempDir()
	sub := filepath.Join(base, "assets")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "app.js"), []byte("x"), 0o644))

	resolved, err := SafeJoin(base, "/assets//app.js")
	require.NoError(t, err)
	require.NoError(t, ValidateFile(resolved))
}

func TestGuessMIMEType(t *testing.T) {
	require.Equal(t, "text/html; charset=utf-8", GuessMIMEType("index.html"))
	require.Equal(t, "image/svg+xml", GuessMIMEType("logo.SVG"))
	require.Equal(t, DefaultMIMEType, GuessMIMEType("file.unknownext"))
}

func TestValidateFile_RejectsMissing(t *testing.T) {
	err := ValidateFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, ErrNotRegularFile)
}

func TestValidateFile_RejectsDirectory(t *testing.T) {
	err := ValidateFile(t.TempDir())
	require.ErrorIs(t, err, ErrNotRegularFile)
}
