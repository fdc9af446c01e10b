package tlsprovider

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrGenerate_GeneratesWhenPathsAbsent(t *testing.T) {
	dir := t.TempDir()
	orig := GeneratedCertDir
	GeneratedCertDir = filepath.Join(dir, "generated")
	defer func() { GeneratedCertDir = orig }()

	cfg, err := LoadOrGenerate("example.internal", "", "", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"h3"}, cfg.NextProtos)
	require.Len(t, cfg.Certificates, 1)

	// Second call reuses the persisted pair rather than failing.
	cfg2, err := LoadOrGenerate("example.internal", "", "", nil)
	require.NoError(t, err)
	require.Len(t, cfg2.Certificates, 1)
}

func TestLoadOrGenerate_RejectsUnreadableCertPath(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadOrGenerate("x", filepath.Join(dir, "missing.cert"), filepath.Join(dir, "missing.key"), nil)
	require.ErrorIs(t, err, ErrCertUnreadable)
}
