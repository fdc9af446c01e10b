package netendpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveIPv6_RejectsIPv4Literal(t *testing.T) {
	_, err := resolveIPv6(context.Background(), "192.0.2.10")
	require.ErrorIs(t, err, ErrNoIPv6)
}

func TestResolveIPv6_AcceptsIPv6Literal(t *testing.T) {
	ip, err := resolveIPv6(context.Background(), "::1")
	require.NoError(t, err)
	require.Equal(t, "::1", ip.String())
}

func TestResolveIPv6_AcceptsUnspecified(t *testing.T) {
	ip, err := resolveIPv6(context.Background(), "::")
	require.NoError(t, err)
	require.True(t, ip.IsUnspecified())
}

func TestResolveWindowConfig_Profiles(t *testing.T) {
	for _, webTransport := range []bool{false, true} {
		cfg, err := resolveWindowConfig(webTransport)
		require.NoError(t, err)
		require.LessOrEqual(t, cfg.InitialStreamReceiveWindow, cfg.MaxStreamReceiveWindow)
		require.LessOrEqual(t, cfg.InitialConnectionReceiveWindow, cfg.MaxConnectionReceiveWindow)
	}
}

func TestResolveWindowConfig_WebTransportWidensTheWindow(t *testing.T) {
	http3Cfg, err := resolveWindowConfig(false)
	require.NoError(t, err)
	wtCfg, err := resolveWindowConfig(true)
	require.NoError(t, err)
	require.Greater(t, wtCfg.MaxConnectionReceiveWindow, http3Cfg.MaxConnectionReceiveWindow)
}

func TestResolveWindowConfig_EnvOverride(t *testing.T) {
	t.Setenv("MOTMOT_INITIAL_STREAM_RECV_WINDOW", "131072")
	cfg, err := resolveWindowConfig(false)
	require.NoError(t, err)
	require.Equal(t, uint64(131072), cfg.InitialStreamReceiveWindow)
	require.True(t, cfg.OverrideApplied)
}
