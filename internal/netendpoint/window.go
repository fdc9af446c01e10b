package netendpoint

import (
	"fmt"
	"os"
	"strconv"
)

// WindowConfig holds the QUIC flow-control windows Build applies to one
// listener.
type WindowConfig struct {
	Profile                        string
	InitialStreamReceiveWindow     uint64
	InitialConnectionReceiveWindow uint64
	MaxStreamReceiveWindow         uint64
	MaxConnectionReceiveWindow     uint64
	OverrideApplied                bool
}

// resolveWindowConfig picks a window profile from the one thing a
// ServerSpec actually tells C2 about its traffic shape: whether
// WebTransport is enabled. A WebTransport session's streams and
// datagrams live for the life of the session and want a much larger
// working set than a single HTTP/3 request/response exchange, so the
// two get different defaults rather than sharing one.
//
// Env overrides (apply to either profile, for operators tuning one
// deployment without a config schema change):
//   - MOTMOT_INITIAL_STREAM_RECV_WINDOW
//   - MOTMOT_INITIAL_CONN_RECV_WINDOW
//   - MOTMOT_MAX_STREAM_RECV_WINDOW
//   - MOTMOT_MAX_CONN_RECV_WINDOW
func resolveWindowConfig(webTransport bool) (WindowConfig, error) {
	cfg := WindowConfig{}
	if webTransport {
		cfg.Profile = "webtransport"
		cfg.InitialStreamReceiveWindow = 4 * 1024 * 1024
		cfg.InitialConnectionReceiveWindow = 8 * 1024 * 1024
		cfg.MaxStreamReceiveWindow = 32 * 1024 * 1024
		cfg.MaxConnectionReceiveWindow = 48 * 1024 * 1024
	} else {
		cfg.Profile = "http3"
		cfg.InitialStreamReceiveWindow = 2 * 1024 * 1024
		cfg.InitialConnectionReceiveWindow = 3 * 1024 * 1024
		cfg.MaxStreamReceiveWindow = 4 * 1024 * 1024
		cfg.MaxConnectionReceiveWindow = 8 * 1024 * 1024
	}

	var err error
	if cfg.InitialStreamReceiveWindow, err = parseWindowOverride("MOTMOT_INITIAL_STREAM_RECV_WINDOW", cfg.InitialStreamReceiveWindow); err != nil {
		return cfg, err
	}
	if cfg.InitialConnectionReceiveWindow, err = parseWindowOverride("MOTMOT_INITIAL_CONN_RECV_WINDOW", cfg.InitialConnectionReceiveWindow); err != nil {
		return cfg, err
	}
	if cfg.MaxStreamReceiveWindow, err = parseWindowOverride("MOTMOT_MAX_STREAM_RECV_WINDOW", cfg.MaxStreamReceiveWindow); err != nil {
		return cfg, err
	}
	if cfg.MaxConnectionReceiveWindow, err = parseWindowOverride("MOTMOT_MAX_CONN_RECV_WINDOW", cfg.MaxConnectionReceiveWindow); err != nil {
		return cfg, err
	}

	cfg.OverrideApplied = os.Getenv("MOTMOT_INITIAL_STREAM_RECV_WINDOW") != "" ||
		os.Getenv("MOTMOT_INITIAL_CONN_RECV_WINDOW") != "" ||
		os.Getenv("MOTMOT_MAX_STREAM_RECV_WINDOW") != "" ||
		os.Getenv("MOTMOT_MAX_CONN_RECV_WINDOW") != ""

	if cfg.InitialStreamReceiveWindow > cfg.MaxStreamReceiveWindow {
		return cfg, fmt.Errorf("netendpoint: initial stream window > max stream window")
	}
	if cfg.InitialConnectionReceiveWindow > cfg.MaxConnectionReceiveWindow {
		return cfg, fmt.Errorf("netendpoint: initial connection window > max connection window")
	}

	return cfg, nil
}

func parseWindowOverride(name string, fallback uint64) (uint64, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse failed: %w", name, err)
	}
	if parsed < 64*1024 {
		return 0, fmt.Errorf("%s too small: %d", name, parsed)
	}
	if parsed > 256*1024*1024 {
		return 0, fmt.Errorf("%s too large: %d", name, parsed)
	}
	return parsed, nil
}
