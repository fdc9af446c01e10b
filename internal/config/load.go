package config

import (
	"fmt"
	"sync/atomic"

	"github.com/BurntSushi/toml"
)

// Load decodes the TOML document at path into an AppConfig and validates
// it. This is the one place the core touches a config file directly;
// spec.md §1 names the richer TOML-schema-deserialization work (full
// schema docs, CLI wiring) as an external collaborator, but a runnable
// daemon still needs a concrete decode path, so it lives here rather than
// being left unimplemented.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		// Non-fatal: unknown keys are tolerated for forward compatibility.
		// An unknown action "type" value is not: Action.UnmarshalTOML
		// rejects it and the decode above fails.
		_ = undec
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// generationCounter assigns monotonically increasing Generation IDs
// across reloads within one process.
var generationCounter atomic.Uint64

// NewGeneration wraps a validated AppConfig in the next Generation ID.
func NewGeneration(cfg *AppConfig) *Generation {
	return &Generation{
		ID:     generationCounter.Add(1),
		Config: cfg,
	}
}
