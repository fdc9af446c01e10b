// Command motmotd is the daemon entrypoint (A5): it parses the CLI
// surface spec.md §6 names as an external collaborator ("init --config
// <path>"), loads and validates the TOML configuration, and runs every
// configured HTTP/3 + WebTransport server until shutdown or reload.
//
// Grounded on the teacher's cmd/aetherd/main.go (signal wiring, daemon
// shape) and on caddyserver-caddy's cmd/cobra.go command-tree convention.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "motmotd",
		Short:         "motmotd serves HTTP/3 and WebTransport from a declarative TOML configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newInitCommand())
	return root
}

func newInitCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "load the config and run every configured server until shutdown or fatal error",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the TOML configuration file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
