package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "deskmcp",
		Short: "MCP server for macOS Contacts, Notes, Messages, Reminders, and Calendar",
		Long: "deskmcp exposes the macOS personal-information apps as Model Context Protocol tools.\n" +
			"Run \"deskmcp serve\" from an MCP client configuration.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("env", "", "path to .env file (default: ./.env when present)")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("deskmcp version %s\n", version))

	root.AddCommand(newServeCmd())
	root.AddCommand(newToolsCmd())
	root.AddCommand(newCallCmd())
	return root
}

// exitError carries a process exit code whose message was already printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
