package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spachava753/deskmcp/tools"
)

func newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Run one tool call and print the result",
		Example: `  deskmcp call reminders '{"operation":"find","searchText":"milk"}'
  deskmcp call contacts '{"name":"Ada"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCall,
	}
}

func runCall(cmd *cobra.Command, args []string) error {
	callArgs := tools.Args{}
	if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
		if err := json.Unmarshal([]byte(args[1]), &callArgs); err != nil {
			return fmt.Errorf("arguments must be a JSON object: %w", err)
		}
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	resp := a.dispatcher.Handle(cmd.Context(), args[0], callArgs)
	if resp.IsError {
		color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), resp.Text)
		return &exitError{code: 1}
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
	return nil
}
