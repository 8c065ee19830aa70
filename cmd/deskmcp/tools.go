package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools, their operations, and arguments",
		Args:  cobra.NoArgs,
		RunE:  runTools,
	}
}

func runTools(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	cyan := color.New(color.FgCyan)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tOPERATION\tREQUIRED\tOPTIONAL")
	for _, t := range a.dispatcher.Router().Tools() {
		for _, op := range t.Operations {
			var required, optional []string
			for _, f := range op.Fields {
				if f.Required {
					required = append(required, f.Name)
				} else {
					optional = append(optional, f.Name)
				}
			}
			name := op.Name
			if name == t.DefaultOp {
				name += " (default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cyan.Sprint(t.Name), name, list(required), list(optional))
		}
	}
	return w.Flush()
}

func list(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
