package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"makeroom/internal/avif"
	"makeroom/internal/deps"
	"makeroom/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [path]",
		Short: "Verify external tools, libvips, and directory access",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := ""
			if len(args) == 1 {
				root = args[0]
			}

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg, preflight.ModeConvert)
			results := preflight.RunAll(cfg, root, preflight.ModeConvert)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"Name", "Available", "Command", "Detail"},
				rows:    dependencyRows(statuses),
			}))
			fmt.Fprintln(out, renderStatusLine("libvips", statusInfo, avif.Version(), colorize))
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if err := preflight.RequireTools(statuses); err != nil {
				return err
			}
			return preflight.FirstFailure(results)
		},
	}
}

func dependencyRows(statuses []deps.Status) [][]string {
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Detail
		if detail == "" {
			detail = status.Description
		}
		name := status.Name
		if status.Optional {
			name += " (optional)"
		}
		rows = append(rows, []string{name, yesNo(status.Available), strings.TrimSpace(status.Command), detail})
	}
	return rows
}
