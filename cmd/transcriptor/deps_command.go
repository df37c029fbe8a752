package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"transcriptor/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg.YtDlp.Binary))
			headers := []string{"Dependency", "Required", "Status", "Location"}
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "available"
				location := status.Path
				if !status.Available {
					state = "missing"
					location = status.Detail
				}
				rows = append(rows, []string{status.Name, yesNo(!status.Optional), state, location})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, nil))

			missing := deps.Missing(statuses)
			if len(missing) == 0 {
				fmt.Fprintln(out, "All required dependencies are available")
				return nil
			}
			names := make([]string, 0, len(missing))
			for _, status := range missing {
				names = append(names, status.Name)
			}
			fmt.Fprintln(out, "The yt-dlp fallback is disabled until missing tools are installed.")
			return fmt.Errorf("required dependencies missing: %s", strings.Join(names, ", "))
		},
	}
}
