package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loamlabs/loam/internal/adapters/outbound/tui"
	"github.com/loamlabs/loam/internal/application"
)

func newDiffCmd() *cobra.Command {
	var (
		jsonOutput bool
		exitCode   bool
	)

	cmd := &cobra.Command{
		Use:   "diff [path]",
		Short: "Show profile drift since the last saved run",
		Long:  "Re-analyze the repository without persisting anything and report what changed against the saved profile.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			env := settingsFromEnv()
			svc := newDiscoveryService(cmd, env.GetString("output_dir"))

			result, err := svc.Discover(cmd.Context(), application.Options{
				Root:   absPath,
				DryRun: true,
			})
			if err != nil {
				return fmt.Errorf("discovery failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, result.Diff); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderDiff(result.Diff))
			}

			if exitCode && len(result.Diff) > 0 {
				return fmt.Errorf("profile drifted: %d changes", len(result.Diff))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit non-zero when the profile drifted")
	return cmd
}
