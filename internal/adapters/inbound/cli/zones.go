package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loamlabs/loam/internal/adapters/outbound/tui"
)

func newZonesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "zones [path]",
		Short: "List detected zones",
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

			zones, err := svc.Zones(absPath)
			if err != nil {
				return err
			}
			if jsonOutput {
				return renderJSON(cmd, zones)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderZones(zones))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
