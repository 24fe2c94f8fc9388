package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loamlabs/loam/internal/adapters/outbound/tui"
	"github.com/loamlabs/loam/internal/application"
)

func newDiscoverCmd() *cobra.Command {
	var (
		zone       string
		phase      string
		listZones  bool
		update     bool
		showDiff   bool
		jsonOutput bool
		dryRun     bool
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "discover [path]",
		Short: "Discover zones, patterns, and conventions",
		Long:  "Analyze a repository and write its profile to the output directory. Human-curated profile fields survive re-runs untouched.",
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
			if outputDir == "" {
				outputDir = env.GetString("output_dir")
			}
			svc := newDiscoveryService(cmd, outputDir)

			if listZones {
				zones, err := svc.Zones(absPath)
				if err != nil {
					return err
				}
				if jsonOutput {
					return renderJSON(cmd, zones)
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderZones(zones))
				return nil
			}

			result, err := svc.Discover(cmd.Context(), application.Options{
				Root:   absPath,
				Zone:   zone,
				Phase:  phase,
				Update: update,
				DryRun: dryRun,
			})
			if err != nil {
				return fmt.Errorf("discovery failed: %w", err)
			}

			switch {
			case jsonOutput:
				return renderJSON(cmd, result.Profile)
			case showDiff:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderDiff(result.Diff))
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderProfile(result.Profile))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&zone, "zone", "", "Analyze a single zone by name")
	cmd.Flags().StringVar(&phase, "phase", "", "Run a single analysis phase")
	cmd.Flags().BoolVar(&listZones, "list-zones", false, "List detected zones without analyzing")
	cmd.Flags().BoolVar(&update, "update", false, "Refresh an existing profile; fails when none exists")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show changes against the prior profile instead of the summary")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Analyze without writing the profile")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default .loam, or LOAM_OUTPUT_DIR)")

	return cmd
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
