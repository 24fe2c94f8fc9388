package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loamlabs/loam/internal/adapters/outbound/compose"
	"github.com/loamlabs/loam/internal/adapters/outbound/configload"
	"github.com/loamlabs/loam/internal/adapters/outbound/gitinfo"
	"github.com/loamlabs/loam/internal/adapters/outbound/parsecache"
	"github.com/loamlabs/loam/internal/adapters/outbound/profilestore"
	"github.com/loamlabs/loam/internal/adapters/outbound/provider"
	"github.com/loamlabs/loam/internal/adapters/outbound/scanner"
	"github.com/loamlabs/loam/internal/adapters/outbound/zonedetect"
	"github.com/loamlabs/loam/internal/application"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "loam",
		Short:         "Learn how a brownfield codebase actually works",
		Long:          "Loam scans a multi-language repository, detects its zones, patterns, conventions, and architecture, and writes a mergeable profile that downstream tools can rely on.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDiscoverCmd())
	cmd.AddCommand(newZonesCmd())
	cmd.AddCommand(newDiffCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// settingsFromEnv reads tool-level overrides from LOAM_* environment
// variables, e.g. LOAM_OUTPUT_DIR and LOAM_PARALLELISM.
func settingsFromEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("loam")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("output_dir", ".loam")
	return v
}

func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "loam",
	})
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newDiscoveryService wires every adapter behind the application service.
func newDiscoveryService(cmd *cobra.Command, outputDir string) *application.DiscoveryService {
	return application.NewDiscoveryService(
		scanner.New(),
		zonedetect.New(),
		provider.NewRegistry(),
		configload.New(),
		profilestore.New(outputDir),
		compose.New(),
		gitinfo.New(),
		parsecache.New(outputDir),
		newLogger(cmd),
	)
}
