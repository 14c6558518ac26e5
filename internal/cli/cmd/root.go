// Package cmd provides the Cobra CLI surface for the auroraview binary: a
// thin demonstration harness around the Instance API, not a product of its
// own (spec's Non-goals exclude a packaged browser UI).
package cmd

import (
	"fmt"
	"os"

	"github.com/auroraview/auroraview/internal/config"
	"github.com/auroraview/auroraview/internal/logging"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "auroraview",
	Short:         "Standalone host and diagnostic harness for the AuroraView runtime",
	SilenceErrors: true,
	SilenceUsage:  true,
	Long: `auroraview drives the embeddable WebView runtime outside of a DCC host
process: it resolves a RunMode, creates an Instance, and pumps it to
completion exactly as a DCC plugin embedding the same runtime would.

Use 'auroraview run' to load a URL or HTML file standalone, or
'auroraview run --headless' to exercise the IPC/tool-invocation surface
with no visible window.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		switch cmd.Name() {
		case "help", "completion", "version":
			return nil
		}
		if err := config.Init(); err != nil {
			return fmt.Errorf("initialize config: %w", err)
		}
		hd := config.Get()
		return logging.Init(hd.Logging.LogDir, hd.Logging.Level, hd.Logging.Format,
			hd.Logging.EnableFileLog, hd.Logging.MaxSizeMB, hd.Logging.MaxBackups,
			hd.Logging.MaxAgeDays, hd.Logging.Compress, false)
	},
}

// Execute runs the root command and exits the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetBuildInfo records version metadata injected via ldflags in main.go.
func SetBuildInfo(version, commit, date string) {
	buildVersion, buildCommit, buildDate = version, commit, date
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
