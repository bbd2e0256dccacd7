// Package main is the entry point for the adri CLI, a multi-dimensional
// data-quality assessment tool. It scores tabular data sources across
// validity, completeness, freshness, consistency and plausibility, and can
// validate a source against a declared industry/use-case template.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/adri-engine/adri/cmd/assess"
	"github.com/adri-engine/adri/cmd/templates"
	versioncmd "github.com/adri-engine/adri/cmd/version"
	"github.com/adri-engine/adri/pkg/logger"
)

var (
	debug     bool
	logFormat string
)

func main() {
	root := &cobra.Command{
		Use:   "adri",
		Short: "Multi-dimensional data quality assessment",
		Long: `adri scores tabular data sources across five quality dimensions
(validity, completeness, freshness, consistency, plausibility) and
validates them against versioned industry templates.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.SetupLogger(debug, logFormat)
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")

	root.AddCommand(
		assess.NewAssessCommand(),
		templates.NewTemplatesCommand(),
		versioncmd.NewVersionCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
