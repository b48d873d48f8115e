// Package main is the entry point for the policycheck CLI. policycheck scores
// cybersecurity policy documents against NIST 800-53, ISO 27001 and the DPDP
// Act 2023, and produces prioritized remediation recommendations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/policycheck/cmd/analyze"
	"github.com/joshsymonds/policycheck/cmd/catalog"
	"github.com/joshsymonds/policycheck/cmd/config"
	"github.com/joshsymonds/policycheck/cmd/recommend"
	"github.com/joshsymonds/policycheck/internal/app"
	"github.com/joshsymonds/policycheck/pkg/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &app.Options{}

	root := &cobra.Command{
		Use:   "policycheck",
		Short: "Score security policies against compliance standards",
		Long: `policycheck analyzes cybersecurity policy documents for compliance with
NIST 800-53, ISO 27001 and the DPDP Act 2023.

It reports a compliance score, the controls the policy evidences and the
gaps it leaves, and (for premium reports) prioritized recommendations.`,
		Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.SetupLogger(opts.Debug, opts.LogFormat)
		},
	}

	root.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "Log format (text or json)")
	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file")

	root.AddCommand(
		analyze.NewAnalyzeCommand(opts),
		recommend.NewRecommendCommand(opts),
		catalog.NewCatalogCommand(opts),
		config.NewConfigCommand(opts),
	)

	return root
}
