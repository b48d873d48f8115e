// Package config implements the config command.
package config

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/policycheck/internal/app"
	"github.com/joshsymonds/policycheck/internal/config"
)

// healthCheckTimeout bounds the narrative driver probe.
const healthCheckTimeout = 30 * time.Second

// NewConfigCommand creates the config command.
func NewConfigCommand(global *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with policycheck configuration files",
	}
	cmd.AddCommand(newValidateCommand(global))
	return cmd
}

func newValidateCommand(global *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Example: `  policycheck config validate policycheck.yaml
  policycheck --config policycheck.yaml config validate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := global.ConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("a config file is required: pass it as an argument or with --config")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🔍 Validating configuration: %s\n\n", path)

			cfg, err := config.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("configuration is invalid: %w", err)
			}

			printValidationResults(out, cfg)
			if err := checkNarrativeDriver(cmd.Context(), out, cfg); err != nil {
				return err
			}
			fmt.Fprintln(out, "\n✅ Configuration is valid!")
			return nil
		},
	}
}

func printValidationResults(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "📚 Catalog:")
	if cfg.Catalog.S3URI != "" {
		fmt.Fprintf(w, "   S3: %s\n", cfg.Catalog.S3URI)
	}
	if len(cfg.Catalog.Paths) > 0 {
		fmt.Fprintf(w, "   Paths: %s\n", strings.Join(cfg.Catalog.Paths, ", "))
	} else {
		fmt.Fprintln(w, "   Paths: default search paths")
	}
	fmt.Fprintf(w, "   Embedded fallback: %t\n", cfg.Catalog.UseEmbedded)

	fmt.Fprintln(w, "\n📄 Limits:")
	fmt.Fprintf(w, "   Max file size: %d bytes\n", cfg.Limits.MaxFileSize)
	fmt.Fprintf(w, "   Extensions: %s\n", strings.Join(cfg.Limits.AllowedExtensions, ", "))

	fmt.Fprintln(w, "\n📊 Output:")
	format := cfg.Output.Format
	if format == "" {
		format = "auto"
	}
	fmt.Fprintf(w, "   Format: %s\n", format)
	fmt.Fprintf(w, "   Gaps/Strengths/Recommendations: %d/%d/%d\n",
		cfg.Output.MaxGaps, cfg.Output.MaxStrengths, cfg.Output.MaxRecommendations)

	if len(cfg.Recommendations.Priorities) > 0 {
		fmt.Fprintln(w, "\n⚖️  Priority Overrides:")
		ids := make([]string, 0, len(cfg.Recommendations.Priorities))
		for id := range cfg.Recommendations.Priorities {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(w, "   %s → %s\n", id, cfg.Recommendations.Priorities[id])
		}
	}
	if n := len(cfg.Recommendations.Rules); n > 0 {
		fmt.Fprintf(w, "   Custom rules: %d\n", n)
	}

	fmt.Fprintln(w, "\n🤖 Narrative:")
	if cfg.Narrative.Enabled {
		fmt.Fprintf(w, "   Driver: %s\n", cfg.Narrative.Driver)
		if cfg.Narrative.CacheDir != "" {
			fmt.Fprintf(w, "   Cache: %s (ttl %s)\n", cfg.Narrative.CacheDir, cfg.Narrative.CacheTTL)
		}
	} else {
		fmt.Fprintln(w, "   Disabled")
	}
}

func checkNarrativeDriver(ctx context.Context, w io.Writer, cfg *config.Config) error {
	driver, err := cfg.NarrativeDriver()
	if err != nil {
		return fmt.Errorf("failed to get LLM driver: %w", err)
	}
	if driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := driver.HealthCheck(ctx); err != nil {
		fmt.Fprintf(w, "   ❌ Health check failed: %v\n", err)
		return fmt.Errorf("narrative driver %s is not healthy: %w", cfg.Narrative.Driver, err)
	}
	fmt.Fprintln(w, "   ✅ Health check passed")
	return nil
}
