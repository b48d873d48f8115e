// Package recommend implements the recommend command.
package recommend

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joshsymonds/policycheck/internal/app"
	"github.com/joshsymonds/policycheck/internal/recommend"
)

// Options represents recommend command options.
type Options struct {
	Format string
	Limit  int
	Stdin  bool
}

// NewRecommendCommand creates the recommend command.
func NewRecommendCommand(global *app.Options) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "recommend [gap...]",
		Short: "Generate prioritized recommendations for compliance gaps",
		Long: `Generate prioritized remediation recommendations for gap strings of the
form "STANDARD ID: Name", as printed by the analyze command.

Gaps without a colon are accepted and get the default priority.`,
		Example: `  policycheck recommend "NIST AC-1: Access Control Policy and Procedures"

  # One gap per line on stdin
  policycheck analyze policy.txt --format json | jq -r '.gaps[]' | policycheck recommend --stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, global, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "Output format (text, json, yaml)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", recommend.DefaultLimit, "Maximum recommendations to show (0 for all)")
	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "Read gaps from stdin, one per line")

	return cmd
}

func run(cmd *cobra.Command, global *app.Options, opts *Options, args []string) error {
	cfg, err := global.LoadConfig()
	if err != nil {
		return err
	}

	gaps := args
	if opts.Stdin {
		lines, err := readLines(cmd.InOrStdin())
		if err != nil {
			return err
		}
		gaps = append(gaps, lines...)
	}
	if len(gaps) == 0 {
		return fmt.Errorf("no gaps given: pass gap strings as arguments or use --stdin")
	}

	recs := cfg.Generator().RecommendStrings(gaps)
	if opts.Limit > 0 {
		recs = recommend.Top(recs, opts.Limit)
	}

	return write(cmd.OutOrStdout(), opts.Format, recs)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return lines, nil
}

func write(w io.Writer, format string, recs []recommend.Recommendation) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for i, rec := range recs {
			if _, err := fmt.Fprintf(w, "%d. [%s] %s\n   %s\n", i+1, rec.Priority, rec.Recommendation, rec.Details); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
