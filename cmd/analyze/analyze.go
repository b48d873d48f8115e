// Package analyze implements the analyze command.
package analyze

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joshsymonds/policycheck/internal/analysis"
	"github.com/joshsymonds/policycheck/internal/app"
	"github.com/joshsymonds/policycheck/internal/report"
	"github.com/joshsymonds/policycheck/pkg/logger"
	"github.com/joshsymonds/policycheck/pkg/pathutil"
)

// Options represents analyze command options.
type Options struct {
	Format    string
	Output    string
	PaymentID string
	Premium   bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(global *app.Options) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "analyze <policy-file | ->",
		Short: "Analyze a security policy for compliance gaps",
		Long: `Analyze a security policy document against the control catalog.

The free report contains the compliance score, the top gaps and strengths,
a summary and the policy sections found. A premium report adds prioritized
recommendations, per-control details and, when enabled, an AI narrative.

Documents are read as plain UTF-8 text. Use "-" to read from stdin.`,
		Example: `  # Free report for a policy file
  policycheck analyze policy.txt

  # Premium report as JSON
  policycheck analyze policy.txt --premium --payment-id TEST_123 --format json

  # Read from stdin and write an HTML report
  cat policy.txt | policycheck analyze - --premium --payment-id TEST_123 --format html -o report.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Premium, "premium", false, "Produce a premium report with recommendations")
	cmd.Flags().StringVar(&opts.PaymentID, "payment-id", "", "Payment id that unlocks the premium report")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format ("+strings.Join(report.ListFormats(), ", ")+")")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}

func run(cmd *cobra.Command, global *app.Options, opts *Options, source string) error {
	ctx := cmd.Context()
	log := logger.GetGlobalLogger()

	cfg, err := global.LoadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Output != "" {
		path, err := pathutil.ValidateOutputPath(opts.Output)
		if err != nil {
			return fmt.Errorf("invalid output path: %w", err)
		}
		f, err := os.Create(path) // #nosec G304 - path is validated
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				log.Warn("failed to close output file", "error", closeErr)
			}
		}()
		out = f
	}
	format := app.ResolveFormat(opts.Format, cfg.Output.Format, out)

	text, err := readPolicy(cmd.InOrStdin(), source, cfg.Limits)
	if err != nil {
		return writeFailure(out, format, err)
	}

	svc, err := app.NewService(ctx, cfg, log)
	if err != nil {
		return err
	}

	rep, err := svc.Run(ctx, analysis.Request{
		Text:      text,
		Premium:   opts.Premium,
		PaymentID: opts.PaymentID,
	})
	if err != nil {
		return writeFailure(out, format, err)
	}

	return report.Render(out, format, rep, log)
}

func readPolicy(stdin io.Reader, source string, limits analysis.Limits) (string, error) {
	if source != "-" {
		return analysis.ReadPolicy(source, limits)
	}

	r := stdin
	if limits.MaxFileSize > 0 {
		r = io.LimitReader(stdin, limits.MaxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if limits.MaxFileSize > 0 && int64(len(data)) > limits.MaxFileSize {
		return "", &analysis.Error{
			Kind:    analysis.KindInvalidInput,
			Message: "policy input too large",
			Detail:  fmt.Sprintf("exceeds limit of %d bytes", limits.MaxFileSize),
		}
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// writeFailure emits the structured error document for machine-readable
// formats and returns err for the exit status.
func writeFailure(w io.Writer, format string, err error) error {
	var encErr error
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		encErr = enc.Encode(analysis.NewErrorReport(err))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		encErr = errors.Join(enc.Encode(analysis.NewErrorReport(err)), enc.Close())
	}
	if encErr != nil {
		logger.Warn("failed to write error report", "error", encErr)
	}
	return err
}
