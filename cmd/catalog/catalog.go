// Package catalog implements the catalog command for inspecting control catalogs.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joshsymonds/policycheck/internal/app"
	"github.com/joshsymonds/policycheck/internal/catalog"
	"github.com/joshsymonds/policycheck/pkg/pathutil"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(global *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate control catalogs",
	}

	cmd.AddCommand(newListCommand(global), newValidateCommand())
	return cmd
}

func newListCommand(global *app.Options) *cobra.Command {
	var (
		format   string
		standard string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the controls in the active catalog",
		Example: `  policycheck catalog list
  policycheck catalog list --standard DPDP --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.LoadConfig()
			if err != nil {
				return err
			}
			cat, err := app.LoadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return list(cmd.OutOrStdout(), cat, standard, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVarP(&standard, "standard", "s", "", "Only list one standard (NIST, ISO, DPDP)")
	return cmd
}

func list(w io.Writer, cat *catalog.Catalog, standard, format string) error {
	filtered := cat
	if standard != "" {
		s, ok := parseStandard(standard)
		if !ok {
			return fmt.Errorf("unknown standard: %s", standard)
		}
		filtered = catalog.Empty()
		switch s {
		case catalog.StandardNIST:
			filtered.NIST = cat.Controls(s)
		case catalog.StandardISO:
			filtered.ISO = cat.Controls(s)
		case catalog.StandardDPDP:
			filtered.DPDP = cat.Controls(s)
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(filtered)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(filtered); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STANDARD\tID\tNAME\tKEYWORDS")
		for _, g := range filtered.Groups() {
			for _, c := range g.Controls {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.Standard, c.ID, c.Name, strings.Join(c.Keywords, ", "))
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\n%d controls\n", filtered.Total())
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func parseStandard(s string) (catalog.Standard, bool) {
	for _, std := range catalog.Standards() {
		if strings.EqualFold(string(std), s) {
			return std, true
		}
	}
	return "", false
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "validate <catalog-file>",
		Short:   "Validate a JSON or YAML control catalog",
		Example: `  policycheck catalog validate data/controls.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd.OutOrStdout(), args[0])
		},
	}
}

func validate(w io.Writer, path string) error {
	validPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}

	data, err := os.ReadFile(validPath) // #nosec G304 - path is validated
	if err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}

	cat, err := catalog.Decode(data)
	if err != nil {
		return fmt.Errorf("catalog is malformed: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return fmt.Errorf("catalog is invalid: %w", err)
	}

	fmt.Fprintf(w, "Catalog %s is valid\n", path)
	for _, g := range cat.Groups() {
		fmt.Fprintf(w, "   %-14s %d controls\n", g.Standard.DisplayName()+":", len(g.Controls))
	}
	return nil
}
