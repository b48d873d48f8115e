// Package app wires configuration into the analysis service for the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/joshsymonds/policycheck/internal/analysis"
	"github.com/joshsymonds/policycheck/internal/catalog"
	"github.com/joshsymonds/policycheck/internal/config"
	"github.com/joshsymonds/policycheck/internal/narrative"
	"github.com/joshsymonds/policycheck/pkg/logger"
)

// Options holds the global command-line flags.
type Options struct {
	ConfigPath string
	LogFormat  string
	Debug      bool
}

// LoadConfig loads the configuration file, or the defaults when none is set.
func (o *Options) LoadConfig() (*config.Config, error) {
	if o == nil || o.ConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debug("Loaded configuration", "config", o.ConfigPath)
	return cfg, nil
}

// catalogs is shared by every command in the process, so a source list is
// read at most once.
var catalogs = catalog.NewLoader(nil)

// LoadCatalog loads the control catalog from the configured sources.
func LoadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	sources, err := cfg.CatalogSources(ctx)
	if err != nil {
		return nil, err
	}
	return catalogs.Get(ctx, sources...), nil
}

// NewService builds the analysis service described by cfg. The narrative
// decorator is attached only when narration is enabled.
func NewService(ctx context.Context, cfg *config.Config, log logger.Logger) (*analysis.Service, error) {
	cat, err := LoadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded control catalog", "controls", cat.Total())

	opts := []analysis.Option{
		analysis.WithLogger(log),
		analysis.WithGenerator(cfg.Generator()),
		analysis.WithVerifier(cfg.Verifier()),
		analysis.WithLimits(cfg.Limits),
		analysis.WithOutputLimits(cfg.Output.OutputLimits),
	}

	decorator, err := NewDecorator(cfg, log)
	if err != nil {
		return nil, err
	}
	if decorator != nil {
		opts = append(opts, analysis.WithNarrator(decorator))
	}

	return analysis.NewService(cat, opts...), nil
}

// NewDecorator builds the narrative decorator, or nil when narration is off.
func NewDecorator(cfg *config.Config, log logger.Logger) (*narrative.Decorator, error) {
	driver, err := cfg.NarrativeDriver()
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM driver: %w", err)
	}
	if driver == nil {
		return nil, nil
	}

	opts := []narrative.DecoratorOption{
		narrative.WithLogger(log),
		narrative.WithTimeout(cfg.Narrative.Timeout),
		narrative.WithFreeTier(cfg.Narrative.FreeTier),
		narrative.WithModel(cfg.Narrative.Model),
	}
	if cfg.Narrative.CacheDir != "" {
		fc, err := narrative.NewFileCache(cfg.Narrative.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		opts = append(opts, narrative.WithCache(fc, cfg.Narrative.CacheTTL))
		log.Debug("Narrative cache enabled", "cache_dir", cfg.Narrative.CacheDir)
	}

	return narrative.NewDecorator(driver, opts...), nil
}

// ResolveFormat picks the report format: an explicit flag wins, then the
// configured format, then pretty for terminals and text otherwise.
func ResolveFormat(flag, configured string, w io.Writer) string {
	switch {
	case flag != "":
		return flag
	case configured != "":
		return configured
	case IsTerminal(w):
		return "pretty"
	default:
		return "text"
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}
