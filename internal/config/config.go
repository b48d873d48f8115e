// Package config provides configuration loading and validation for policycheck.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joshsymonds/policycheck/internal/analysis"
	"github.com/joshsymonds/policycheck/internal/catalog"
	"github.com/joshsymonds/policycheck/internal/narrative"
	"github.com/joshsymonds/policycheck/internal/recommend"
	"github.com/joshsymonds/policycheck/internal/report"
	"github.com/joshsymonds/policycheck/pkg/pathutil"
)

// Config represents the complete policycheck configuration.
type Config struct {
	Recommendations RecommendationConfig `yaml:"recommendations,omitempty"`
	Narrative       NarrativeConfig      `yaml:"narrative,omitempty"`
	Catalog         CatalogConfig        `yaml:"catalog"`
	Output          OutputConfig         `yaml:"output"`
	Payment         PaymentConfig        `yaml:"payment,omitempty"`
	Limits          analysis.Limits      `yaml:"limits"`
}

// CatalogConfig selects where the control catalog is loaded from.
type CatalogConfig struct {
	S3URI       string   `yaml:"s3_uri,omitempty"`
	Region      string   `yaml:"region,omitempty"`
	Paths       []string `yaml:"paths,omitempty"` // Empty means the default search paths
	UseEmbedded bool     `yaml:"use_embedded"`
}

// OutputConfig controls report size and rendering.
type OutputConfig struct {
	Format                string `yaml:"format,omitempty"` // Empty means auto-detect
	analysis.OutputLimits `yaml:",inline"`
}

// PaymentConfig controls the premium tier gate.
type PaymentConfig struct {
	TestIDs []string `yaml:"test_ids,omitempty"`
	Bypass  bool     `yaml:"bypass,omitempty"`
}

// RecommendationConfig customizes priorities and detail rules.
type RecommendationConfig struct {
	Priorities map[string]string `yaml:"priorities,omitempty"`
	Rules      []recommend.Rule  `yaml:"rules,omitempty"`
}

// NarrativeConfig controls the optional LLM narrative.
type NarrativeConfig struct {
	DriverConfig map[string]any `yaml:"driver_config,omitempty"`
	Driver       string         `yaml:"driver,omitempty"`
	Model        string         `yaml:"model,omitempty"`
	CacheDir     string         `yaml:"cache_dir,omitempty"`
	CacheTTL     time.Duration  `yaml:"cache_ttl,omitempty"`
	Timeout      time.Duration  `yaml:"timeout,omitempty"`
	Enabled      bool           `yaml:"enabled"`
	FreeTier     bool           `yaml:"free_tier,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{UseEmbedded: true},
		Limits:  analysis.DefaultLimits(),
		Output:  OutputConfig{OutputLimits: analysis.DefaultOutputLimits()},
		Payment: PaymentConfig{TestIDs: []string{"TEST_123"}},
		Narrative: NarrativeConfig{
			Driver:   "claude-cli",
			CacheTTL: narrative.DefaultCacheTTL,
			Timeout:  narrative.DefaultTimeout,
		},
	}
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (*Config, error) {
	validPath, err := pathutil.ValidateConfigPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := os.ReadFile(validPath) // #nosec G304 - path is validated
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate ensures the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Catalog.S3URI != "" {
		if _, _, err := catalog.ParseS3URI(c.Catalog.S3URI); err != nil {
			errs = append(errs, fmt.Errorf("catalog.s3_uri: %w", err))
		}
	}

	if c.Limits.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("limits.max_file_size must not be negative"))
	}
	if c.Limits.MinTextLength < 0 {
		errs = append(errs, fmt.Errorf("limits.min_text_length must not be negative"))
	}
	for _, ext := range c.Limits.AllowedExtensions {
		if len(ext) < 2 || ext[0] != '.' {
			errs = append(errs, fmt.Errorf("limits.allowed_extensions: %q must start with a dot", ext))
		}
	}

	if c.Output.MaxGaps < 0 || c.Output.MaxStrengths < 0 || c.Output.MaxRecommendations < 0 {
		errs = append(errs, fmt.Errorf("output limits must not be negative"))
	}
	if c.Output.Format != "" && !slices.Contains(report.ListFormats(), c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %v", c.Output.Format, report.ListFormats()))
	}

	for id, p := range c.Recommendations.Priorities {
		if _, ok := recommend.ParsePriority(p); !ok {
			errs = append(errs, fmt.Errorf("recommendations.priorities[%s]: invalid priority %q", id, p))
		}
	}
	for i, rule := range c.Recommendations.Rules {
		if rule.Details == "" {
			errs = append(errs, fmt.Errorf("recommendations.rules[%d]: details is required", i))
		}
		if len(rule.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("recommendations.rules[%d]: at least one keyword is required", i))
		}
	}

	if c.Narrative.Enabled {
		if !slices.Contains(narrative.DefaultRegistry.Names(), c.Narrative.Driver) {
			errs = append(errs, fmt.Errorf("narrative.driver %q is not one of %v", c.Narrative.Driver, narrative.DefaultRegistry.Names()))
		}
		if c.Narrative.CacheTTL < 0 || c.Narrative.Timeout < 0 {
			errs = append(errs, fmt.Errorf("narrative durations must not be negative"))
		}
	}

	return errors.Join(errs...)
}

// CatalogSources builds the ordered catalog sources: S3 first when
// configured, then files, then the embedded catalog when enabled.
func (c *Config) CatalogSources(ctx context.Context) ([]catalog.Source, error) {
	var sources []catalog.Source

	if c.Catalog.S3URI != "" {
		s3Source, err := catalog.NewS3SourceFromEnv(ctx, c.Catalog.S3URI, c.Catalog.Region)
		if err != nil {
			return nil, fmt.Errorf("configuring S3 catalog: %w", err)
		}
		sources = append(sources, s3Source)
	}

	if len(c.Catalog.Paths) == 0 {
		sources = append(sources, catalog.DefaultSources()...)
	} else {
		for _, p := range c.Catalog.Paths {
			sources = append(sources, catalog.FileSource(p))
		}
	}

	if c.Catalog.UseEmbedded {
		sources = append(sources, catalog.EmbeddedSource())
	}

	return sources, nil
}

// Generator builds the recommendation generator with configured overrides.
func (c *Config) Generator() *recommend.Generator {
	var opts []recommend.Option

	if len(c.Recommendations.Priorities) > 0 {
		overrides := make(map[string]recommend.Priority, len(c.Recommendations.Priorities))
		for id, p := range c.Recommendations.Priorities {
			if priority, ok := recommend.ParsePriority(p); ok {
				overrides[id] = priority
			}
		}
		opts = append(opts, recommend.WithPriorityOverrides(overrides))
	}

	if len(c.Recommendations.Rules) > 0 {
		opts = append(opts, recommend.WithLeadingRules(c.Recommendations.Rules))
	}

	return recommend.NewGenerator(opts...)
}

// Verifier builds the payment verifier.
func (c *Config) Verifier() analysis.PaymentVerifier {
	if c.Payment.Bypass {
		return analysis.BypassVerifier{}
	}
	return analysis.NewStaticVerifier(c.Payment.TestIDs...)
}

// NarrativeDriver builds and configures the narrative driver, or returns nil
// when narration is disabled.
func (c *Config) NarrativeDriver() (narrative.Driver, error) {
	if !c.Narrative.Enabled {
		return nil, nil
	}

	driver, err := narrative.DefaultRegistry.Get(c.Narrative.Driver)
	if err != nil {
		return nil, err
	}

	driverConfig := make(map[string]any, len(c.Narrative.DriverConfig)+1)
	for k, v := range c.Narrative.DriverConfig {
		driverConfig[k] = v
	}
	if c.Narrative.Model != "" {
		driverConfig["model"] = c.Narrative.Model
	}
	if err := driver.Configure(driverConfig); err != nil {
		return nil, fmt.Errorf("configuring %s driver: %w", c.Narrative.Driver, err)
	}

	return driver, nil
}
