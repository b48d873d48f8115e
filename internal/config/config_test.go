package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/policycheck/internal/analysis"
	"github.com/joshsymonds/policycheck/internal/catalog"
	"github.com/joshsymonds/policycheck/internal/compliance"
	"github.com/joshsymonds/policycheck/internal/recommend"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		check   func(t *testing.T, c *Config)
		name    string
		yaml    string
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid complete config",
			yaml: `catalog:
  paths:
    - ./data/controls.json
  s3_uri: s3://compliance/controls.json
  region: ap-south-1
  use_embedded: false

limits:
  max_file_size: 1048576
  allowed_extensions: [".txt", ".md"]
  min_text_length: 20

output:
  format: json
  max_gaps: 3
  max_strengths: 2
  max_recommendations: 4

payment:
  test_ids: ["PAY_1", "PAY_2"]

recommendations:
  priorities:
    CP-1: critical
  rules:
    - name: backups
      details: Test restores quarterly
      keywords: [backup]

narrative:
  enabled: true
  driver: static
  model: canned
  cache_dir: /tmp/policycheck-cache
  cache_ttl: 1h
  timeout: 30s
  driver_config:
    text: Looks fine.
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"./data/controls.json"}, c.Catalog.Paths)
				assert.Equal(t, "s3://compliance/controls.json", c.Catalog.S3URI)
				assert.False(t, c.Catalog.UseEmbedded)
				assert.Equal(t, int64(1048576), c.Limits.MaxFileSize)
				assert.Equal(t, []string{".txt", ".md"}, c.Limits.AllowedExtensions)
				assert.Equal(t, 20, c.Limits.MinTextLength)
				assert.Equal(t, "json", c.Output.Format)
				assert.Equal(t, analysis.OutputLimits{MaxGaps: 3, MaxStrengths: 2, MaxRecommendations: 4}, c.Output.OutputLimits)
				assert.Equal(t, []string{"PAY_1", "PAY_2"}, c.Payment.TestIDs)
				assert.Equal(t, "critical", c.Recommendations.Priorities["CP-1"])
				require.Len(t, c.Recommendations.Rules, 1)
				assert.Equal(t, "Test restores quarterly", c.Recommendations.Rules[0].Details)
				assert.True(t, c.Narrative.Enabled)
				assert.Equal(t, time.Hour, c.Narrative.CacheTTL)
				assert.Equal(t, 30*time.Second, c.Narrative.Timeout)
				assert.Equal(t, "Looks fine.", c.Narrative.DriverConfig["text"])
			},
		},
		{
			name: "partial config keeps defaults",
			yaml: `output:
  max_gaps: 7
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 7, c.Output.MaxGaps)
				assert.Equal(t, 5, c.Output.MaxStrengths)
				assert.True(t, c.Catalog.UseEmbedded)
				assert.Equal(t, analysis.DefaultMaxFileSize, c.Limits.MaxFileSize)
				assert.Equal(t, []string{"TEST_123"}, c.Payment.TestIDs)
				assert.False(t, c.Narrative.Enabled)
			},
		},
		{
			name:    "bad s3 uri",
			yaml:    "catalog:\n  s3_uri: https://bucket/key\n",
			wantErr: true,
			errMsg:  "catalog.s3_uri",
		},
		{
			name:    "unknown format",
			yaml:    "output:\n  format: pdf\n",
			wantErr: true,
			errMsg:  `output.format "pdf"`,
		},
		{
			name:    "negative limits",
			yaml:    "limits:\n  max_file_size: -1\noutput:\n  max_gaps: -2\n",
			wantErr: true,
			errMsg:  "must not be negative",
		},
		{
			name:    "bad extension",
			yaml:    "limits:\n  allowed_extensions: [txt]\n",
			wantErr: true,
			errMsg:  "must start with a dot",
		},
		{
			name:    "bad priority",
			yaml:    "recommendations:\n  priorities:\n    AC-1: urgent\n",
			wantErr: true,
			errMsg:  `invalid priority "urgent"`,
		},
		{
			name:    "rule without keywords",
			yaml:    "recommendations:\n  rules:\n    - details: Do it\n",
			wantErr: true,
			errMsg:  "at least one keyword is required",
		},
		{
			name:    "unknown narrative driver",
			yaml:    "narrative:\n  enabled: true\n  driver: gpt\n",
			wantErr: true,
			errMsg:  `narrative.driver "gpt"`,
		},
		{
			name:    "invalid yaml",
			yaml:    "output: [",
			wantErr: true,
			errMsg:  "parsing config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "policycheck.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			cfg, err := LoadConfig(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config path")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestCatalogSources(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Catalog.Paths = []string{"a.json", "b.yaml"}
	sources, err := cfg.CatalogSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "a.json", sources[0].Name())
	assert.Equal(t, "b.yaml", sources[1].Name())
	assert.Equal(t, "embedded", sources[2].Name())

	cfg.Catalog.UseEmbedded = false
	cfg.Catalog.Paths = nil
	sources, err = cfg.CatalogSources(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, len(catalog.DefaultPaths()))

	loaded := catalog.Load(ctx, nil, append([]catalog.Source{catalog.FileSource(filepath.Join(t.TempDir(), "none.json"))}, catalog.EmbeddedSource())...)
	assert.Equal(t, 17, loaded.Total())
}

func TestGenerator(t *testing.T) {
	cfg := Default()
	cfg.Recommendations.Priorities = map[string]string{"CP-1": "critical", "AC-1": "low"}
	cfg.Recommendations.Rules = []recommend.Rule{{Name: "backups", Details: "Test restores quarterly", Keywords: []string{"backup"}}}

	gen := cfg.Generator()
	assert.Equal(t, recommend.PriorityCritical, gen.PriorityFor("CP-1"))
	assert.Equal(t, recommend.PriorityLow, gen.PriorityFor("AC-1"))
	assert.Equal(t, recommend.PriorityCritical, gen.PriorityFor("IA-2"))

	recs := gen.Recommend([]compliance.Gap{{Standard: catalog.StandardNIST, ID: "CP-1", Name: "Backup and Recovery Planning"}})
	require.Len(t, recs, 1)
	assert.Equal(t, "Test restores quarterly", recs[0].Details)
}

func TestVerifier(t *testing.T) {
	ctx := context.Background()
	cfg := Default()

	ok, err := cfg.Verifier().Verify(ctx, "TEST_123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cfg.Verifier().Verify(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)

	cfg.Payment.Bypass = true
	assert.IsType(t, analysis.BypassVerifier{}, cfg.Verifier())
}

func TestNarrativeDriver(t *testing.T) {
	cfg := Default()
	d, err := cfg.NarrativeDriver()
	require.NoError(t, err)
	assert.Nil(t, d)

	cfg.Narrative.Enabled = true
	cfg.Narrative.Driver = "static"
	cfg.Narrative.Model = "canned"
	cfg.Narrative.DriverConfig = map[string]any{"text": "Looks fine."}

	d, err = cfg.NarrativeDriver()
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "canned", d.GetCapabilities().ModelName)

	n, err := d.Narrate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Looks fine.", n.Text)

	cfg.Narrative.Driver = "nope"
	_, err = cfg.NarrativeDriver()
	assert.Error(t, err)
}
