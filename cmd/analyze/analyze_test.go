package analyze

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/policycheck/internal/analysis"
	"github.com/joshsymonds/policycheck/internal/app"
)

const policy = "Access Control: all access is role based with least privilege.\n\n" +
	"Encryption: stored records use AES-256.\n"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewAnalyzeCommand(&app.Options{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte(policy), 0o600))

	out, err := execute(t, "", path, "--format", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, true, doc["success"])
	assert.InDelta(t, 17, doc["score"], 0)
	assert.NotContains(t, doc, "recommendations")
}

func TestAnalyzeStdinPremium(t *testing.T) {
	out, err := execute(t, policy, "-", "--premium", "--payment-id", "TEST_123", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "COMPLIANCE ANALYSIS SUMMARY")
	assert.Contains(t, out, "Recommendations:")
	assert.Contains(t, out, "[Critical]")
}

func TestAnalyzePaymentRequired(t *testing.T) {
	out, err := execute(t, policy, "-", "--premium", "--format", "json")
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrPaymentRequired)

	var doc analysis.ErrorReport
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.False(t, doc.Success)
	assert.Equal(t, analysis.KindPaymentRequired, doc.ErrorType)
	assert.Equal(t, 0, doc.Score)
}

func TestAnalyzeInvalidInput(t *testing.T) {
	out, err := execute(t, "short", "-", "--format", "yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrInvalidInput)
	assert.Contains(t, out, "error_type: InvalidInput")
	assert.Contains(t, out, "success: false")
}

func TestAnalyzeOutputFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "report.html")

	out, err := execute(t, policy, "-", "--format", "html", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
}

func TestAnalyzeRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.exe")
	require.NoError(t, os.WriteFile(path, []byte(policy), 0o600))

	_, err := execute(t, "", path, "--format", "text")
	assert.ErrorIs(t, err, analysis.ErrInvalidInput)
}

func TestAnalyzeRequiresArgument(t *testing.T) {
	_, err := execute(t, "")
	assert.Error(t, err)
}
