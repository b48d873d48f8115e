package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/joshsymonds/policycheck/internal/catalog"
	"github.com/joshsymonds/policycheck/internal/compliance"
	"github.com/joshsymonds/policycheck/internal/recommend"
	"github.com/joshsymonds/policycheck/pkg/logger"
)

func gap(std catalog.Standard, id, name string) compliance.Gap {
	return compliance.Gap{Standard: std, ID: id, Name: name}
}

func TestSummarize(t *testing.T) {
	result := compliance.Result{
		Score: 50,
		Strengths: []compliance.Gap{
			gap(catalog.StandardNIST, "AC-1", "Access Control Policy and Procedures"),
		},
		Gaps: []compliance.Gap{
			gap(catalog.StandardDPDP, "DPDP-1", "Consent Management"),
		},
	}

	want := `
COMPLIANCE ANALYSIS SUMMARY
===========================

Overall Compliance Score: 50%

Strengths (1 controls found):
- NIST AC-1: Access Control Policy and Procedures

Critical Gaps (1 controls missing):
- DPDP DPDP-1: Consent Management

Standards Evaluated:
- NIST 800-53
- ISO 27001
- DPDP Act 2023
`
	assert.Equal(t, want, Summarize(result))
}

func TestSummarizeLimitsLists(t *testing.T) {
	var gaps []compliance.Gap
	for i := range 8 {
		gaps = append(gaps, gap(catalog.StandardISO, fmt.Sprintf("A.%d", i), "Control"))
	}
	out := Summarize(compliance.Result{Gaps: gaps})

	assert.Contains(t, out, "Critical Gaps (8 controls missing):")
	assert.Contains(t, out, "Strengths (0 controls found):")
	assert.Contains(t, out, "ISO A.4: Control")
	assert.NotContains(t, out, "ISO A.5: Control")
	gapsSection, _, ok := strings.Cut(out, "Standards Evaluated:")
	require.True(t, ok)
	assert.Equal(t, 5, strings.Count(gapsSection, "- ISO A."))
}

func TestSummarizeEmptyResult(t *testing.T) {
	out := Summarize(compliance.Result{})
	assert.Contains(t, out, "Overall Compliance Score: 0%")
	assert.Contains(t, out, "Strengths (0 controls found):\n\n\nCritical Gaps (0 controls missing):")
}

func sampleReport() *Report {
	return &Report{
		ID:          "8c3a9a54-0d0f-4c55-9bfa-0f0b4f1c8e21",
		GeneratedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Success:     true,
		Premium:     true,
		Score:       33,
		Gaps: []compliance.Gap{
			gap(catalog.StandardNIST, "AC-1", "Access Control Policy and Procedures"),
			gap(catalog.StandardISO, "A.9.1.1", "Access Control Policy"),
		},
		Strengths: []compliance.Gap{
			gap(catalog.StandardDPDP, "DPDP-1", "Consent Management"),
		},
		TotalControls:      3,
		TotalGaps:          2,
		TotalStrengths:     1,
		Summary:            Summarize(compliance.Result{Score: 33}),
		SectionsFound:      []string{"purpose", "scope"},
		StandardsEvaluated: StandardsEvaluated(),
		Recommendations: []recommend.Recommendation{{
			Control:        "NIST AC-1: Access Control Policy and Procedures",
			Priority:       recommend.PriorityCritical,
			Recommendation: "Implement Access Control Policy and Procedures",
			Details:        "Establish role-based access control (RBAC) with least privilege principles",
		}},
		ComplianceDetails: &ComplianceDetails{
			NIST: []compliance.ControlResult{{ControlID: "AC-1", Name: "Access Control Policy and Procedures", Status: compliance.StatusMissing}},
			ISO:  []compliance.ControlResult{{ControlID: "A.9.1.1", Name: "Access Control Policy", Status: compliance.StatusMissing}},
			DPDP: []compliance.ControlResult{{ControlID: "DPDP-1", Name: "Consent Management", Status: compliance.StatusPresent, MatchedKeyword: "consent"}},
		},
		AIAnalysis: "Prioritize <access control> first.",
	}
}

func TestListFormats(t *testing.T) {
	assert.Equal(t, []string{"html", "json", "pretty", "text", "yaml"}, ListFormats())
}

func TestGetFormatUnknown(t *testing.T) {
	_, err := GetFormat("pdf", logger.NewMockLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report format: pdf")
}

func TestRegisterFormatPanics(t *testing.T) {
	assert.Panics(t, func() {
		RegisterFormat("json", func(_ logger.Logger) (Format, error) { return jsonFormat{}, nil })
	})
	assert.Panics(t, func() {
		RegisterFormat("nil-factory", nil)
	})
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "json", sampleReport(), logger.NewMockLogger()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, true, doc["success"])
	assert.InDelta(t, 33, doc["score"], 0)
	assert.Equal(t, []any{
		"NIST AC-1: Access Control Policy and Procedures",
		"ISO A.9.1.1: Access Control Policy",
	}, doc["gaps"])
	assert.Contains(t, doc, "compliance_details")
	assert.Contains(t, doc, "recommendations")
	assert.Contains(t, doc, "ai_analysis")

	var back Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sampleReport().Gaps, back.Gaps)
}

func TestJSONFormatOmitsPremiumFields(t *testing.T) {
	r := sampleReport()
	r.Premium = false
	r.Recommendations = nil
	r.ComplianceDetails = nil
	r.AIAnalysis = ""

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "json", r, nil))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.NotContains(t, doc, "recommendations")
	assert.NotContains(t, doc, "compliance_details")
	assert.NotContains(t, doc, "ai_analysis")
}

func TestYAMLFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "yaml", sampleReport(), nil))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 33, doc["score"])
	assert.Equal(t, "DPDP DPDP-1: Consent Management", doc["strengths"].([]any)[0])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "text", sampleReport(), nil))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "\nCOMPLIANCE ANALYSIS SUMMARY"))
	assert.Contains(t, out, "Sections Found: purpose, scope")
	assert.Contains(t, out, "1. [Critical] Implement Access Control Policy and Procedures")
	assert.Contains(t, out, "AI Analysis:\nPrioritize <access control> first.")
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "pretty", sampleReport(), nil))
	out := buf.String()

	assert.Contains(t, out, "Policy Compliance Report")
	assert.Contains(t, out, "33%")
	assert.Contains(t, out, "NIST AC-1: Access Control Policy and Procedures")
	assert.Contains(t, out, "Implement Access Control Policy and Procedures")
	assert.Contains(t, out, "NIST 800-53, ISO 27001, DPDP Act 2023")
}

func TestHTMLFormat(t *testing.T) {
	log := logger.NewMockLogger()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "html", sampleReport(), log))
	out := buf.String()

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `class="score poor"`)
	assert.Contains(t, out, "NIST AC-1: Access Control Policy and Procedures")
	assert.Contains(t, out, "Prioritize &lt;access control&gt; first.")
	assert.Contains(t, out, `<td class="present">Present</td>`)
	assert.Contains(t, out, "2026-10-19 12:00:00 UTC")
	assert.True(t, log.HasMessage("DEBUG", "Rendering HTML report"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestRenderWrapsWriteErrors(t *testing.T) {
	err := Render(failingWriter{}, "text", sampleReport(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Contains(t, err.Error(), "rendering text report")
}
