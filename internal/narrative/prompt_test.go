package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshsymonds/policycheck/internal/catalog"
	"github.com/joshsymonds/policycheck/internal/compliance"
	"github.com/joshsymonds/policycheck/internal/recommend"
	"github.com/joshsymonds/policycheck/internal/report"
)

func testReport() *report.Report {
	return &report.Report{
		ID:             "r-1",
		Score:          50,
		TotalControls:  2,
		TotalStrengths: 1,
		TotalGaps:      1,
		Gaps:           []compliance.Gap{{Standard: catalog.StandardNIST, ID: "IA-2", Name: "Multi-Factor Authentication"}},
		Strengths:      []compliance.Gap{{Standard: catalog.StandardDPDP, ID: "DPDP-1", Name: "Consent Management"}},
		SectionsFound:  []string{"Authentication"},
		Recommendations: []recommend.Recommendation{{
			Control:        "NIST IA-2: Multi-Factor Authentication",
			Priority:       recommend.PriorityCritical,
			Recommendation: "Implement Multi-Factor Authentication",
			Details:        "Deploy MFA for all privileged accounts and remote access",
		}},
	}
}

func TestRoles(t *testing.T) {
	assert.Len(t, Roles(false), 2)
	premium := Roles(true)
	assert.Len(t, premium, 3)
	assert.Equal(t, "Security Improvement Consultant", premium[2].Title)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Authentication: passwords rotate yearly.", true, testReport())

	assert.Contains(t, prompt, "## Role 1: Cybersecurity Policy Reader")
	assert.Contains(t, prompt, "## Role 3: Security Improvement Consultant")
	assert.Contains(t, prompt, "Authentication: passwords rotate yearly.")
	assert.Contains(t, prompt, "Score: 50% (1 of 2 controls evidenced)")
	assert.Contains(t, prompt, "- NIST IA-2: Multi-Factor Authentication")
	assert.Contains(t, prompt, "- [Critical] Implement Multi-Factor Authentication")
}

func TestBuildPromptFreeTier(t *testing.T) {
	prompt := BuildPrompt("Authentication: passwords rotate yearly.", false, testReport())

	assert.NotContains(t, prompt, "Security Improvement Consultant")
	assert.NotContains(t, prompt, "Recommendations:")
}

func TestBuildPromptTruncatesPolicy(t *testing.T) {
	text := strings.Repeat("é", MaxPromptPolicyChars) + "TAIL"
	prompt := BuildPrompt(text, false, nil)

	assert.NotContains(t, prompt, "TAIL")
	assert.Contains(t, prompt, strings.Repeat("é", MaxPromptPolicyChars)+"...")
	assert.NotContains(t, prompt, "## Deterministic Results")
}
