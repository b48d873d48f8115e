package narrative

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joshsymonds/policycheck/internal/report"
	"github.com/joshsymonds/policycheck/internal/sections"
)

// MaxPromptPolicyChars caps how much policy text is quoted in a prompt.
const MaxPromptPolicyChars = 2000

// Role is one analyst persona in the prompt.
type Role struct {
	Title string
	Goal  string
	Task  string
}

// Roles returns the analyst personas used for a report. The improvement
// consultant only takes part in premium reports.
func Roles(premium bool) []Role {
	roles := []Role{
		{
			Title: "Cybersecurity Policy Reader",
			Goal:  "Extract and identify key sections from security policies",
			Task: "Summarize what the policy covers for each of these areas: " +
				strings.Join(sections.Names, ", ") + ".",
		},
		{
			Title: "Compliance Standards Auditor",
			Goal:  "Evaluate policies against NIST 800-53, ISO 27001, and DPDP Act 2023",
			Task: "Using the deterministic results below, explain which controls are fully addressed, " +
				"partially addressed or missing, and what the score means for the organization.",
		},
	}
	if premium {
		roles = append(roles, Role{
			Title: "Security Improvement Consultant",
			Goal:  "Generate actionable recommendations to address compliance gaps",
			Task: "Turn the prioritized recommendations into an implementation roadmap with concrete " +
				"steps, addressing the most critical gaps first.",
		})
	}
	return roles
}

// BuildPrompt creates the narration prompt for a finished report.
func BuildPrompt(text string, premium bool, r *report.Report) string {
	var sb strings.Builder

	sb.WriteString("You are a panel of cybersecurity compliance specialists reviewing a security policy. ")
	sb.WriteString("Work through the roles below in order and answer in plain prose. ")
	sb.WriteString("Do not contradict or recompute the score, gaps or recommendations given to you.\n\n")

	for i, role := range Roles(premium) {
		fmt.Fprintf(&sb, "## Role %d: %s\n", i+1, role.Title)
		fmt.Fprintf(&sb, "Goal: %s\n", role.Goal)
		fmt.Fprintf(&sb, "Task: %s\n\n", role.Task)
	}

	sb.WriteString("## Policy Excerpt\n")
	sb.WriteString(truncateRunes(text, MaxPromptPolicyChars))
	if utf8.RuneCountInString(text) > MaxPromptPolicyChars {
		sb.WriteString("...")
	}
	sb.WriteString("\n\n")

	if r == nil {
		return sb.String()
	}

	sb.WriteString("## Deterministic Results\n")
	fmt.Fprintf(&sb, "Score: %d%% (%d of %d controls evidenced)\n", r.Score, r.TotalStrengths, r.TotalControls)
	if len(r.SectionsFound) > 0 {
		fmt.Fprintf(&sb, "Sections found: %s\n", strings.Join(r.SectionsFound, ", "))
	}

	sb.WriteString("Gaps:\n")
	for _, g := range r.Gaps {
		fmt.Fprintf(&sb, "- %s\n", g)
	}
	sb.WriteString("Strengths:\n")
	for _, s := range r.Strengths {
		fmt.Fprintf(&sb, "- %s\n", s)
	}

	if premium && len(r.Recommendations) > 0 {
		sb.WriteString("Recommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&sb, "- [%s] %s: %s\n", rec.Priority, rec.Recommendation, rec.Details)
		}
	}

	return sb.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
