package recommend

import (
	"fmt"
	"strings"
)

// Rule attaches remediation detail text to controls whose name contains any
// of the keywords.
type Rule struct {
	Name     string   `yaml:"name"`
	Details  string   `yaml:"details"`
	Keywords []string `yaml:"keywords"`
}

// Matches reports whether the lowercased control name contains a keyword.
func (r Rule) Matches(lowerName string) bool {
	for _, kw := range r.Keywords {
		k := strings.ToLower(kw)
		if strings.TrimSpace(k) != "" && strings.Contains(lowerName, k) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "access-control",
			Keywords: []string{"access control"},
			Details:  "Establish clear access control policies defining user roles, permissions, and the principle of least privilege.",
		},
		{
			Name:     "mfa",
			Keywords: []string{"mfa", "multi-factor"},
			Details:  "Deploy multi-factor authentication for all user accounts, especially for privileged access.",
		},
		{
			Name:     "incident-response",
			Keywords: []string{"incident"},
			Details:  "Develop a comprehensive incident response plan with clear roles, responsibilities, and escalation procedures.",
		},
		{
			Name:     "audit-logging",
			Keywords: []string{"audit"},
			Details:  "Implement centralized logging and monitoring with regular audit log reviews.",
		},
		{
			Name:     "encryption",
			Keywords: []string{"encryption"},
			Details:  "Implement encryption for data at rest and in transit using industry-standard algorithms.",
		},
		{
			Name:     "backup-recovery",
			Keywords: []string{"backup", "recovery"},
			Details:  "Establish regular backup procedures and test recovery processes periodically.",
		},
		{
			Name:     "consent",
			Keywords: []string{"consent"},
			Details:  "Implement a consent management system to track and manage user consent for data processing.",
		},
		{
			Name:     "retention",
			Keywords: []string{"retention"},
			Details:  "Define clear data retention periods and automatic deletion procedures for different data categories.",
		},
	}
}

// FallbackDetails is used when no rule matches the control name.
func FallbackDetails(name string) string {
	return fmt.Sprintf("Review industry best practices for %s and implement appropriate controls.", name)
}
