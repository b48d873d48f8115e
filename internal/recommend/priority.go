// Package recommend turns compliance gaps into prioritized remediation
// recommendations.
package recommend

import "strings"

// Priority is the urgency tier of a recommendation.
type Priority string

// Priority tiers, most urgent first.
const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// DefaultPriority applies to controls absent from the priority table.
const DefaultPriority = PriorityMedium

// Priorities returns all tiers in rank order.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank orders priorities: Critical 0, High 1, Medium 2, Low 3. Unknown
// values rank with Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// IsValid reports whether p is one of the four tiers.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParsePriority normalizes a priority name, case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities() {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, true
		}
	}
	return "", false
}

// DefaultPriorityTable maps control ids to their priority. Ids not listed
// get DefaultPriority.
func DefaultPriorityTable() map[string]Priority {
	return map[string]Priority{
		"AC-1":     PriorityCritical,
		"AC-2":     PriorityHigh,
		"IA-2":     PriorityCritical,
		"AU-1":     PriorityHigh,
		"IR-1":     PriorityCritical,
		"SC-1":     PriorityHigh,
		"A.5.1.1":  PriorityCritical,
		"A.9.1.1":  PriorityHigh,
		"A.16.1.1": PriorityCritical,
		"DPDP-1":   PriorityHigh,
		"DPDP-2":   PriorityHigh,
		"DPDP-3":   PriorityCritical,
	}
}
