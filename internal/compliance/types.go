// Package compliance scores policy text against a control catalog.
package compliance

import (
	"fmt"
	"strings"

	"github.com/joshsymonds/policycheck/internal/catalog"
)

// Status is the binary classification of a control.
type Status string

// Control statuses.
const (
	StatusPresent Status = "Present"
	StatusMissing Status = "Missing"
)

// Gap identifies a control by standard, id and name. The scorer produces
// gaps and strengths as Gaps so later stages never re-parse strings.
type Gap struct {
	Standard catalog.Standard
	ID       string
	Name     string
}

// String renders the gap as "STANDARD ID: Name".
func (g Gap) String() string {
	switch {
	case g.Standard == "" && g.ID == "":
		return g.Name
	case g.Standard == "":
		return g.ID + ": " + g.Name
	default:
		return fmt.Sprintf("%s %s: %s", g.Standard, g.ID, g.Name)
	}
}

// MarshalText renders the gap in its string form for JSON and YAML output.
func (g Gap) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText parses the string form produced by MarshalText.
func (g *Gap) UnmarshalText(text []byte) error {
	*g = ParseGap(string(text))
	return nil
}

// ParseGap parses a "STANDARD ID: Name" string. The id is the last token
// before the first colon and the name is everything after it, trimmed. A
// string without a colon becomes a Gap whose Name is the whole string.
func ParseGap(s string) Gap {
	head, name, ok := strings.Cut(s, ":")
	if !ok {
		return Gap{Name: s}
	}

	g := Gap{Name: strings.TrimSpace(name)}
	fields := strings.Fields(head)
	switch len(fields) {
	case 0:
	case 1:
		g.ID = fields[0]
	default:
		g.Standard = catalog.Standard(fields[len(fields)-2])
		g.ID = fields[len(fields)-1]
	}
	return g
}

// ControlResult is the classification of one control.
type ControlResult struct {
	ControlID      string `json:"control_id" yaml:"control_id"`
	Name           string `json:"name" yaml:"name"`
	Status         Status `json:"status" yaml:"status"`
	MatchedKeyword string `json:"matched_keyword,omitempty" yaml:"matched_keyword,omitempty"`
}

// StandardResult holds the classifications for one standard in catalog order.
type StandardResult struct {
	Standard catalog.Standard `json:"standard" yaml:"standard"`
	Controls []ControlResult  `json:"controls" yaml:"controls"`
}

// Result is the outcome of scoring a policy. Gaps and Strengths partition
// the catalog's controls.
type Result struct {
	Standards []StandardResult `json:"standards" yaml:"standards"`
	Gaps      []Gap            `json:"gaps" yaml:"gaps"`
	Strengths []Gap            `json:"strengths" yaml:"strengths"`
	Score     int              `json:"score" yaml:"score"`
}

// Details returns the control classifications for a standard.
func (r Result) Details(s catalog.Standard) []ControlResult {
	for _, sr := range r.Standards {
		if sr.Standard == s {
			return sr.Controls
		}
	}
	return []ControlResult{}
}

// TotalControls is the number of controls evaluated.
func (r Result) TotalControls() int {
	return len(r.Gaps) + len(r.Strengths)
}

// GapStrings renders the gaps.
func (r Result) GapStrings() []string {
	return gapStrings(r.Gaps)
}

// StrengthStrings renders the strengths.
func (r Result) StrengthStrings() []string {
	return gapStrings(r.Strengths)
}

func gapStrings(gaps []Gap) []string {
	out := make([]string, len(gaps))
	for i, g := range gaps {
		out[i] = g.String()
	}
	return out
}
