package compliance

import (
	"strings"

	"github.com/joshsymonds/policycheck/internal/catalog"
)

// Score classifies every control in c against the full policy text. A
// control is Present when any of its keywords occurs in the text,
// case-insensitively; blank keywords never match. The score is the
// percentage of Present controls rounded down, and 0 for an empty catalog.
func Score(text string, c *catalog.Catalog) Result {
	lower := strings.ToLower(text)

	result := Result{
		Standards: make([]StandardResult, 0, 3),
		Gaps:      []Gap{},
		Strengths: []Gap{},
	}

	for _, group := range c.Groups() {
		sr := StandardResult{
			Standard: group.Standard,
			Controls: make([]ControlResult, 0, len(group.Controls)),
		}

		for _, ctrl := range group.Controls {
			cr := ControlResult{ControlID: ctrl.ID, Name: ctrl.Name, Status: StatusMissing}
			gap := Gap{Standard: group.Standard, ID: ctrl.ID, Name: ctrl.Name}

			if kw, ok := firstMatch(lower, ctrl.Keywords); ok {
				cr.Status = StatusPresent
				cr.MatchedKeyword = kw
				result.Strengths = append(result.Strengths, gap)
			} else {
				result.Gaps = append(result.Gaps, gap)
			}
			sr.Controls = append(sr.Controls, cr)
		}

		result.Standards = append(result.Standards, sr)
	}

	result.Score = percentage(len(result.Strengths), result.TotalControls())
	return result
}

func firstMatch(lowerText string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if strings.TrimSpace(k) == "" {
			continue
		}
		if strings.Contains(lowerText, k) {
			return kw, true
		}
	}
	return "", false
}

func percentage(present, total int) int {
	if total <= 0 {
		return 0
	}
	return present * 100 / total
}
