package report

import (
	"strings"
	"text/template"

	"github.com/joshsymonds/policycheck/internal/catalog"
	"github.com/joshsymonds/policycheck/internal/compliance"
)

// SummaryListLimit is how many strengths and gaps the summary lists.
const SummaryListLimit = 5

const summaryTemplate = `
COMPLIANCE ANALYSIS SUMMARY
===========================

Overall Compliance Score: {{.Score}}%

Strengths ({{.StrengthCount}} controls found):
{{bullets .Strengths}}

Critical Gaps ({{.GapCount}} controls missing):
{{bullets .Gaps}}

Standards Evaluated:
{{bullets .Standards}}
`

var summaryTmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"bullets": bullets,
}).Parse(summaryTemplate))

type summaryData struct {
	Strengths     []string
	Gaps          []string
	Standards     []string
	Score         int
	StrengthCount int
	GapCount      int
}

// StandardsEvaluated returns the display names of the evaluated standards.
func StandardsEvaluated() []string {
	names := make([]string, 0, 3)
	for _, s := range catalog.Standards() {
		names = append(names, s.DisplayName())
	}
	return names
}

// Summarize renders a fixed-layout digest of a compliance result: the score,
// up to five strengths and gaps, and the standards evaluated.
func Summarize(r compliance.Result) string {
	data := summaryData{
		Score:         r.Score,
		StrengthCount: len(r.Strengths),
		GapCount:      len(r.Gaps),
		Strengths:     limit(r.StrengthStrings(), SummaryListLimit),
		Gaps:          limit(r.GapStrings(), SummaryListLimit),
		Standards:     StandardsEvaluated(),
	}

	var sb strings.Builder
	// Executing a parsed template over plain strings cannot fail.
	_ = summaryTmpl.Execute(&sb, data)
	return sb.String()
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func limit[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
