package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshsymonds/policycheck/internal/recommend"
)

// Styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("86")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	grayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	highStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	mediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

func priorityStyle(p recommend.Priority) lipgloss.Style {
	switch p {
	case recommend.PriorityCritical:
		return criticalStyle
	case recommend.PriorityHigh:
		return highStyle
	case recommend.PriorityMedium:
		return mediumStyle
	default:
		return lowStyle
	}
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return goodStyle
	case score >= 40:
		return mediumStyle
	default:
		return badStyle
	}
}

type prettyFormat struct{}

func (prettyFormat) Name() string        { return "pretty" }
func (prettyFormat) Description() string { return "Colored terminal report" }

func (prettyFormat) Render(w io.Writer, r *Report) error {
	var sb strings.Builder

	header := fmt.Sprintf("%s\n%s %s",
		titleStyle.Render("Policy Compliance Report"),
		grayStyle.Render("Score:"),
		scoreStyle(r.Score).Bold(true).Render(fmt.Sprintf("%d%%", r.Score)),
	)
	sb.WriteString(boxStyle.Render(header))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "%s %s\n", headerStyle.Render("Strengths"),
		grayStyle.Render(fmt.Sprintf("(%d of %d controls)", r.TotalStrengths, r.TotalControls)))
	for _, s := range r.Strengths {
		fmt.Fprintf(&sb, "  %s %s\n", goodStyle.Render("✓"), s)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "%s %s\n", headerStyle.Render("Gaps"),
		grayStyle.Render(fmt.Sprintf("(%d of %d controls)", r.TotalGaps, r.TotalControls)))
	for _, g := range r.Gaps {
		fmt.Fprintf(&sb, "  %s %s\n", badStyle.Render("✗"), g)
	}

	if len(r.SectionsFound) > 0 {
		fmt.Fprintf(&sb, "\n%s\n  %s\n", headerStyle.Render("Sections Found"), strings.Join(r.SectionsFound, ", "))
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", headerStyle.Render("Recommendations"))
		for _, rec := range r.Recommendations {
			tag := priorityStyle(rec.Priority).Render(fmt.Sprintf("[%-8s]", rec.Priority))
			fmt.Fprintf(&sb, "  %s %s\n", tag, rec.Recommendation)
			fmt.Fprintf(&sb, "             %s\n", grayStyle.Render(rec.Details))
		}
	}

	if r.AIAnalysis != "" {
		fmt.Fprintf(&sb, "\n%s\n", headerStyle.Render("AI Analysis"))
		sb.WriteString(boxStyle.Render(strings.TrimSpace(r.AIAnalysis)))
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\n%s %s\n", grayStyle.Render("Standards:"), strings.Join(r.StandardsEvaluated, ", "))

	_, err := io.WriteString(w, sb.String())
	return err
}
