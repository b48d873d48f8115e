// Package report renders analysis results as text summaries and in the
// supported output formats.
package report

import (
	"time"

	"github.com/joshsymonds/policycheck/internal/compliance"
	"github.com/joshsymonds/policycheck/internal/recommend"
)

// Report is the document returned for one policy analysis.
type Report struct {
	GeneratedAt        time.Time                  `json:"generated_at" yaml:"generated_at"`
	ComplianceDetails  *ComplianceDetails         `json:"compliance_details,omitempty" yaml:"compliance_details,omitempty"`
	ID                 string                     `json:"id" yaml:"id"`
	Summary            string                     `json:"summary" yaml:"summary"`
	AIAnalysis         string                     `json:"ai_analysis,omitempty" yaml:"ai_analysis,omitempty"`
	Gaps               []compliance.Gap           `json:"gaps" yaml:"gaps"`
	Strengths          []compliance.Gap           `json:"strengths" yaml:"strengths"`
	SectionsFound      []string                   `json:"sections_found" yaml:"sections_found"`
	StandardsEvaluated []string                   `json:"standards_evaluated" yaml:"standards_evaluated"`
	Recommendations    []recommend.Recommendation `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	Score              int                        `json:"score" yaml:"score"`
	TotalControls      int                        `json:"total_controls" yaml:"total_controls"`
	TotalGaps          int                        `json:"total_gaps" yaml:"total_gaps"`
	TotalStrengths     int                        `json:"total_strengths" yaml:"total_strengths"`
	Success            bool                       `json:"success" yaml:"success"`
	Premium            bool                       `json:"premium" yaml:"premium"`
}

// ComplianceDetails lists every control's classification per standard.
type ComplianceDetails struct {
	NIST []compliance.ControlResult `json:"nist" yaml:"nist"`
	ISO  []compliance.ControlResult `json:"iso" yaml:"iso"`
	DPDP []compliance.ControlResult `json:"dpdp" yaml:"dpdp"`
}
