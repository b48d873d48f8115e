package recommend

import (
	"maps"
	"slices"
	"strings"

	"github.com/joshsymonds/policycheck/internal/compliance"
)

// DefaultLimit is how many recommendations callers usually present.
const DefaultLimit = 10

// Recommendation is a remediation suggestion for one gap.
type Recommendation struct {
	Control        string   `json:"control" yaml:"control"`
	Priority       Priority `json:"priority" yaml:"priority"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
	Details        string   `json:"details" yaml:"details"`
}

// Generator assigns priorities and detail text to gaps. It is immutable
// after construction and safe for concurrent use.
type Generator struct {
	priorities map[string]Priority
	rules      []Rule
}

// Option configures a Generator.
type Option func(*Generator)

// WithPriorityOverrides sets or replaces priorities for specific control ids.
func WithPriorityOverrides(overrides map[string]Priority) Option {
	return func(g *Generator) {
		maps.Copy(g.priorities, overrides)
	}
}

// WithRules replaces the detail rules.
func WithRules(rules []Rule) Option {
	return func(g *Generator) {
		g.rules = slices.Clone(rules)
	}
}

// WithLeadingRules evaluates rules before the current ones.
func WithLeadingRules(rules []Rule) Option {
	return func(g *Generator) {
		g.rules = append(slices.Clone(rules), g.rules...)
	}
}

// NewGenerator creates a Generator with the default priority table and rules.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		priorities: DefaultPriorityTable(),
		rules:      DefaultRules(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Recommend produces one recommendation per gap, sorted by priority rank.
// Gaps of equal rank keep their input order.
func (g *Generator) Recommend(gaps []compliance.Gap) []Recommendation {
	recs := make([]Recommendation, 0, len(gaps))
	for _, gap := range gaps {
		recs = append(recs, g.build(gap.String(), gap))
	}
	sortByPriority(recs)
	return recs
}

// RecommendStrings is Recommend for gaps in their "STANDARD ID: Name" string
// form. Each recommendation's Control is the original string.
func (g *Generator) RecommendStrings(gaps []string) []Recommendation {
	recs := make([]Recommendation, 0, len(gaps))
	for _, s := range gaps {
		recs = append(recs, g.build(s, compliance.ParseGap(s)))
	}
	sortByPriority(recs)
	return recs
}

// PriorityFor returns the priority of a control id.
func (g *Generator) PriorityFor(id string) Priority {
	if id == "" {
		return DefaultPriority
	}
	if p, ok := g.priorities[id]; ok {
		return p
	}
	return DefaultPriority
}

// DetailsFor returns the detail text of the first rule matching name.
func (g *Generator) DetailsFor(name string) string {
	lower := strings.ToLower(name)
	for _, r := range g.rules {
		if r.Matches(lower) {
			return r.Details
		}
	}
	return FallbackDetails(name)
}

func (g *Generator) build(control string, gap compliance.Gap) Recommendation {
	return Recommendation{
		Control:        control,
		Priority:       g.PriorityFor(gap.ID),
		Recommendation: "Implement " + gap.Name,
		Details:        g.DetailsFor(gap.Name),
	}
}

func sortByPriority(recs []Recommendation) {
	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
}

// Top returns at most n recommendations. A non-positive n returns all of them.
func Top(recs []Recommendation, n int) []Recommendation {
	if n <= 0 || len(recs) <= n {
		return recs
	}
	return recs[:n]
}

// Recommend uses a default Generator.
func Recommend(gaps []compliance.Gap) []Recommendation {
	return defaultGenerator.Recommend(gaps)
}

var defaultGenerator = NewGenerator()
