// Package analysis runs the policy compliance pipeline: input validation, the
// payment gate, section extraction, scoring, recommendations and the summary.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joshsymonds/policycheck/internal/catalog"
	"github.com/joshsymonds/policycheck/internal/compliance"
	"github.com/joshsymonds/policycheck/internal/recommend"
	"github.com/joshsymonds/policycheck/internal/report"
	"github.com/joshsymonds/policycheck/internal/sections"
	"github.com/joshsymonds/policycheck/pkg/logger"
)

// OutputLimits caps the lists included in a report.
type OutputLimits struct {
	MaxGaps            int `yaml:"max_gaps"`
	MaxStrengths       int `yaml:"max_strengths"`
	MaxRecommendations int `yaml:"max_recommendations"`
}

// DefaultOutputLimits returns the standard report caps.
func DefaultOutputLimits() OutputLimits {
	return OutputLimits{
		MaxGaps:            10,
		MaxStrengths:       5,
		MaxRecommendations: recommend.DefaultLimit,
	}
}

// Request is one analysis request.
type Request struct {
	Text      string
	PaymentID string
	Premium   bool
}

// Narrator adds free-text analysis to a finished report. Implementations
// must leave every structured field untouched.
type Narrator interface {
	Decorate(ctx context.Context, text string, premium bool, r *report.Report)
}

// Service analyzes policies against one catalog. It is safe for concurrent use.
type Service struct {
	logger    logger.Logger
	catalog   *catalog.Catalog
	generator *recommend.Generator
	verifier  PaymentVerifier
	narrator  Narrator
	now       func() time.Time
	newID     func() string
	limits    Limits
	output    OutputLimits
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) { s.logger = log }
}

// WithGenerator replaces the recommendation generator.
func WithGenerator(g *recommend.Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithVerifier sets the payment verifier used for premium requests.
func WithVerifier(v PaymentVerifier) Option {
	return func(s *Service) { s.verifier = v }
}

// WithNarrator enables free-text enrichment of reports.
func WithNarrator(n Narrator) Option {
	return func(s *Service) { s.narrator = n }
}

// WithLimits sets the input limits.
func WithLimits(l Limits) Option {
	return func(s *Service) { s.limits = l }
}

// WithOutputLimits sets the report list caps.
func WithOutputLimits(o OutputLimits) Option {
	return func(s *Service) { s.output = o }
}

// WithClock sets the time source for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the report id source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a Service over cat. Premium requests are refused unless
// a verifier is configured.
func NewService(cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		logger:    logger.GetGlobalLogger(),
		catalog:   cat,
		generator: recommend.NewGenerator(),
		verifier:  NewStaticVerifier(),
		now:       time.Now,
		newID:     uuid.NewString,
		limits:    DefaultLimits(),
		output:    DefaultOutputLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "analysis")
	return s
}

// Catalog returns the catalog the service scores against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Analyze validates text and scores it against the default catalog. The
// catalog is loaded on first valid use.
func Analyze(text string) (compliance.Result, error) {
	if err := ValidateText(text, MinTextLength); err != nil {
		return compliance.Result{}, err
	}
	return compliance.Score(text, catalog.Default()), nil
}

// AnalyzeWith validates text and scores it against c.
func AnalyzeWith(text string, c *catalog.Catalog) (compliance.Result, error) {
	if err := ValidateText(text, MinTextLength); err != nil {
		return compliance.Result{}, err
	}
	return compliance.Score(text, c), nil
}

// Run analyzes one request and builds its report.
func (s *Service) Run(ctx context.Context, req Request) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError(KindInternal, "analysis canceled", "", err)
	}
	if s.catalog == nil {
		return nil, newError(KindCatalogUnavailable, "no control catalog loaded", "", nil)
	}
	if err := ValidateText(req.Text, s.limits.minTextLength()); err != nil {
		return nil, err
	}

	id := s.newID()
	ctx = logger.ContextWithRequestID(ctx, id)
	log := logger.FromContext(ctx, s.logger)

	if req.Premium {
		if err := s.checkPayment(ctx, log, req.PaymentID); err != nil {
			return nil, err
		}
	}

	log.Debug("Analyzing policy", "length", len(req.Text), "premium", req.Premium)

	extracted := sections.Extract(req.Text)
	result := compliance.Score(req.Text, s.catalog)

	rep := &report.Report{
		ID:                 id,
		GeneratedAt:        s.now().UTC(),
		Success:            true,
		Premium:            req.Premium,
		Score:              result.Score,
		Gaps:               head(result.Gaps, s.output.MaxGaps),
		Strengths:          head(result.Strengths, s.output.MaxStrengths),
		TotalControls:      result.TotalControls(),
		TotalGaps:          len(result.Gaps),
		TotalStrengths:     len(result.Strengths),
		Summary:            report.Summarize(result),
		SectionsFound:      extracted.Found(),
		StandardsEvaluated: report.StandardsEvaluated(),
	}

	if req.Premium {
		rep.Recommendations = recommend.Top(s.generator.Recommend(result.Gaps), s.output.MaxRecommendations)
		rep.ComplianceDetails = &report.ComplianceDetails{
			NIST: result.Details(catalog.StandardNIST),
			ISO:  result.Details(catalog.StandardISO),
			DPDP: result.Details(catalog.StandardDPDP),
		}
	}

	if s.narrator != nil {
		s.narrator.Decorate(ctx, req.Text, req.Premium, rep)
	}

	log.Info("Analysis complete",
		"score", rep.Score,
		"gaps", rep.TotalGaps,
		"strengths", rep.TotalStrengths,
		"premium", rep.Premium)

	return rep, nil
}

func (s *Service) checkPayment(ctx context.Context, log logger.Logger, paymentID string) error {
	ok, err := s.verifier.Verify(ctx, paymentID)
	switch {
	case err != nil:
		log.Warn("Payment verification failed", "error", err)
		return newError(KindPaymentRequired, "payment could not be verified", paymentID, err)
	case ok:
		return nil
	case paymentID == "":
		return newError(KindPaymentRequired, "premium analysis requires a payment id", "", nil)
	default:
		return newError(KindPaymentRequired, "payment not verified", paymentID, nil)
	}
}

func head[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
