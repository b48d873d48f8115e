package narrative

import (
	"context"
	"time"

	"github.com/joshsymonds/policycheck/internal/report"
	"github.com/joshsymonds/policycheck/pkg/logger"
)

// DefaultCacheTTL is how long narrations stay cached.
const DefaultCacheTTL = 24 * time.Hour

// DefaultTimeout bounds a single narration call.
const DefaultTimeout = 2 * time.Minute

// Decorator fills in Report.AIAnalysis using a Driver. Every failure is logged
// and leaves the report as it was.
type Decorator struct {
	driver   Driver
	cache    Cache
	logger   logger.Logger
	model    string
	ttl      time.Duration
	timeout  time.Duration
	freeTier bool
}

// DecoratorOption configures a Decorator.
type DecoratorOption func(*Decorator)

// WithCache caches narrations for ttl.
func WithCache(c Cache, ttl time.Duration) DecoratorOption {
	return func(d *Decorator) {
		d.cache = c
		d.ttl = ttl
	}
}

// WithLogger sets the decorator logger.
func WithLogger(log logger.Logger) DecoratorOption {
	return func(d *Decorator) { d.logger = log }
}

// WithTimeout bounds each narration call.
func WithTimeout(timeout time.Duration) DecoratorOption {
	return func(d *Decorator) { d.timeout = timeout }
}

// WithModel names the configured model for cache keys. Without it the
// driver's reported model name is used.
func WithModel(model string) DecoratorOption {
	return func(d *Decorator) { d.model = model }
}

// WithFreeTier also narrates free-tier reports.
func WithFreeTier(enabled bool) DecoratorOption {
	return func(d *Decorator) { d.freeTier = enabled }
}

// NewDecorator creates a Decorator around driver.
func NewDecorator(driver Driver, opts ...DecoratorOption) *Decorator {
	d := &Decorator{
		driver:  driver,
		logger:  logger.GetGlobalLogger(),
		ttl:     DefaultCacheTTL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "narrative")
	return d
}

// Decorate sets r.AIAnalysis. Free-tier reports are skipped unless the
// decorator was built WithFreeTier.
func (d *Decorator) Decorate(ctx context.Context, text string, premium bool, r *report.Report) {
	if r == nil || d.driver == nil {
		return
	}
	if !premium && !d.freeTier {
		return
	}

	n, err := d.narrate(ctx, text, premium, r)
	if err != nil {
		logger.FromContext(ctx, d.logger).Warn("Narrative enrichment failed", "report_id", r.ID, "error", err)
		return
	}
	r.AIAnalysis = n.Text
}

func (d *Decorator) narrate(ctx context.Context, text string, premium bool, r *report.Report) (*Narration, error) {
	prompt := BuildPrompt(text, premium, r)
	key := Key(prompt, d.cacheModel())

	if d.cache != nil {
		cached, err := d.cache.Get(ctx, key)
		switch {
		case err != nil:
			d.logger.Debug("Narrative cache read failed", "error", err)
		case cached != nil:
			d.logger.Debug("Narrative cache hit", "report_id", r.ID)
			return cached, nil
		}
	}

	if tokens, err := d.driver.EstimateTokens(prompt); err == nil {
		d.logger.Debug("Requesting narrative", "report_id", r.ID, "estimated_tokens", tokens)
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	n, err := d.driver.Narrate(callCtx, prompt)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, n, d.ttl); err != nil {
			d.logger.Debug("Narrative cache write failed", "error", err)
		}
	}
	return n, nil
}

func (d *Decorator) cacheModel() string {
	if d.model != "" {
		return d.model
	}
	return d.driver.GetCapabilities().ModelName
}
