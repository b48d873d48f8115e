package narrative

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/policycheck/pkg/logger"
)

func TestDecoratePremium(t *testing.T) {
	driver := &MockDriver{}
	d := NewDecorator(driver, WithLogger(logger.NewMockLogger()))

	r := testReport()
	before := *r
	d.Decorate(context.Background(), "policy text here", true, r)

	assert.Equal(t, "mock narrative", r.AIAnalysis)
	assert.Equal(t, before.Score, r.Score)
	assert.Equal(t, before.Gaps, r.Gaps)
	assert.Equal(t, before.Strengths, r.Strengths)
	assert.Equal(t, before.Recommendations, r.Recommendations)
	assert.Equal(t, 1, driver.Calls())
}

func TestDecorateSkipsFreeTier(t *testing.T) {
	driver := &MockDriver{}
	d := NewDecorator(driver, WithLogger(logger.NewMockLogger()))

	r := testReport()
	d.Decorate(context.Background(), "policy text here", false, r)
	assert.Empty(t, r.AIAnalysis)
	assert.Zero(t, driver.Calls())

	free := NewDecorator(driver, WithLogger(logger.NewMockLogger()), WithFreeTier(true))
	free.Decorate(context.Background(), "policy text here", false, r)
	assert.Equal(t, "mock narrative", r.AIAnalysis)
}

func TestDecorateSwallowsErrors(t *testing.T) {
	log := logger.NewMockLogger()
	driver := &MockDriver{NarrateFunc: func(context.Context, string) (*Narration, error) {
		return nil, errors.New("model unavailable")
	}}
	d := NewDecorator(driver, WithLogger(log))

	r := testReport()
	before := *r
	d.Decorate(context.Background(), "policy text here", true, r)

	assert.Equal(t, before, *r)
	assert.True(t, log.HasMessage("WARN", "Narrative enrichment failed"))
}

func TestDecorateUsesCache(t *testing.T) {
	fc, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	driver := &MockDriver{}
	d := NewDecorator(driver, WithLogger(logger.NewMockLogger()), WithCache(fc, time.Hour))

	first := testReport()
	d.Decorate(context.Background(), "same policy", true, first)
	second := testReport()
	d.Decorate(context.Background(), "same policy", true, second)

	assert.Equal(t, "mock narrative", second.AIAnalysis)
	assert.Equal(t, 1, driver.Calls())

	third := testReport()
	d.Decorate(context.Background(), "different policy", true, third)
	assert.Equal(t, 2, driver.Calls())
}

func TestDecorateCacheKeyFollowsReportAndModel(t *testing.T) {
	fc, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	driver := &MockDriver{}
	d := NewDecorator(driver, WithLogger(logger.NewMockLogger()), WithCache(fc, time.Hour), WithModel("custom-a"))

	d.Decorate(context.Background(), "same policy", true, testReport())
	require.Equal(t, 1, driver.Calls())

	rescored := testReport()
	rescored.Score = 0
	rescored.TotalStrengths = 0
	d.Decorate(context.Background(), "same policy", true, rescored)
	assert.Equal(t, 2, driver.Calls())

	other := NewDecorator(driver, WithLogger(logger.NewMockLogger()), WithCache(fc, time.Hour), WithModel("custom-b"))
	other.Decorate(context.Background(), "same policy", true, testReport())
	assert.Equal(t, 3, driver.Calls())

	d.Decorate(context.Background(), "same policy", true, testReport())
	assert.Equal(t, 3, driver.Calls())
}

func TestDecorateTimeout(t *testing.T) {
	driver := &MockDriver{NarrateFunc: func(ctx context.Context, _ string) (*Narration, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	d := NewDecorator(driver, WithLogger(logger.NewMockLogger()), WithTimeout(10*time.Millisecond))

	r := testReport()
	d.Decorate(context.Background(), "policy", true, r)
	assert.Empty(t, r.AIAnalysis)
}

func TestDecorateNilSafe(t *testing.T) {
	d := NewDecorator(nil, WithLogger(logger.NewMockLogger()))
	r := testReport()
	d.Decorate(context.Background(), "policy", true, r)
	assert.Empty(t, r.AIAnalysis)

	NewDecorator(&MockDriver{}).Decorate(context.Background(), "policy", true, nil)
}
