package narrative

import (
	"context"
	"fmt"
)

// StaticDriver returns fixed text. It serves offline runs and tests.
type StaticDriver struct {
	text  string
	model string
}

// NewStaticDriver creates a driver that always answers with text.
func NewStaticDriver(text string) *StaticDriver {
	return &StaticDriver{text: text, model: "static"}
}

// Configure implements Driver interface.
func (d *StaticDriver) Configure(config map[string]any) error {
	if text, ok := config["text"].(string); ok {
		d.text = text
	}
	if model, ok := config["model"].(string); ok && model != "" {
		d.model = model
	}
	return nil
}

// Narrate implements Driver interface.
func (d *StaticDriver) Narrate(ctx context.Context, prompt string) (*Narration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.text == "" {
		return nil, fmt.Errorf("static driver has no text configured")
	}
	return &Narration{Text: d.text, Model: d.model, TokensUsed: estimateTokens(prompt)}, nil
}

// GetCapabilities implements Driver interface.
func (d *StaticDriver) GetCapabilities() Capabilities {
	return Capabilities{ModelName: d.model}
}

// EstimateTokens implements Driver interface.
func (d *StaticDriver) EstimateTokens(prompt string) (int, error) {
	return estimateTokens(prompt), nil
}

// HealthCheck implements Driver interface.
func (d *StaticDriver) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.text == "" {
		return fmt.Errorf("static driver has no text configured")
	}
	return nil
}

func init() {
	DefaultRegistry.Register("static", func() Driver {
		return NewStaticDriver("")
	})
}
