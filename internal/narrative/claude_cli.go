package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultClaudeCommand is the executable the Claude CLI driver runs.
const DefaultClaudeCommand = "claude"

// ClaudeCLIDriver implements the Driver interface using the Claude CLI.
type ClaudeCLIDriver struct {
	command   string
	model     string
	maxTokens int
}

// NewClaudeCLIDriver creates a new Claude CLI driver.
func NewClaudeCLIDriver() *ClaudeCLIDriver {
	return &ClaudeCLIDriver{
		command:   DefaultClaudeCommand,
		model:     "sonnet",
		maxTokens: 2000,
	}
}

// Configure implements Driver interface.
func (d *ClaudeCLIDriver) Configure(config map[string]any) error {
	if command, ok := config["command"].(string); ok && command != "" {
		d.command = command
	}

	if model, ok := config["model"].(string); ok && model != "" {
		d.model = model
	}

	switch maxTokens := config["max_tokens"].(type) {
	case int:
		d.maxTokens = maxTokens
	case float64:
		d.maxTokens = int(maxTokens)
	case nil:
	default:
		return fmt.Errorf("max_tokens must be a number, got %T", maxTokens)
	}

	return nil
}

// Narrate implements Driver interface.
func (d *ClaudeCLIDriver) Narrate(ctx context.Context, prompt string) (*Narration, error) {
	args := []string{
		"--print",
		"--model", d.model,
		"--output-format", "json",
		"--max-turns", "1",
	}

	cmd := exec.CommandContext(ctx, d.command, args...) // #nosec G204 - command comes from operator config
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("claude CLI failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	var response claudeResponse
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse claude response: %w (output: %s)", err, stdout.String())
	}

	text := strings.TrimSpace(response.text())
	if text == "" {
		return nil, fmt.Errorf("claude response contained no text")
	}

	model := response.Model
	if model == "" {
		model = d.GetCapabilities().ModelName
	}

	return &Narration{
		Text:       text,
		Model:      model,
		TokensUsed: response.Usage.InputTokens + response.Usage.OutputTokens,
	}, nil
}

// GetCapabilities implements Driver interface.
func (d *ClaudeCLIDriver) GetCapabilities() Capabilities {
	capabilities := map[string]Capabilities{
		"opus": {
			ModelName:            "claude-opus",
			MaxTokensPerRequest:  200000,
			MaxTokensPerResponse: 4096,
			CostPer1KTokens:      0.015,
		},
		"sonnet": {
			ModelName:            "claude-sonnet",
			MaxTokensPerRequest:  200000,
			MaxTokensPerResponse: 4096,
			CostPer1KTokens:      0.003,
		},
		"haiku": {
			ModelName:            "claude-haiku",
			MaxTokensPerRequest:  200000,
			MaxTokensPerResponse: 4096,
			CostPer1KTokens:      0.00025,
		},
	}

	if c, ok := capabilities[d.model]; ok {
		return c
	}
	return capabilities["sonnet"]
}

// EstimateTokens implements Driver interface. The estimate includes room for
// the response.
func (d *ClaudeCLIDriver) EstimateTokens(prompt string) (int, error) {
	if prompt == "" {
		return 0, nil
	}
	return estimateTokens(prompt) + d.maxTokens, nil
}

// HealthCheck implements Driver interface.
func (d *ClaudeCLIDriver) HealthCheck(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, d.command, "--version") // #nosec G204 - command comes from operator config
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("claude CLI not found or not working: %w (output: %s)", err, output)
	}
	return nil
}

// claudeResponse represents the JSON response from Claude CLI. Newer CLI
// versions put the answer in result, older ones in content.
type claudeResponse struct {
	Content string `json:"content"`
	Result  string `json:"result"`
	Model   string `json:"model"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (r claudeResponse) text() string {
	if r.Result != "" {
		return r.Result
	}
	return r.Content
}

func init() {
	DefaultRegistry.Register("claude-cli", func() Driver {
		return NewClaudeCLIDriver()
	})
}
