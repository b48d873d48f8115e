// Package narrative adds LLM-written free-text analysis to compliance reports.
// The narrative is advisory: it never changes scores, gaps or recommendations.
package narrative

import (
	"context"
	"slices"
	"sync"
)

// Narration is the text a driver produced for one prompt.
type Narration struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used"`
}

// Driver is the interface that all LLM drivers must implement.
type Driver interface {
	// Narrate sends the prompt and returns the model's free-text answer.
	Narrate(ctx context.Context, prompt string) (*Narration, error)

	// GetCapabilities returns the driver's capabilities
	GetCapabilities() Capabilities

	// EstimateTokens estimates the number of tokens for a given prompt
	EstimateTokens(prompt string) (int, error)

	// HealthCheck verifies the driver is working
	HealthCheck(ctx context.Context) error

	// Configure sets driver-specific configuration
	Configure(config map[string]any) error
}

// Capabilities describes what an LLM driver can do.
type Capabilities struct {
	ModelName            string
	MaxTokensPerRequest  int
	MaxTokensPerResponse int
	CostPer1KTokens      float64
}

// DriverRegistry manages available LLM drivers.
type DriverRegistry struct {
	drivers map[string]func() Driver
	mu      sync.RWMutex
}

// NewDriverRegistry creates a new driver registry.
func NewDriverRegistry() *DriverRegistry {
	return &DriverRegistry{
		drivers: make(map[string]func() Driver),
	}
}

// Register registers a new driver.
func (r *DriverRegistry) Register(name string, factory func() Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[name] = factory
}

// Get returns a new driver instance by name.
func (r *DriverRegistry) Get(name string) (Driver, error) {
	r.mu.RLock()
	factory, ok := r.drivers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &DriverNotFoundError{Name: name}
	}
	return factory(), nil
}

// Names returns the registered driver names in sorted order.
func (r *DriverRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DriverNotFoundError is returned when a requested driver doesn't exist.
type DriverNotFoundError struct {
	Name string
}

func (e *DriverNotFoundError) Error() string {
	return "driver not found: " + e.Name
}

// DefaultRegistry is the global driver registry.
var DefaultRegistry = NewDriverRegistry()

// estimateTokens is the rough four-characters-per-token heuristic.
func estimateTokens(prompt string) int {
	return len(prompt) / 4
}
