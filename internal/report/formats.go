package report

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/joshsymonds/policycheck/pkg/logger"
)

// Format represents a report rendering strategy.
type Format interface {
	// Render writes the report to w.
	Render(w io.Writer, r *Report) error
	// Name returns the format identifier (e.g., "json", "pretty").
	Name() string
	// Description returns a human-readable description of the format.
	Description() string
}

// FormatFactory creates instances of report formats.
type FormatFactory func(log logger.Logger) (Format, error)

var (
	formatRegistry = make(map[string]FormatFactory)
	registryMutex  sync.RWMutex
)

// RegisterFormat registers a new report format factory.
func RegisterFormat(name string, factory FormatFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if factory == nil {
		panic(fmt.Sprintf("report: RegisterFormat factory is nil for format %q", name))
	}
	if _, dup := formatRegistry[name]; dup {
		panic(fmt.Sprintf("report: RegisterFormat called twice for format %q", name))
	}
	formatRegistry[name] = factory
}

// GetFormat creates an instance of the specified report format.
func GetFormat(name string, log logger.Logger) (Format, error) {
	registryMutex.RLock()
	factory, exists := formatRegistry[name]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown report format: %s", name)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return factory(log)
}

// ListFormats returns the registered format names in sorted order.
func ListFormats() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	formats := make([]string, 0, len(formatRegistry))
	for name := range formatRegistry {
		formats = append(formats, name)
	}
	slices.Sort(formats)
	return formats
}

// Render looks up a format by name and writes the report with it.
func Render(w io.Writer, format string, r *Report, log logger.Logger) error {
	f, err := GetFormat(format, log)
	if err != nil {
		return err
	}
	if err := f.Render(w, r); err != nil {
		return fmt.Errorf("rendering %s report: %w", f.Name(), err)
	}
	return nil
}

// Register built-in formats during package initialization.
func init() {
	RegisterFormat("text", func(_ logger.Logger) (Format, error) {
		return textFormat{}, nil
	})
	RegisterFormat("json", func(_ logger.Logger) (Format, error) {
		return jsonFormat{indent: "  "}, nil
	})
	RegisterFormat("yaml", func(_ logger.Logger) (Format, error) {
		return yamlFormat{}, nil
	})
	RegisterFormat("pretty", func(_ logger.Logger) (Format, error) {
		return prettyFormat{}, nil
	})
	RegisterFormat("html", func(log logger.Logger) (Format, error) {
		return newHTMLFormat(log)
	})
}
