package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type textFormat struct{}

func (textFormat) Name() string        { return "text" }
func (textFormat) Description() string { return "Plain-text summary followed by recommendations" }

func (textFormat) Render(w io.Writer, r *Report) error {
	var sb strings.Builder
	sb.WriteString(r.Summary)

	if len(r.SectionsFound) > 0 {
		fmt.Fprintf(&sb, "\nSections Found: %s\n", strings.Join(r.SectionsFound, ", "))
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&sb, "%d. [%s] %s\n   %s\n", i+1, rec.Priority, rec.Recommendation, rec.Details)
		}
	}

	if r.AIAnalysis != "" {
		sb.WriteString("\nAI Analysis:\n")
		sb.WriteString(strings.TrimSpace(r.AIAnalysis))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

type jsonFormat struct {
	indent string
}

func (jsonFormat) Name() string        { return "json" }
func (jsonFormat) Description() string { return "JSON document matching the analysis response" }

func (f jsonFormat) Render(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.indent)
	return enc.Encode(r)
}

type yamlFormat struct{}

func (yamlFormat) Name() string        { return "yaml" }
func (yamlFormat) Description() string { return "YAML document with the same fields as json" }

func (yamlFormat) Render(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
