package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/joshsymonds/policycheck/pkg/logger"
)

//go:embed templates/*
var templateFS embed.FS

type htmlFormat struct {
	logger logger.Logger
	tmpl   *template.Template
}

func newHTMLFormat(log logger.Logger) (*htmlFormat, error) {
	tmpl, err := template.New("report.html").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &htmlFormat{logger: log, tmpl: tmpl}, nil
}

func (f *htmlFormat) Name() string        { return "html" }
func (f *htmlFormat) Description() string { return "Standalone HTML report with per-control details" }

func (f *htmlFormat) Render(w io.Writer, r *Report) error {
	f.logger.Debug("Rendering HTML report", "id", r.ID, "premium", r.Premium)
	if err := f.tmpl.ExecuteTemplate(w, "report.html", r); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"lower": func(v any) string {
			return strings.ToLower(fmt.Sprint(v))
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "unknown"
			}
			return t.UTC().Format("2006-01-02 15:04:05 MST")
		},
		"scoreClass": func(score int) string {
			switch {
			case score >= 70:
				return "good"
			case score >= 40:
				return "fair"
			default:
				return "poor"
			}
		},
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict requires key/value pairs")
			}
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
	}
}
