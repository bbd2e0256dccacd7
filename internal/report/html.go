package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

func init() {
	RegisterFormat("html", func(log logger.Logger) (Format, error) {
		return newHTMLFormat(log)
	})
}

type htmlFormat struct {
	logger logger.Logger
	tmpl   *template.Template
}

func newHTMLFormat(log logger.Logger) (*htmlFormat, error) {
	f := &htmlFormat{logger: log}
	tmpl, err := template.New("report").Funcs(f.templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing html templates: %w", err)
	}
	f.tmpl = tmpl
	return f, nil
}

func (f *htmlFormat) Name() string        { return "html" }
func (f *htmlFormat) Description() string { return "Standalone HTML scorecard" }

func (f *htmlFormat) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"title": cases.Title(language.English).String,
		"score": func(value, max float64) string {
			return fmt.Sprintf("%.1f / %.0f", value, max)
		},
		"pct": func(value, max float64) float64 {
			if max == 0 {
				return 0
			}
			return value / max * 100
		},
		"grade": scoreGrade,
	}
}

// scoreGrade buckets a 0..100 score into a CSS class.
func scoreGrade(score float64) string {
	switch {
	case score >= 80:
		return "good"
	case score >= 60:
		return "fair"
	default:
		return "poor"
	}
}

func (f *htmlFormat) Render(w io.Writer, report *models.Report) error {
	data := struct {
		Report *models.Report
		Failed []models.Finding
	}{
		Report: report,
		Failed: failedFindings(report),
	}
	if err := f.tmpl.ExecuteTemplate(w, "report.html", data); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}
