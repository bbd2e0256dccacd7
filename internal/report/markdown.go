package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/pkg/logger"
)

func init() {
	RegisterFormat("markdown", func(_ logger.Logger) (Format, error) {
		return &markdownFormat{title: cases.Title(language.English)}, nil
	})
}

type markdownFormat struct {
	title cases.Caser
}

func (f *markdownFormat) Name() string        { return "markdown" }
func (f *markdownFormat) Description() string { return "Markdown summary for docs and pull requests" }

func (f *markdownFormat) Render(w io.Writer, report *models.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Quality Report: %s\n\n", report.Source)
	fmt.Fprintf(&b, "- **Report ID**: `%s`\n", report.ID)
	fmt.Fprintf(&b, "- **Mode**: %s\n", report.Mode)
	fmt.Fprintf(&b, "- **Methodology version**: %s\n", report.ADRIVersion)
	if report.TemplateID != "" {
		fmt.Fprintf(&b, "- **Template**: `%s`\n", report.TemplateID)
	}
	fmt.Fprintf(&b, "- **Overall score**: **%.1f / %.0f**\n\n", report.OverallScore, models.MaxOverallScore)

	b.WriteString("## Dimensions\n\n")
	b.WriteString("| Dimension | Score | Weight |\n")
	b.WriteString("|---|---|---|\n")
	for _, score := range report.DimensionScores {
		fmt.Fprintf(&b, "| %s | %.1f / %.0f | %.1f |\n",
			f.title.String(score.Dimension), score.Score, score.MaxScore, score.Weight)
	}
	b.WriteString("\n")

	if len(report.Verdicts) > 0 {
		b.WriteString("## Verdicts\n\n")
		b.WriteString("| Requirement | Minimum | Actual | Passed |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, v := range report.Verdicts {
			name := v.Requirement
			if v.Dimension != "" {
				name = fmt.Sprintf("%s (%s)", v.Requirement, v.Dimension)
			}
			fmt.Fprintf(&b, "| %s | %.1f | %.1f | %s |\n", name, v.Minimum, v.Actual, passMark(v.Passed))
		}
		b.WriteString("\n")
	}

	failed := failedFindings(report)
	if len(failed) > 0 {
		b.WriteString("## Findings\n\n")
		for _, finding := range failed {
			fmt.Fprintf(&b, "- **%s** `%s`: %s\n", finding.Severity, finding.RuleID, finding.Message)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "_%d findings total: %d passed, %d failed._\n",
		report.Summary.TotalFindings, report.Summary.RulesPassed, report.Summary.RulesFailed)

	if len(report.MetadataPaths) > 0 {
		b.WriteString("\n## Generated Metadata\n\n")
		for _, path := range report.MetadataPaths {
			fmt.Fprintf(&b, "- `%s`\n", path)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func passMark(passed bool) string {
	if passed {
		return "yes"
	}
	return "no"
}

// failedFindings filters for the findings worth surfacing in a summary.
func failedFindings(report *models.Report) []models.Finding {
	var failed []models.Finding
	for _, finding := range report.Findings() {
		if !finding.Passed {
			failed = append(failed, finding)
		}
	}
	return failed
}
