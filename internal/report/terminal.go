package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/pkg/logger"
)

func init() {
	RegisterFormat("terminal", func(_ logger.Logger) (Format, error) {
		return newTerminalFormat(), nil
	})
}

// terminalFormat renders a compact scorecard for interactive use.
type terminalFormat struct {
	title    cases.Caser
	header   lipgloss.Style
	label    lipgloss.Style
	good     lipgloss.Style
	fair     lipgloss.Style
	poor     lipgloss.Style
	severity map[string]lipgloss.Style
}

func newTerminalFormat() *terminalFormat {
	return &terminalFormat{
		title:  cases.Title(language.English),
		header: lipgloss.NewStyle().Bold(true),
		label:  lipgloss.NewStyle().Faint(true),
		good:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		fair:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		poor:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		severity: map[string]lipgloss.Style{
			models.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
			models.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
			models.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			models.SeverityInfo:     lipgloss.NewStyle().Faint(true),
		},
	}
}

func (f *terminalFormat) Name() string        { return "terminal" }
func (f *terminalFormat) Description() string { return "Colorized scorecard for the terminal" }

const barWidth = 20

func (f *terminalFormat) Render(w io.Writer, report *models.Report) error {
	var b strings.Builder

	b.WriteString(f.header.Render(fmt.Sprintf("Data Quality: %s", report.Source)))
	b.WriteString("\n")
	meta := fmt.Sprintf("report %s  mode %s  methodology v%s", report.ID, report.Mode, report.ADRIVersion)
	if report.TemplateID != "" {
		meta += "  template " + report.TemplateID
	}
	b.WriteString(f.label.Render(meta))
	b.WriteString("\n\n")

	overall := fmt.Sprintf("Overall  %5.1f / %.0f", report.OverallScore, models.MaxOverallScore)
	b.WriteString(f.scoreStyle(report.OverallScore, models.MaxOverallScore).Render(overall))
	b.WriteString("\n\n")

	for _, score := range report.DimensionScores {
		line := fmt.Sprintf("%-13s %5.1f / %.0f  %s",
			f.title.String(score.Dimension), score.Score, score.MaxScore, scoreBar(score.Score, score.MaxScore))
		b.WriteString(f.scoreStyle(score.Score, score.MaxScore).Render(line))
		b.WriteString("\n")
	}

	if len(report.Verdicts) > 0 {
		b.WriteString("\n")
		b.WriteString(f.header.Render("Verdicts"))
		b.WriteString("\n")
		for _, v := range report.Verdicts {
			name := v.Requirement
			if v.Dimension != "" {
				name += " (" + v.Dimension + ")"
			}
			result := f.good.Render("pass")
			if !v.Passed {
				result = f.poor.Render("FAIL")
			}
			fmt.Fprintf(&b, "  %-32s min %5.1f  got %5.1f  %s\n", name, v.Minimum, v.Actual, result)
		}
	}

	if failed := failedFindings(report); len(failed) > 0 {
		b.WriteString("\n")
		b.WriteString(f.header.Render("Findings"))
		b.WriteString("\n")
		for _, finding := range failed {
			style, ok := f.severity[finding.Severity]
			if !ok {
				style = f.label
			}
			fmt.Fprintf(&b, "  %s %s: %s\n", style.Render(fmt.Sprintf("%-8s", finding.Severity)), finding.RuleID, finding.Message)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", f.label.Render(fmt.Sprintf(
		"%d findings: %d passed, %d failed",
		report.Summary.TotalFindings, report.Summary.RulesPassed, report.Summary.RulesFailed)))

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *terminalFormat) scoreStyle(score, max float64) lipgloss.Style {
	if max == 0 {
		return f.label
	}
	switch fraction := score / max; {
	case fraction >= 0.8:
		return f.good
	case fraction >= 0.6:
		return f.fair
	default:
		return f.poor
	}
}

func scoreBar(score, max float64) string {
	if max == 0 {
		return strings.Repeat("░", barWidth)
	}
	filled := int(score / max * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
