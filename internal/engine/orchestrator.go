package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/metadata"
	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/internal/rules"
	"github.com/adri-engine/adri/internal/template"
	"github.com/adri-engine/adri/internal/version"
	"github.com/adri-engine/adri/pkg/logger"
)

// Fatal errors surfaced before any score is produced.
var (
	ErrEmptySource    = errors.New("data source is empty or absent")
	ErrInvalidWeights = errors.New("invalid dimension weights")
)

// MetadataWriter persists discovery artifacts. The orchestrator never
// touches the filesystem itself.
type MetadataWriter interface {
	WriteArtifact(source string, artifact *metadata.Artifact) (string, error)
}

// Orchestrator drives one assessment end to end. It holds no per-run
// mutable state and is safe for concurrent use across data sources.
type Orchestrator struct {
	logger          logger.Logger
	registry        *rules.Registry
	writer          MetadataWriter
	weights         map[string]float64
	overrides       map[string]rules.Override
	artifacts       map[string]*metadata.Artifact
	asOf            time.Time
	maxWorkers      int
	metadataPresent bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger overrides the global logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithRegistry swaps the rule registry, mainly for tests.
func WithRegistry(r *rules.Registry) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithWorkers caps the dimension evaluator pool.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 {
			o.maxWorkers = n
		}
	}
}

// WithAsOf pins the reference instant freshness rules measure age against.
// Without it, freshness anchors on the newest value in each date column.
func WithAsOf(t time.Time) Option {
	return func(o *Orchestrator) { o.asOf = t }
}

// WithDimensionWeights overrides the default aggregation weight of 1.0 per
// dimension. These win over template-declared weights.
func WithDimensionWeights(weights map[string]float64) Option {
	return func(o *Orchestrator) {
		for dimension, w := range weights {
			o.weights[dimension] = w
		}
	}
}

// WithRuleOverrides layers user rule configuration, keyed
// "<dimension>.<type>", on top of defaults and template configuration.
func WithRuleOverrides(overrides map[string]rules.Override) Option {
	return func(o *Orchestrator) { o.overrides = overrides }
}

// WithMetadataWriter enables sidecar persistence for discovery runs.
func WithMetadataWriter(w MetadataWriter) Option {
	return func(o *Orchestrator) { o.writer = w }
}

// WithMetadataPresent tells the mode selector that trust metadata already
// exists for the source. Callers probe this with metadata.Detect.
func WithMetadataPresent(present bool) Option {
	return func(o *Orchestrator) { o.metadataPresent = present }
}

// WithMetadataArtifacts feeds previously generated sidecars, keyed by
// dimension, into the run. Their facts become declared claims the rules
// verify, and their presence flips the run into validation mode. Callers
// load them with metadata.LoadAll.
func WithMetadataArtifacts(artifacts map[string]*metadata.Artifact) Option {
	return func(o *Orchestrator) {
		if len(artifacts) > 0 {
			o.artifacts = artifacts
			o.metadataPresent = true
		}
	}
}

// NewOrchestrator creates an orchestrator with default settings.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:     logger.GetGlobalLogger(),
		registry:   rules.DefaultRegistry,
		weights:    make(map[string]float64),
		maxWorkers: 3,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Assess scores one data source, optionally against a template, and
// returns the report. Identical (data source, configuration, template,
// as-of) inputs yield byte-identical marshaled reports.
func (o *Orchestrator) Assess(ctx context.Context, ds *datasource.DataSource, tpl *template.Template) (*models.Report, error) {
	if ds == nil || ds.RowCount() == 0 {
		return nil, ErrEmptySource
	}

	mode := SelectMode(o.metadataPresent, tpl != nil)
	runID := uuid.NewString()
	log := o.logger.With("run_id", runID, "source", ds.Name(), "mode", mode)

	weights, err := o.resolveWeights(tpl)
	if err != nil {
		return nil, err
	}

	var (
		binding    *template.Binding
		templateID string
		skipRoles  map[string]string
	)
	layers := make([]map[string]rules.Override, 0, 3)
	if len(o.artifacts) > 0 {
		layers = append(layers, claimOverrides(o.artifacts))
	}
	if tpl != nil {
		templateID = tpl.ID
		binding, err = tpl.Match(ds)
		if err != nil {
			return nil, fmt.Errorf("binding template %s: %w", tpl.ID, err)
		}
		if !binding.Complete() {
			log.Warn("Template roles unresolved", "template", tpl.ID, "roles", binding.Unresolved)
		}
		overrides, skips := tpl.Overrides(binding)
		layers = append(layers, overrides)
		if len(skips) > 0 {
			skipRoles = make(map[string]string, len(skips))
			for _, skip := range skips {
				skipRoles[skip.RuleID] = skip.Role
			}
		}
	}
	if len(o.overrides) > 0 {
		layers = append(layers, o.overrides)
	}

	configs := rules.ApplyOverrides(o.registry.DefaultConfigs(), layers...)
	o.injectRunParams(configs, mode)

	log.Info("Starting assessment", "rows", ds.RowCount(), "columns", len(ds.ColumnNames()), "template", templateID)

	scores, err := o.runEvaluators(ctx, ds, configs, weights, skipRoles)
	if err != nil {
		return nil, err
	}

	if binding != nil && !binding.Complete() {
		attachUnresolvedFindings(scores, binding.Unresolved)
	}

	report := &models.Report{
		Source:          ds.Name(),
		Mode:            mode,
		ADRIVersion:     version.Version,
		TemplateID:      templateID,
		DimensionScores: scores,
		OverallScore:    overallScore(scores),
	}

	if tpl != nil {
		report.Verdicts = buildVerdicts(report, tpl)
	}

	if mode == models.ModeDiscovery {
		o.generateMetadata(ds, report, log)
	}

	report.Summary = summarize(scores)
	report.ID = models.GenerateReportID(ds.Fingerprint(), mode, templateID, version.Version)

	log.Info("Assessment complete", "report_id", report.ID, "overall_score", report.OverallScore, "passed", report.Passed())
	return report, nil
}

// resolveWeights merges dimension aggregation weights with precedence
// default < template < user and rejects negative or non-finite values
// before any dimension runs.
func (o *Orchestrator) resolveWeights(tpl *template.Template) (map[string]float64, error) {
	resolved := make(map[string]float64, len(models.Dimensions()))
	for _, dimension := range models.Dimensions() {
		resolved[dimension] = 1.0
	}
	if tpl != nil {
		for dimension, w := range tpl.DimensionWeights() {
			resolved[dimension] = w
		}
	}
	for dimension, w := range o.weights {
		if !models.IsValidDimension(dimension) {
			return nil, fmt.Errorf("%w: unknown dimension %q", ErrInvalidWeights, dimension)
		}
		resolved[dimension] = w
	}

	total := 0.0
	for dimension, w := range resolved {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: %s = %v", ErrInvalidWeights, dimension, w)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: all dimension weights are zero", ErrInvalidWeights)
	}
	return resolved, nil
}

// injectRunParams threads run-level knobs into the merged rule configs
// without clobbering anything a template or user set explicitly: the
// freshness reference instant, and whether business-logic checks run at
// all (validation runs verify declared claims; discovery sticks to
// intrinsic statistics).
func (o *Orchestrator) injectRunParams(configs map[string]rules.Config, mode string) {
	for id, cfg := range configs {
		changed := false
		params := cfg.Params
		if params == nil {
			params = rules.Params{}
		}

		if !o.asOf.IsZero() && strings.HasPrefix(id, models.DimensionFreshness+".") && !params.Has("as_of") {
			params["as_of"] = o.asOf
			changed = true
		}
		if id == "plausibility.business_logic" && !params.Has("business_checks_enabled") {
			params["business_checks_enabled"] = mode == models.ModeValidation
			changed = true
		}

		if changed {
			cfg.Params = params
			configs[id] = cfg
		}
	}
}

// runEvaluators fans the five dimensions out over a worker pool and merges
// the results back into canonical report order. No partial aggregation:
// every dimension completes before anything downstream runs.
func (o *Orchestrator) runEvaluators(ctx context.Context, ds *datasource.DataSource, configs map[string]rules.Config, weights map[string]float64, skips map[string]string) ([]models.DimensionScore, error) {
	dimensions := models.Dimensions()
	jobs := make(chan string, len(dimensions))
	results := make(chan models.DimensionScore, len(dimensions))

	workers := o.maxWorkers
	if workers > len(dimensions) {
		workers = len(dimensions)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dimension := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- scoreDimension(ds, dimension, configs, o.registry, weights[dimension], skips)
			}
		}()
	}

	for _, dimension := range dimensions {
		jobs <- dimension
	}
	close(jobs)

	wg.Wait()
	close(results)

	byDimension := make(map[string]models.DimensionScore, len(dimensions))
	for score := range results {
		byDimension[score.Dimension] = score
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(byDimension) != len(dimensions) {
		return nil, fmt.Errorf("evaluator pool finished with %d of %d dimensions", len(byDimension), len(dimensions))
	}

	scores := make([]models.DimensionScore, len(dimensions))
	for i, dimension := range dimensions {
		scores[i] = byDimension[dimension]
	}
	return scores, nil
}

// attachUnresolvedFindings records every unbound required role as a
// critical completeness finding. The run continues degraded; rules
// configured with the unbound role degrade on their own missing-column
// path.
func attachUnresolvedFindings(scores []models.DimensionScore, unresolved []string) {
	for i := range scores {
		if scores[i].Dimension != models.DimensionCompleteness {
			continue
		}
		for _, role := range unresolved {
			scores[i].Findings = append(scores[i].Findings,
				models.NewFinding("completeness.template_match", models.SeverityCritical,
					fmt.Sprintf("no column satisfies required template role %q", role), false).
					WithDetail("role", role).
					WithDetail("unresolved", true))
		}
	}
}

// overallScore renormalizes the weighted dimension scores to 0..100.
func overallScore(scores []models.DimensionScore) float64 {
	var earned, possible float64
	for _, score := range scores {
		earned += score.Score * score.Weight
		possible += models.MaxDimensionScore * score.Weight
	}
	if possible == 0 {
		return 0
	}
	overall := earned / possible * models.MaxOverallScore
	if overall < 0 {
		return 0
	}
	if overall > models.MaxOverallScore {
		return models.MaxOverallScore
	}
	return overall
}

// buildVerdicts compares computed scores against template minimums.
// Verdicts are advisory metadata; the numeric scores are never altered.
func buildVerdicts(report *models.Report, tpl *template.Template) []models.Verdict {
	var verdicts []models.Verdict
	if minimum := tpl.Requirements.OverallMinimum; minimum > 0 {
		verdicts = append(verdicts, models.Verdict{
			Requirement: "overall_minimum",
			Minimum:     minimum,
			Actual:      report.OverallScore,
			Passed:      report.OverallScore >= minimum,
		})
	}

	minimums := tpl.DimensionMinimums()
	dimensions := make([]string, 0, len(minimums))
	for dimension := range minimums {
		dimensions = append(dimensions, dimension)
	}
	sort.Strings(dimensions)

	for _, dimension := range dimensions {
		score, ok := report.Dimension(dimension)
		if !ok {
			continue
		}
		verdicts = append(verdicts, models.Verdict{
			Requirement: "dimension_minimum",
			Dimension:   dimension,
			Minimum:     minimums[dimension],
			Actual:      score.Score,
			Passed:      score.Score >= minimums[dimension],
		})
	}
	return verdicts
}

// lowConfidenceThreshold marks generated facts worth a second look.
const lowConfidenceThreshold = 0.5

// generateMetadata builds the per-dimension advisory artifacts, attaches
// them to the report and, when a writer is configured, persists them as
// sidecars.
func (o *Orchestrator) generateMetadata(ds *datasource.DataSource, report *models.Report, log logger.Logger) {
	for i := range report.DimensionScores {
		dimension := report.DimensionScores[i].Dimension
		artifact := metadata.Generate(ds, dimension)
		report.DimensionScores[i].GeneratedMetadata = artifact

		for _, fact := range artifact.Facts {
			if fact.Confidence < lowConfidenceThreshold {
				report.DimensionScores[i].Findings = append(report.DimensionScores[i].Findings,
					models.NewFinding("metadata.confidence", models.SeverityInfo,
						fmt.Sprintf("generated fact %q has low confidence %.2f", fact.Name, fact.Confidence), true).
						WithDetail("fact", fact.Name).
						WithDetail("confidence", fact.Confidence))
			}
		}

		if o.writer == nil {
			continue
		}
		path, err := o.writer.WriteArtifact(ds.Name(), artifact)
		if err != nil {
			log.Error("Writing metadata sidecar failed", "dimension", dimension, "error", err)
			continue
		}
		report.MetadataPaths = append(report.MetadataPaths, path)
	}
}

// summarize tallies findings across all dimensions.
func summarize(scores []models.DimensionScore) models.ReportSummary {
	summary := models.ReportSummary{BySeverity: make(map[string]int)}
	for _, score := range scores {
		for _, finding := range score.Findings {
			summary.TotalFindings++
			summary.BySeverity[finding.Severity]++
			if finding.Passed {
				summary.RulesPassed++
			} else {
				summary.RulesFailed++
			}
		}
	}
	return summary
}
