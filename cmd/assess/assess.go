// Package assess implements the adri assess command.
package assess

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adri-engine/adri/internal/config"
	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/engine"
	"github.com/adri-engine/adri/internal/metadata"
	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/internal/report"
	"github.com/adri-engine/adri/internal/storage"
	"github.com/adri-engine/adri/internal/template"
	"github.com/adri-engine/adri/pkg/logger"
)

var (
	templateRef string
	configFile  string
	metadataDir string
	outputDir   string
	format      string
	sampleSize  int
	asOf        string
	s3Bucket    string
	s3Prefix    string
	minScore    float64
)

// NewAssessCommand creates the assess command.
func NewAssessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess <source.csv|source.json>",
		Short: "Score a data source across the five quality dimensions",
		Long: `Assess scores a tabular data source and prints a report.

Without a template or existing trust metadata the run is a discovery run:
the score reflects intrinsic quality and advisory metadata sidecars are
written next to the source. With a template bound (or sidecars present)
the run validates the source against declared claims instead, and the
template's minimums produce pass/fail verdicts.`,
		Example: `  # Discover the intrinsic quality of a CSV file
  adri assess invoices.csv

  # Validate against a built-in template and gate CI on its minimums
  adri assess invoices.csv --template financial/invoice-processing-v1.0.0

  # Pin the freshness reference instant for reproducible CI runs
  adri assess invoices.csv --as-of 2026-08-31T00:00:00Z

  # Publish the canonical json report to S3
  adri assess invoices.csv --s3-bucket quality-reports --s3-prefix adri`,
		Args: cobra.ExactArgs(1),
		RunE: runAssess,
	}

	cmd.Flags().StringVarP(&templateRef, "template", "t", "", "Template ID or path to a template file")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&metadataDir, "metadata-dir", "", "Directory for trust metadata sidecars (default: config metadata_dir)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to save the rendered report into")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Report format (json, markdown, html, terminal)")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "Cap on sampled rows (default: config sample_size)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Reference instant for freshness checks (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "Publish the json report to this S3 bucket")
	cmd.Flags().StringVar(&s3Prefix, "s3-prefix", "adri", "Key prefix for S3 publication")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Fail with exit code 1 if the overall score is below this")

	return cmd
}

func runAssess(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger()

	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
	}
	if metadataDir != "" {
		cfg.MetadataDir = metadataDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if format != "" {
		cfg.Format = format
	}
	if sampleSize > 0 {
		cfg.SampleSize = sampleSize
	}

	ds, err := datasource.LoadFile(args[0], datasource.WithSampleSize(cfg.SampleSize))
	if err != nil {
		return fmt.Errorf("loading data source: %w", err)
	}

	var tpl *template.Template
	if templateRef != "" {
		tpl, err = template.Resolve(templateRef)
		if err != nil {
			return err
		}
	}

	artifacts, err := metadata.LoadAll(cfg.MetadataDir, ds.Name())
	if err != nil {
		return fmt.Errorf("loading trust metadata: %w", err)
	}

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithDimensionWeights(cfg.DimensionWeights),
		engine.WithRuleOverrides(cfg.Rules),
		engine.WithMetadataArtifacts(artifacts),
		engine.WithMetadataWriter(storage.NewSidecarWriter(cfg.MetadataDir)),
	}
	if asOf != "" {
		instant, perr := parseAsOf(asOf)
		if perr != nil {
			return perr
		}
		opts = append(opts, engine.WithAsOf(instant))
	}

	result, err := engine.NewOrchestrator(opts...).Assess(cmd.Context(), ds, tpl)
	if err != nil {
		return err
	}

	renderer, err := report.GetFormat(cfg.Format, log)
	if err != nil {
		return err
	}
	if err := renderer.Render(os.Stdout, result); err != nil {
		return err
	}

	if cfg.OutputDir != "" {
		path, serr := storage.SaveReport(cfg.OutputDir, result, cfg.Format, log)
		if serr != nil {
			return serr
		}
		log.Info("Report saved", "path", path)
	}

	if s3Bucket != "" {
		publisher, perr := storage.NewS3Publisher(cmd.Context(), s3Bucket, s3Prefix, log)
		if perr != nil {
			return perr
		}
		key, perr := publisher.Publish(cmd.Context(), result)
		if perr != nil {
			return perr
		}
		log.Info("Report published", "bucket", s3Bucket, "key", key)
	}

	return checkGate(result)
}

// checkGate enforces the CI gate: the explicit --min-score flag plus any
// verdicts a bound template produced.
func checkGate(result *models.Report) error {
	if minScore > 0 && result.OverallScore < minScore {
		return fmt.Errorf("quality gate failed: overall score %.1f is below required %.1f", result.OverallScore, minScore)
	}
	if !result.Passed() {
		return fmt.Errorf("quality gate failed: template requirements not met (overall score %.1f)", result.OverallScore)
	}
	return nil
}

func parseAsOf(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --as-of %q: want RFC3339 or YYYY-MM-DD", value)
}
