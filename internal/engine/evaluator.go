package engine

import (
	"fmt"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/internal/rules"
)

// scoreDimension runs one dimension's enabled rules and aggregates their
// contributions onto the 20-point scale. Rules are independent; each one's
// contribution is clamped to its own weight before summing, and the sum is
// normalized by the total enabled weight, so weights need not add up to 20.
// A dimension with zero enabled rules scores the maximum: absence of checks
// is not penalized.
//
// skips maps rule IDs to the optional template role whose column is absent;
// those rules earn full credit with an advisory finding instead of running.
func scoreDimension(ds *datasource.DataSource, dimension string, configs map[string]rules.Config, registry *rules.Registry, weight float64, skips map[string]string) models.DimensionScore {
	score := models.DimensionScore{
		Dimension: dimension,
		MaxScore:  models.MaxDimensionScore,
		Weight:    weight,
		Findings:  []models.Finding{},
	}

	var earned, total float64
	for _, rule := range registry.ForDimension(dimension) {
		cfg, ok := configs[rule.ID()]
		if !ok {
			cfg = rule.DefaultConfig()
		}
		if !cfg.Enabled || cfg.Weight <= 0 {
			continue
		}

		total += cfg.Weight

		if role, skipped := skips[rule.ID()]; skipped {
			earned += cfg.Weight
			score.Findings = append(score.Findings,
				models.NewFinding(rule.ID(), models.SeverityInfo,
					fmt.Sprintf("optional column for role %q is not present; check skipped", role), true).
					WithDetail("role", role).
					WithDetail("skipped", true))
			continue
		}

		result := rule.Evaluate(ds, cfg)

		contribution := result.Score
		if contribution < 0 {
			contribution = 0
		}
		if contribution > cfg.Weight {
			contribution = cfg.Weight
		}
		earned += contribution

		score.Findings = append(score.Findings, result.Findings...)
	}

	if total == 0 {
		score.Score = models.MaxDimensionScore
		return score
	}

	value := models.MaxDimensionScore * earned / total
	if value < 0 {
		value = 0
	}
	if value > models.MaxDimensionScore {
		value = models.MaxDimensionScore
	}
	score.Score = value
	return score
}
