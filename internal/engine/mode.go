// Package engine runs assessments: it selects the operating mode, binds an
// optional template, fans the five dimension evaluators out over a worker
// pool, aggregates their scores and emits the final report.
package engine

import "github.com/adri-engine/adri/internal/models"

// SelectMode decides the scoring semantics of a run. It is a pure function
// of its two inputs and is decided exactly once per assessment: validation
// when trust metadata exists for the source or a template is bound,
// discovery otherwise.
func SelectMode(metadataPresent, templateBound bool) string {
	if metadataPresent || templateBound {
		return models.ModeValidation
	}
	return models.ModeDiscovery
}
