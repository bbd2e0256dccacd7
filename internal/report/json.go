package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/pkg/logger"
)

func init() {
	RegisterFormat("json", func(_ logger.Logger) (Format, error) {
		return &jsonFormat{}, nil
	})
}

// jsonFormat emits the canonical machine-readable report. Its output is
// the document the determinism guarantee applies to.
type jsonFormat struct{}

func (f *jsonFormat) Name() string        { return "json" }
func (f *jsonFormat) Description() string { return "Canonical machine-readable report" }

func (f *jsonFormat) Render(w io.Writer, report *models.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
