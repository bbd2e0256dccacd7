// Package storage persists assessment artifacts: reports rendered to a
// local output directory, metadata sidecars next to them, and optional
// publication of the canonical json report to S3.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adri-engine/adri/internal/metadata"
	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/internal/report"
	"github.com/adri-engine/adri/pkg/logger"
)

// extensions maps format names to file extensions.
var extensions = map[string]string{
	"json":     "json",
	"markdown": "md",
	"html":     "html",
	"terminal": "txt",
}

// ReportFileName returns the conventional artifact name for a report in
// one format. Report IDs are deterministic, so re-running the same inputs
// overwrites the same file instead of piling up timestamped copies.
func ReportFileName(r *models.Report, format string) string {
	ext, ok := extensions[format]
	if !ok {
		ext = format
	}
	return fmt.Sprintf("adri-report-%s.%s", r.ID, ext)
}

// SaveReport renders the report in the given format into dir and returns
// the path written.
func SaveReport(dir string, r *models.Report, format string, log logger.Logger) (string, error) {
	f, err := report.GetFormat(format, log)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := f.Render(&buf, r); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, ReportFileName(r, format))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}

// SidecarWriter persists discovery metadata artifacts under a fixed
// directory. It satisfies the engine's MetadataWriter.
type SidecarWriter struct {
	dir string
}

// NewSidecarWriter creates a writer rooted at dir.
func NewSidecarWriter(dir string) *SidecarWriter {
	return &SidecarWriter{dir: dir}
}

// WriteArtifact writes one dimension sidecar and returns its path.
func (w *SidecarWriter) WriteArtifact(source string, artifact *metadata.Artifact) (string, error) {
	return metadata.Save(w.dir, source, artifact)
}
