// Package report renders assessment reports. Renderers register themselves
// in a process-wide format registry so hosts can add their own without
// touching the engine.
package report

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/pkg/logger"
)

// Format represents a report rendering strategy.
type Format interface {
	// Render writes the report to w.
	Render(w io.Writer, report *models.Report) error
	// Name returns the format identifier (e.g., "json", "markdown").
	Name() string
	// Description returns a human-readable description of the format.
	Description() string
}

// FormatFactory creates instances of report formats.
type FormatFactory func(log logger.Logger) (Format, error)

var (
	formatRegistry = make(map[string]FormatFactory)
	registryMutex  sync.RWMutex
)

// RegisterFormat registers a new report format factory.
func RegisterFormat(name string, factory FormatFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if factory == nil {
		panic(fmt.Sprintf("report: RegisterFormat factory is nil for format %q", name))
	}
	if _, dup := formatRegistry[name]; dup {
		panic(fmt.Sprintf("report: RegisterFormat called twice for format %q", name))
	}
	formatRegistry[name] = factory
}

// GetFormat creates an instance of the specified report format.
func GetFormat(name string, log logger.Logger) (Format, error) {
	registryMutex.RLock()
	factory, exists := formatRegistry[name]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown report format: %s", name)
	}
	return factory(log)
}

// ListFormats returns all registered format names, sorted.
func ListFormats() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	formats := make([]string, 0, len(formatRegistry))
	for name := range formatRegistry {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}
