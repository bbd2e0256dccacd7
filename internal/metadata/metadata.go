// Package metadata implements the advisory trust artifacts a discovery run
// leaves behind: one yaml sidecar per dimension describing detected types,
// ranges and formats with a confidence value per fact. Sidecars are never
// authoritative until reviewed by a human or promoted into a template, but
// their presence on disk flips a later run of the same source into
// validation mode.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adri-engine/adri/internal/models"
)

// advisoryComment marks every artifact as machine-generated and subject to
// human review.
const advisoryComment = "Generated by ADRI discovery. Advisory only; review before relying on these facts."

// Fact is one detected property of the data source with a confidence value
// in [0,1].
type Fact struct {
	Name       string
	Value      any
	Confidence float64
}

// Artifact is the per-dimension sidecar content.
type Artifact struct {
	Dimension string
	Comment   string
	Explicit  bool
	Facts     []Fact
}

// ExplicitKey returns the yaml key marking whether the artifact carries
// explicit, human-reviewed information for its dimension.
func (a *Artifact) ExplicitKey() string {
	return fmt.Sprintf("has_explicit_%s_info", a.Dimension)
}

// Fact returns a named fact, if present.
func (a *Artifact) Fact(name string) (Fact, bool) {
	for _, f := range a.Facts {
		if f.Name == name {
			return f, true
		}
	}
	return Fact{}, false
}

// doc renders the artifact as a plain map. Both yaml.v3 and encoding/json
// marshal map keys sorted, which keeps sidecars and reports byte-stable.
func (a *Artifact) doc() map[string]any {
	facts := make(map[string]any, len(a.Facts))
	for _, f := range a.Facts {
		facts[f.Name] = map[string]any{
			"value":      f.Value,
			"confidence": f.Confidence,
		}
	}
	return map[string]any{
		"_comment":      a.Comment,
		a.ExplicitKey(): a.Explicit,
		"facts":         facts,
	}
}

// MarshalYAML implements yaml.Marshaler.
func (a *Artifact) MarshalYAML() (any, error) { return a.doc(), nil }

// MarshalJSON implements json.Marshaler, used when the artifact is embedded
// in a report's dimension score.
func (a *Artifact) MarshalJSON() ([]byte, error) { return json.Marshal(a.doc()) }

// SidecarPath returns the on-disk location of one dimension's sidecar for
// a source.
func SidecarPath(dir, source, dimension string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s.adri.yaml", source, dimension))
}

// Detect reports whether any dimension sidecar exists for the source. Its
// result feeds the mode selector.
func Detect(dir, source string) bool {
	for _, dimension := range models.Dimensions() {
		if _, err := os.Stat(SidecarPath(dir, source, dimension)); err == nil {
			return true
		}
	}
	return false
}

// LoadAll reads every dimension sidecar present for the source, keyed by
// dimension. An empty map means no trust metadata exists; a sidecar that
// exists but does not parse is an error, not an absence.
func LoadAll(dir, source string) (map[string]*Artifact, error) {
	artifacts := make(map[string]*Artifact)
	for _, dimension := range models.Dimensions() {
		path := SidecarPath(dir, source, dimension)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		artifact, err := Load(path)
		if err != nil {
			return nil, err
		}
		artifacts[artifact.Dimension] = artifact
	}
	return artifacts, nil
}

// Load reads a sidecar back. The dimension is recovered from the
// has_explicit_<dimension>_info key.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sidecar %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing sidecar %s: %w", path, err)
	}

	artifact := &Artifact{}
	for key, value := range doc {
		switch {
		case key == "_comment":
			artifact.Comment, _ = value.(string)
		case strings.HasPrefix(key, "has_explicit_") && strings.HasSuffix(key, "_info"):
			artifact.Dimension = strings.TrimSuffix(strings.TrimPrefix(key, "has_explicit_"), "_info")
			artifact.Explicit, _ = value.(bool)
		case key == "facts":
			artifact.Facts = parseFacts(value)
		}
	}
	if artifact.Dimension == "" {
		return nil, fmt.Errorf("sidecar %s carries no has_explicit_<dimension>_info key", path)
	}
	return artifact, nil
}

func parseFacts(raw any) []Fact {
	entries, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	facts := make([]Fact, 0, len(entries))
	for name, entry := range entries {
		fact := Fact{Name: name}
		if m, ok := entry.(map[string]any); ok {
			fact.Value = m["value"]
			switch c := m["confidence"].(type) {
			case float64:
				fact.Confidence = c
			case int:
				fact.Confidence = float64(c)
			}
		}
		facts = append(facts, fact)
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].Name < facts[j].Name })
	return facts
}
