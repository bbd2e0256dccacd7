package template

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

var (
	builtinOnce sync.Once
	builtins    map[string]*Template
)

// Parse unmarshals and validates a template document.
func Parse(data []byte) (*Template, error) {
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Load reads and validates a template from a yaml file on disk.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}
	tpl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return tpl, nil
}

func loadBuiltins() {
	builtins = make(map[string]*Template)
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		panic(fmt.Sprintf("template: reading builtin catalog: %v", err))
	}
	for _, entry := range entries {
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			panic(fmt.Sprintf("template: reading builtin %s: %v", entry.Name(), err))
		}
		tpl, err := Parse(data)
		if err != nil {
			panic(fmt.Sprintf("template: builtin %s: %v", entry.Name(), err))
		}
		if _, dup := builtins[tpl.ID]; dup {
			panic(fmt.Sprintf("template: duplicate builtin id %s", tpl.ID))
		}
		builtins[tpl.ID] = tpl
	}
}

// Builtins returns the embedded template catalog sorted by ID.
func Builtins() []*Template {
	builtinOnce.Do(loadBuiltins)
	out := make([]*Template, 0, len(builtins))
	for _, tpl := range builtins {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Find returns the embedded template with the given ID.
func Find(id string) (*Template, error) {
	builtinOnce.Do(loadBuiltins)
	tpl, ok := builtins[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return tpl, nil
}

// Resolve treats the reference as a builtin ID first and a file path
// second, covering both spellings the CLI accepts.
func Resolve(ref string) (*Template, error) {
	if tpl, err := Find(ref); err == nil {
		return tpl, nil
	}
	if _, err := os.Stat(ref); err == nil {
		return Load(ref)
	}
	return nil, fmt.Errorf("%w: %s is neither a builtin ID nor a readable file", ErrUnknownTemplate, ref)
}
