// Package rules defines the rule contract for quality checks and the
// process-wide registry of built-in rules. A rule is a single testable
// check over a data source producing a bounded score contribution plus
// structured findings. Implementations must be stateless and deterministic:
// identical (data, config) pairs always produce identical results.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
)

// Common errors returned by the rule registry.
var (
	ErrRuleExists  = errors.New("rule already registered")
	ErrUnknownRule = errors.New("unknown rule")
)

// Rule is the contract every quality check implements.
// Implementations must be safe for concurrent use.
type Rule interface {
	// ID returns the unique identifier, keyed "<dimension>.<type>".
	ID() string

	// Dimension returns the quality dimension this rule contributes to.
	Dimension() string

	// Description returns a short human-readable summary of the check.
	Description() string

	// DefaultConfig returns the built-in configuration, including the
	// rule's default point weight within its dimension's 20-point budget.
	DefaultConfig() Config

	// Evaluate runs the check. The returned score must lie in
	// [0, cfg.Weight]; problems degrade to findings, never to panics.
	Evaluate(ds *datasource.DataSource, cfg Config) Result
}

// Result is the outcome of one rule evaluation.
type Result struct {
	Findings []models.Finding
	Score    float64
}

// Registry manages rules in a thread-safe manner. It is populated at
// startup and read-only during assessment runs.
type Registry struct {
	rules map[string]Rule
	mu    sync.RWMutex
}

// NewRegistry creates a new rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule to the registry.
// Returns ErrRuleExists if already registered.
func (r *Registry) Register(rule Rule) error {
	if rule == nil {
		return fmt.Errorf("rule is nil")
	}
	if !models.IsValidDimension(rule.Dimension()) {
		return fmt.Errorf("rule %s has invalid dimension %q", rule.ID(), rule.Dimension())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := rule.ID()
	if _, exists := r.rules[id]; exists {
		return fmt.Errorf("%w: %s", ErrRuleExists, id)
	}

	r.rules[id] = rule
	return nil
}

// MustRegister registers a rule and panics on conflict. Built-in rules use
// this from their init functions.
func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(fmt.Sprintf("rules: %v", err))
	}
}

// Get returns a rule by ID.
func (r *Registry) Get(id string) (Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, exists := r.rules[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, id)
	}
	return rule, nil
}

// List returns all registered rule IDs, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ForDimension returns the rules owned by one dimension, sorted by ID so
// evaluation and report order stay deterministic.
func (r *Registry) ForDimension(dimension string) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Rule
	for _, rule := range r.rules {
		if rule.Dimension() == dimension {
			matched = append(matched, rule)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID() < matched[j].ID() })
	return matched
}

// DefaultRegistry is the global rule registry used by the engine.
// Built-in rules register themselves in their init() functions.
var DefaultRegistry = NewRegistry()

// DefaultConfigs returns the built-in configuration for every registered
// rule, keyed by rule ID.
func (r *Registry) DefaultConfigs() map[string]Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	configs := make(map[string]Config, len(r.rules))
	for id, rule := range r.rules {
		configs[id] = rule.DefaultConfig()
	}
	return configs
}
