package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/adri-engine/adri/internal/datasource"
)

// Binding maps logical roles to the physical columns that satisfy them.
// Required roles that no column satisfied are listed in Unresolved;
// optional ones in OptionalUnresolved.
type Binding struct {
	Columns            map[string]string
	Unresolved         []string
	OptionalUnresolved []string
}

// Resolved returns the physical column bound to a role, if any.
func (b *Binding) Resolved(role string) (string, bool) {
	col, ok := b.Columns[role]
	return col, ok
}

// Complete reports whether every required role found a column.
func (b *Binding) Complete() bool { return len(b.Unresolved) == 0 }

// Match infers which physical columns satisfy the template's logical
// roles. Roles are processed in declaration order, required before
// optional; each role's patterns are tried in order and the first column
// matching any pattern is bound. A column bound to one role is not
// eligible for another. Matching is structural only: column names, never
// cell values.
func (t *Template) Match(ds *datasource.DataSource) (*Binding, error) {
	binding := &Binding{Columns: make(map[string]string)}
	names := ds.ColumnNames()
	taken := make(map[string]bool, len(names))

	bind := func(role string) (bool, error) {
		for _, pattern := range t.ColumnPatterns[role] {
			re, err := compilePattern(pattern)
			if err != nil {
				return false, fmt.Errorf("role %q pattern %q: %w", role, pattern, err)
			}
			for _, name := range names {
				if taken[name] {
					continue
				}
				if matchesColumn(re, name) {
					binding.Columns[role] = name
					taken[name] = true
					return true, nil
				}
			}
		}
		return false, nil
	}

	for _, role := range t.RequiredColumns {
		ok, err := bind(role)
		if err != nil {
			return nil, err
		}
		if !ok {
			binding.Unresolved = append(binding.Unresolved, role)
		}
	}
	for _, role := range t.OptionalColumns {
		ok, err := bind(role)
		if err != nil {
			return nil, err
		}
		if !ok {
			binding.OptionalUnresolved = append(binding.OptionalUnresolved, role)
		}
	}

	return binding, nil
}

// compilePattern makes patterns case-insensitive unless the author already
// opened with an explicit flag group.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "(?") {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

var separators = strings.NewReplacer("-", "_", " ", "_", ".", "_")

// matchesColumn tries the raw column name plus separator-normalized and
// separator-stripped spellings, so invoice_num, InvoiceNumber and
// "Invoice Number" all satisfy a pattern like invoice.*num.
func matchesColumn(re *regexp.Regexp, name string) bool {
	if re.MatchString(name) {
		return true
	}
	normalized := separators.Replace(name)
	if normalized != name && re.MatchString(normalized) {
		return true
	}
	stripped := strings.ReplaceAll(normalized, "_", "")
	return stripped != normalized && re.MatchString(stripped)
}
