package datasource

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadFile loads a CSV or JSON-records file based on its extension.
func LoadFile(path string, opts ...Option) (*DataSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, opts...)
	case ".json":
		return LoadJSON(path, opts...)
	default:
		return nil, fmt.Errorf("unsupported data source extension: %s", filepath.Ext(path))
	}
}

// LoadCSV reads a header-rowed CSV file into a snapshot. Cell values are
// kept as strings; column types are inferred from the sample.
func LoadCSV(path string, opts ...Option) (*DataSource, error) {
	f, err := os.Open(path) //nolint:gosec // Path is from trusted source (CLI argument)
	if err != nil {
		return nil, fmt.Errorf("opening data source: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, path)
	}

	header := records[0]
	rows := make([][]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = cell
		}
		rows = append(rows, row)
	}

	columns := inferColumns(header, rows)
	return New(filepath.Base(path), columns, rows, opts...)
}

// LoadJSON reads a file containing an array of flat objects. Column order
// follows first appearance across records; missing keys become nulls.
func LoadJSON(path string, opts ...Option) (*DataSource, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted source (CLI argument)
	if err != nil {
		return nil, fmt.Errorf("reading data source: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing JSON records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, path)
	}

	names := orderedKeys(records)

	rows := make([][]any, len(records))
	for r, record := range records {
		row := make([]any, len(names))
		for i, name := range names {
			row[i] = record[name]
		}
		rows[r] = row
	}

	columns := inferColumns(names, rows)
	return New(filepath.Base(path), columns, rows, opts...)
}

// orderedKeys returns the union of record keys in a deterministic order:
// keys of each record sorted lexicographically, in first-seen record order.
// Map iteration order would otherwise vary between runs.
func orderedKeys(records []map[string]any) []string {
	var names []string
	seen := make(map[string]bool)
	for _, record := range records {
		keys := make([]string, 0, len(record))
		for key := range record {
			if !seen[key] {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			seen[key] = true
			names = append(names, key)
		}
	}
	return names
}
