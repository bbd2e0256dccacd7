// Package datasource provides the immutable tabular view an assessment runs
// against: ordered, typed columns and a bounded sample of rows. Connectors
// materialize the snapshot up front; the core engine never opens files or
// connections itself.
package datasource

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Common errors returned by data source construction and access.
var (
	ErrNoColumns     = errors.New("data source has no columns")
	ErrRowWidth      = errors.New("row width does not match column count")
	ErrUnknownColumn = errors.New("unknown column")
)

// DefaultSampleSize caps the number of rows retained in a snapshot unless
// overridden. Hosts wanting bounded assessment latency tune this rather
// than interrupting mid-evaluation.
const DefaultSampleSize = 1000

// Type is the inferred or declared logical type of a column.
type Type string

// Logical column types.
const (
	TypeString    Type = "string"
	TypeInteger   Type = "integer"
	TypeFloat     Type = "float"
	TypeBoolean   Type = "boolean"
	TypeDate      Type = "date"
	TypeTimestamp Type = "timestamp"
	TypeUnknown   Type = "unknown"
)

// Column describes one named, typed column.
type Column struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// DataSource is an immutable snapshot of tabular data. It is safe for
// concurrent reads; nothing mutates it after construction.
type DataSource struct {
	index     map[string]int
	name      string
	columns   []Column
	rows      [][]any
	totalRows int
	sampled   bool
}

// Option configures data source construction.
type Option func(*options)

type options struct {
	sampleSize int
}

// WithSampleSize overrides the row sample cap. Values below 1 fall back to
// the default.
func WithSampleSize(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.sampleSize = n
		}
	}
}

// New builds a snapshot from columns and rows, capping rows at the sample
// size. Rows wider or narrower than the column set are rejected.
func New(name string, columns []Column, rows [][]any, opts ...Option) (*DataSource, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}

	o := options{sampleSize: DefaultSampleSize}
	for _, opt := range opts {
		opt(&o)
	}

	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name: %s", col.Name)
		}
		index[col.Name] = i
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRowWidth, i, len(row), len(columns))
		}
	}

	total := len(rows)
	sampled := false
	if total > o.sampleSize {
		rows = rows[:o.sampleSize]
		sampled = true
	}

	return &DataSource{
		name:      name,
		columns:   append([]Column(nil), columns...),
		rows:      rows,
		index:     index,
		totalRows: total,
		sampled:   sampled,
	}, nil
}

// Name returns the source identifier (typically the file basename).
func (d *DataSource) Name() string { return d.name }

// RowCount returns the number of rows in the sample.
func (d *DataSource) RowCount() int { return len(d.rows) }

// TotalRows returns the row count before sampling.
func (d *DataSource) TotalRows() int { return d.totalRows }

// Sampled reports whether rows were dropped to honor the sample cap.
func (d *DataSource) Sampled() bool { return d.sampled }

// Columns returns a copy of the column descriptors in declaration order.
func (d *DataSource) Columns() []Column {
	return append([]Column(nil), d.columns...)
}

// ColumnNames returns the column names in declaration order.
func (d *DataSource) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (d *DataSource) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the descriptor for the named column.
func (d *DataSource) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// Values returns a copy of all sampled cell values for the named column.
func (d *DataSource) Values(name string) ([]any, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	values := make([]any, len(d.rows))
	for r, row := range d.rows {
		values[r] = row[i]
	}
	return values, nil
}

// Cell returns the value at (row, column name).
func (d *DataSource) Cell(row int, name string) (any, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if row < 0 || row >= len(d.rows) {
		return nil, fmt.Errorf("row %d out of range [0,%d)", row, len(d.rows))
	}
	return d.rows[row][i], nil
}

// Fingerprint returns a stable hash of the snapshot contents, used for
// deterministic report identifiers.
func (d *DataSource) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n", d.name)
	for _, col := range d.columns {
		fmt.Fprintf(h, "%s:%s\n", col.Name, col.Type)
	}
	for _, row := range d.rows {
		fmt.Fprintf(h, "%v\n", row)
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
