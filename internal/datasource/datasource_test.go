package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceColumns() []Column {
	return []Column{
		{Name: "invoice_number", Type: TypeString},
		{Name: "amount", Type: TypeFloat},
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		columns []Column
		rows    [][]any
		wantErr error
	}{
		{
			name:    "valid source",
			columns: invoiceColumns(),
			rows:    [][]any{{"INV-001", 10.5}},
		},
		{
			name:    "no columns",
			columns: nil,
			wantErr: ErrNoColumns,
		},
		{
			name:    "row too narrow",
			columns: invoiceColumns(),
			rows:    [][]any{{"INV-001"}},
			wantErr: ErrRowWidth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("test.csv", tt.columns, tt.rows)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	_, err := New("test.csv", []Column{
		{Name: "amount", Type: TypeFloat},
		{Name: "amount", Type: TypeString},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")
}

func TestSampleCap(t *testing.T) {
	rows := make([][]any, 25)
	for i := range rows {
		rows[i] = []any{"INV", float64(i)}
	}

	ds, err := New("test.csv", invoiceColumns(), rows, WithSampleSize(10))
	require.NoError(t, err)

	assert.Equal(t, 10, ds.RowCount())
	assert.Equal(t, 25, ds.TotalRows())
	assert.True(t, ds.Sampled())

	full, err := New("test.csv", invoiceColumns(), rows)
	require.NoError(t, err)
	assert.Equal(t, 25, full.RowCount())
	assert.False(t, full.Sampled())
}

func TestColumnAccess(t *testing.T) {
	ds, err := New("test.csv", invoiceColumns(), [][]any{
		{"INV-001", 10.5},
		{"INV-002", 20.0},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"invoice_number", "amount"}, ds.ColumnNames())
	assert.True(t, ds.HasColumn("amount"))
	assert.False(t, ds.HasColumn("vendor"))

	col, ok := ds.Column("amount")
	require.True(t, ok)
	assert.Equal(t, TypeFloat, col.Type)

	values, err := ds.Values("invoice_number")
	require.NoError(t, err)
	assert.Equal(t, []any{"INV-001", "INV-002"}, values)

	_, err = ds.Values("vendor")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	cell, err := ds.Cell(1, "amount")
	require.NoError(t, err)
	assert.Equal(t, 20.0, cell)

	_, err = ds.Cell(5, "amount")
	assert.Error(t, err)
}

func TestFingerprintIsStable(t *testing.T) {
	rows := [][]any{{"INV-001", 10.5}}

	a, err := New("test.csv", invoiceColumns(), rows)
	require.NoError(t, err)
	b, err := New("test.csv", invoiceColumns(), rows)
	require.NoError(t, err)
	c, err := New("test.csv", invoiceColumns(), [][]any{{"INV-002", 10.5}})
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Len(t, a.Fingerprint(), 16)
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(""))
	assert.True(t, IsNull("  "))
	assert.True(t, IsNull("NULL"))
	assert.True(t, IsNull("n/a"))
	assert.False(t, IsNull("0"))
	assert.False(t, IsNull(0))
	assert.False(t, IsNull(false))
}

func TestCoercions(t *testing.T) {
	f, ok := ToFloat("12.50")
	require.True(t, ok)
	assert.InDelta(t, 12.5, f, 1e-9)

	_, ok = ToFloat("twelve")
	assert.False(t, ok)

	n, ok := ToInt("42")
	require.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok = ToInt(12.5)
	assert.False(t, ok, "fractional floats are not integers")

	tm, ok := ToTime("2026-03-15")
	require.True(t, ok)
	assert.Equal(t, 2026, tm.Year())

	tm, ok = ToTime("2026-03-15T10:30:00Z")
	require.True(t, ok)
	assert.Equal(t, 10, tm.Hour())

	_, ok = ToTime("not a date")
	assert.False(t, ok)
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   Type
	}{
		{"integers", []any{"1", "2", "3"}, TypeInteger},
		{"floats", []any{"1.5", "2.25", "3"}, TypeFloat},
		{"booleans", []any{"true", "false", "true"}, TypeBoolean},
		{"dates", []any{"2026-01-01", "2026-02-01"}, TypeDate},
		{"timestamps", []any{"2026-01-01T10:00:00Z", "2026-02-01T11:30:00Z"}, TypeTimestamp},
		{"strings", []any{"alpha", "beta"}, TypeString},
		{"mixed falls back to string", []any{"1", "alpha", "beta", "gamma"}, TypeString},
		{"nulls ignored", []any{nil, "", "7", "8"}, TypeInteger},
		{"all null", []any{nil, "", "NA"}, TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.values))
		})
	}
}
