package model

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// Column is a named, typed sequence of values. A Column is never modified after
// construction, so tables may share columns freely.
type Column struct {
	name   string
	kind   Kind
	values []Value
}

// NewColumn creates a new Column. The values slice is copied.
func NewColumn(name string, kind Kind, values []Value) *Column {
	vs := make([]Value, len(values))
	copy(vs, values)
	return &Column{
		name:   name,
		kind:   kind,
		values: vs,
	}
}

// Name returns column name.
func (c *Column) Name() string {
	return c.name
}

// Kind returns column kind.
func (c *Column) Kind() Kind {
	return c.kind
}

// Len returns the number of values.
func (c *Column) Len() int {
	return len(c.values)
}

// Value returns the i-th value.
func (c *Column) Value(i int) Value {
	return c.values[i]
}

// Values returns a copy of the column values.
func (c *Column) Values() []Value {
	vs := make([]Value, len(c.values))
	copy(vs, c.values)
	return vs
}

// NullCount returns the number of null values.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// Integral reports whether every non-null value is a whole number.
func (c *Column) Integral() bool {
	if c.kind != KindNumeric {
		return false
	}
	for _, v := range c.values {
		if f, ok := v.Float(); ok && (f != math.Trunc(f) || math.Abs(f) >= 1<<63) {
			return false
		}
	}
	return true
}

// SQLType returns the SQL column type. Integral numeric columns are stored as INTEGER.
func (c *Column) SQLType() string {
	if c.kind == KindNumeric && c.Len() > 0 && c.Integral() {
		return sqlTypeInteger
	}
	return c.kind.SQLType()
}

// withName returns a copy of c sharing its values under another name.
func (c *Column) withName(name string) *Column {
	return &Column{name: name, kind: c.kind, values: c.values}
}

// selectRows returns a new column holding only the given rows.
func (c *Column) selectRows(rows []int) *Column {
	vs := make([]Value, len(rows))
	for i, r := range rows {
		vs[i] = c.values[r]
	}
	return &Column{name: c.name, kind: c.kind, values: vs}
}

// Table represents an in-memory dataset as an ordered list of equal-length columns.
type Table struct {
	// name is table name, usually derived from file path.
	name string
	// columns in display order.
	columns []*Column
	// rows is the shared row count.
	rows int
}

// NewTable create new Table. All columns must have the same length and unique names.
func NewTable(name string, columns ...*Column) (*Table, error) {
	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Len()
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if c.Len() != rows {
			return nil, fmt.Errorf("%w: column %q has %d values, expected %d", ErrColumnLength, c.Name(), c.Len(), rows)
		}
		if seen[c.Name()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumnName, c.Name())
		}
		seen[c.Name()] = true
	}
	cols := make([]*Column, len(columns))
	copy(cols, columns)
	return &Table{
		name:    name,
		columns: cols,
		rows:    rows,
	}, nil
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) {
	return t.rows, len(t.columns)
}

// Header return column names in order.
func (t *Table) Header() Header {
	h := make(Header, len(t.columns))
	for i, c := range t.columns {
		h[i] = c.Name()
	}
	return h
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	cols := make([]*Column, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) *Column {
	return t.columns[i]
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c.Name() == name {
			return i
		}
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil, false
	}
	return t.columns[i], true
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.values[i]
	}
	return row
}

// NullCount returns the number of null cells in the whole table.
func (t *Table) NullCount() int {
	n := 0
	for _, c := range t.columns {
		n += c.NullCount()
	}
	return n
}

// SelectRows returns a new table holding the given rows, in the given order.
func (t *Table) SelectRows(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.selectRows(rows)
	}
	return &Table{name: t.name, columns: cols, rows: len(rows)}
}

// ReplaceColumn returns a new table where the i-th column is replaced.
func (t *Table) ReplaceColumn(i int, c *Column) (*Table, error) {
	if i < 0 || i >= len(t.columns) {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownColumn, i)
	}
	cols := t.Columns()
	cols[i] = c
	return NewTable(t.name, cols...)
}

// Rename returns a new table with every column renamed, positionally.
func (t *Table) Rename(names []string) (*Table, error) {
	if len(names) != len(t.columns) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrColumnLength, len(names), len(t.columns))
	}
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.withName(names[i])
	}
	return NewTable(t.name, cols...)
}

// Equal compare Table.
func (t *Table) Equal(t2 *Table) bool {
	if t.Name() != t2.Name() {
		return false
	}
	if !t.Header().Equal(t2.Header()) {
		return false
	}
	if t.NumRows() != t2.NumRows() {
		return false
	}
	for i, c := range t.columns {
		c2 := t2.columns[i]
		if c.Kind() != c2.Kind() {
			return false
		}
		for r := range c.values {
			if !c.values[r].Equal(c2.values[r]) {
				return false
			}
		}
	}
	return true
}

// TableFromFilePath creates table name from file path
func TableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	// Remove compression extensions first
	for _, ext := range []string{".gz", ".bz2", ".xz", ".zst"} {
		if strings.HasSuffix(fileName, ext) {
			fileName = strings.TrimSuffix(fileName, ext)
			break
		}
	}
	// Then remove the file type extension
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
