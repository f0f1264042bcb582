// Package survey parses and normalizes Kobo product-survey CSV exports.
package survey

// Frame is an in-memory table. Each row holds one cell per entry in Columns,
// in the same order. Cells are strings as read from the export until a
// normalization step coerces them.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Index returns the position of the named column, or -1.
func (f *Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the named column exists.
func (f *Frame) Has(name string) bool {
	return f.Index(name) >= 0
}

// RenameAt renames the column at position i.
func (f *Frame) RenameAt(i int, name string) {
	f.Columns[i] = name
}

// AddColumn appends a column with the same value in every row.
func (f *Frame) AddColumn(name string, value any) {
	f.Columns = append(f.Columns, name)
	for i := range f.Rows {
		f.Rows[i] = append(f.Rows[i], value)
	}
}

// SetColumn replaces every value of the named column, appending the column
// first if it does not exist.
func (f *Frame) SetColumn(name string, fn func(row []any) any) {
	idx := f.Index(name)
	if idx < 0 {
		f.AddColumn(name, nil)
		idx = len(f.Columns) - 1
	}
	for _, row := range f.Rows {
		row[idx] = fn(row)
	}
}

// Map rewrites every value of the named column in place. It is a no-op when
// the column is absent.
func (f *Frame) Map(name string, fn func(v any) any) {
	idx := f.Index(name)
	if idx < 0 {
		return
	}
	for _, row := range f.Rows {
		row[idx] = fn(row[idx])
	}
}

// Value returns the cell of row r in the named column.
func (f *Frame) Value(r int, name string) (any, bool) {
	idx := f.Index(name)
	if idx < 0 || r < 0 || r >= len(f.Rows) {
		return nil, false
	}
	return f.Rows[r][idx], true
}

// keepColumns retains only the columns whose positions are listed in keep,
// preserving their order.
func (f *Frame) keepColumns(keep []int) {
	cols := make([]string, len(keep))
	for j, i := range keep {
		cols[j] = f.Columns[i]
	}
	for r, row := range f.Rows {
		out := make([]any, len(keep))
		for j, i := range keep {
			out[j] = row[i]
		}
		f.Rows[r] = out
	}
	f.Columns = cols
}

// Records returns the rows as label-keyed maps.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, len(f.Rows))
	for r, row := range f.Rows {
		rec := make(map[string]any, len(f.Columns))
		for i, c := range f.Columns {
			rec[c] = row[i]
		}
		out[r] = rec
	}
	return out
}
