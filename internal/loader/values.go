package loader

import (
	"math"
	"strings"

	"github.com/sells-group/kobo-sync/internal/survey"
)

// sourceIndexes resolves each target column to its position in the frame,
// or -1 when the frame has no such field.
func sourceIndexes(f *survey.Frame) []int {
	idx := make([]int, len(Columns))
	for i, c := range Columns {
		idx[i] = f.Index(c.Source)
	}
	return idx
}

// rowValues builds the positional arguments for one frame row.
func rowValues(row []any, idx []int) []any {
	args := make([]any, len(Columns))
	for i, c := range Columns {
		if idx[i] < 0 || idx[i] >= len(row) {
			continue
		}
		args[i] = cellValue(c, row[idx[i]])
	}
	return args
}

// cellValue converts a frame cell to the value sent for column c.
// Unparseable or empty cells become NULL. Computed float64 cells pass through
// even when infinite, so an overflowed total_sales loads as Infinity.
func cellValue(c Column, v any) any {
	switch c.Kind {
	case KindFloat:
		if f, ok := v.(float64); ok && math.IsInf(f, 0) {
			return f
		}
		if f, ok := survey.ParseFloat(v); ok {
			return f
		}
		return nil
	case KindInt:
		if n, ok := survey.ParseInt(v); ok {
			return n
		}
		return nil
	case KindDate:
		if d := survey.ParseDate(v); d.Valid {
			return d
		}
		return nil
	case KindTimestamp:
		if ts := survey.ParseTimestamp(v); ts.Valid {
			return ts
		}
		return nil
	default:
		s := strings.TrimSpace(survey.CellString(v))
		if s == "" && !c.KeepEmpty {
			return nil
		}
		return s
	}
}
