package survey

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Date layouts accepted for calendar dates. Slash layouts are month first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"2006.01.02",
	"20060102",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Timestamp layouts, most specific first. Kobo writes start/end as ISO 8601
// with milliseconds and a UTC offset. Fractional seconds after the seconds
// field need no layout of their own.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// CellString renders a cell as text. nil renders as "".
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case pgtype.Date:
		if !x.Valid {
			return ""
		}
		return x.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// ParseFloat interprets a cell as a finite float64.
func ParseFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.ContainsAny(s, "xX_") {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceFloat returns the cell as a float64, or 0 when it does not parse.
func CoerceFloat(v any) float64 {
	f, _ := ParseFloat(v)
	return f
}

// ParseInt interprets a cell as a number and truncates it toward zero.
func ParseInt(v any) (int64, bool) {
	if i, ok := v.(int64); ok {
		return i, true
	}
	f, ok := ParseFloat(v)
	if !ok {
		return 0, false
	}
	t := math.Trunc(f)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return 0, false
	}
	return int64(t), true
}

// CoerceInt returns the cell truncated to an int64, or 0 when it does not parse.
func CoerceInt(v any) int64 {
	i, _ := ParseInt(v)
	return i
}

// ParseDate interprets a cell as a calendar date. Date-times are accepted and
// reduced to their date in their own offset. Cells that do not parse yield an
// invalid Date, which loads as NULL.
func ParseDate(v any) pgtype.Date {
	switch x := v.(type) {
	case pgtype.Date:
		return x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return pgtype.Date{}
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return pgtype.Date{Time: t, Valid: true}
			}
		}
		if ts := ParseTimestamp(s); ts.Valid {
			y, m, d := ts.Time.Date()
			return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
		}
	}
	return pgtype.Date{}
}

// ParseTimestamp interprets a cell as a timestamp without time zone. The
// wall-clock time is kept and any offset discarded.
func ParseTimestamp(v any) pgtype.Timestamp {
	s, ok := v.(string)
	if !ok {
		return pgtype.Timestamp{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, mo, d := t.Date()
			h, mi, sec := t.Clock()
			return pgtype.Timestamp{
				Time:  time.Date(y, mo, d, h, mi, sec, t.Nanosecond(), time.UTC),
				Valid: true,
			}
		}
	}
	return pgtype.Timestamp{}
}
