package survey

import (
	"strings"

	"go.uber.org/zap"
)

// Report summarizes what normalization did to an export.
type Report struct {
	Separator      string            `json:"separator" yaml:"separator"`
	Rows           int               `json:"rows" yaml:"rows"`
	SkippedRows    int               `json:"skipped_rows" yaml:"skipped_rows"`
	DroppedColumns int               `json:"dropped_columns" yaml:"dropped_columns"`
	PhoneDefaulted bool              `json:"phone_defaulted" yaml:"phone_defaulted"`
	CleanedColumns []string          `json:"cleaned_columns" yaml:"cleaned_columns"`
	Aliases        []AliasResolution `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Normalize parses raw export text and cleans it into a Frame:
//
//  1. detect the separator
//  2. read rows, skipping malformed lines
//  3. normalize column labels and drop duplicates (leftmost wins)
//  4. pad all-digit phone numbers, or add an empty phone column
//  5. resolve stock_on_hand, price and estimated_weekly_sales aliases
//  6. coerce those three to numbers (0 on failure)
//  7. derive total_sales = price * estimated_weekly_sales (may overflow to ±Inf)
//  8. coerce date, if present
func Normalize(text string) (*Frame, *Report, error) {
	log := zap.L().With(zap.String("component", "survey.normalize"))

	text = strings.TrimPrefix(text, "\ufeff")
	sep := DetectSeparator(text)

	frame, skipped, err := ReadCSV(strings.NewReader(text), CSVOptions{Delimiter: sep})
	if err != nil {
		return nil, nil, err
	}
	if skipped > 0 {
		log.Warn("skipped malformed rows", zap.Int("skipped", skipped))
	}

	report := &Report{
		Separator:   string(sep),
		SkippedRows: skipped,
	}

	NormalizeColumns(frame)
	report.DroppedColumns = DropDuplicateColumns(frame)

	if frame.Has(ColPhone) {
		frame.Map(ColPhone, func(v any) any {
			return NormalizePhone(CellString(v))
		})
	} else {
		report.PhoneDefaulted = true
		frame.AddColumn(ColPhone, "")
	}

	report.CleanedColumns = append([]string(nil), frame.Columns...)

	report.Aliases = ResolveAliases(frame, DefaultAliasRules)
	for _, a := range report.Aliases {
		log.Debug("resolved column",
			zap.String("target", a.Target),
			zap.String("source", a.Source),
			zap.Bool("defaulted", a.Defaulted),
		)
	}

	frame.Map(ColPrice, func(v any) any { return CoerceFloat(v) })
	frame.Map(ColEstimatedWeeklySales, func(v any) any { return CoerceFloat(v) })
	frame.Map(ColStockOnHand, func(v any) any { return CoerceInt(v) })

	priceIdx := frame.Index(ColPrice)
	salesIdx := frame.Index(ColEstimatedWeeklySales)
	frame.SetColumn(ColTotalSales, func(row []any) any {
		return row[priceIdx].(float64) * row[salesIdx].(float64)
	})

	frame.Map(ColDate, func(v any) any { return ParseDate(v) })

	report.Rows = frame.Len()
	log.Info("normalized export",
		zap.String("separator", report.Separator),
		zap.Int("rows", report.Rows),
		zap.Int("skipped", report.SkippedRows),
		zap.Int("columns", len(frame.Columns)),
	)

	return frame, report, nil
}
