package survey

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter rune // default ','
}

func newCSVReader(data []byte, opts CSVOptions) *csv.Reader {
	reader := csv.NewReader(bytes.NewReader(data))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // field count is checked against the header below
	return reader
}

// ReadCSV reads a header row and all data rows into a Frame. Column labels
// are returned exactly as they appear in the header.
//
// Quotes are parsed strictly. When a record fails to parse, its first
// physical line is re-read on its own with lenient quoting and kept if it has
// the header's width; otherwise that line is skipped. Reading then resumes on
// the following line, so an unclosed quote costs one line instead of the rest
// of the file. Well-formed records whose field count differs from the header
// are skipped. The second return value counts skipped lines.
func ReadCSV(r io.Reader, opts CSVOptions) (*Frame, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, eris.Wrap(err, "survey: read input")
	}

	reader := newCSVReader(data, opts)
	var base int64

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, &ParseError{Reason: "no header row"}
	}
	if err != nil {
		return nil, 0, &ParseError{Reason: "read header", Err: err}
	}

	frame := &Frame{Columns: header}
	skipped := 0
	for {
		start := base + reader.InputOffset()
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		end := base + reader.InputOffset()

		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, skipped, eris.Wrap(err, "survey: read row")
			}

			first, next := firstLine(data, start, end)
			if row, ok := readLenient(data[first:next], opts, len(header)); ok {
				frame.Rows = append(frame.Rows, row)
			} else {
				skipped++
				zap.L().Debug("survey: skipping unparsable line",
					zap.Int("line", lineNumber(data, first)),
					zap.Error(err),
				)
			}

			if next < end {
				base = next
				reader = newCSVReader(data[base:], opts)
			}
			continue
		}

		if len(record) != len(header) {
			skipped++
			first, _ := firstLine(data, start, end)
			zap.L().Debug("survey: skipping malformed row",
				zap.Int("line", lineNumber(data, first)),
				zap.Int("fields", len(record)),
				zap.Int("expected", len(header)),
			)
			continue
		}

		frame.Rows = append(frame.Rows, toRow(record))
	}

	if skipped > 0 && len(frame.Rows) == 0 {
		return nil, skipped, &ParseError{Reason: "every data row was malformed", Skipped: skipped}
	}

	return frame, skipped, nil
}

// firstLine locates the first non-blank physical line in data[start:end]. It
// returns the line's start offset and the offset just past its newline.
func firstLine(data []byte, start, end int64) (int64, int64) {
	for start < end && (data[start] == '\n' || data[start] == '\r') {
		start++
	}
	if nl := bytes.IndexByte(data[start:end], '\n'); nl >= 0 {
		return start, start + int64(nl) + 1
	}
	return start, end
}

// readLenient parses a single line with lazy quotes and reports whether it
// yields exactly width fields.
func readLenient(line []byte, opts CSVOptions, width int) ([]any, bool) {
	line = bytes.TrimRight(line, "\r\n")
	reader := newCSVReader(line, opts)
	reader.LazyQuotes = true
	record, err := reader.Read()
	if err != nil || len(record) != width {
		return nil, false
	}
	return toRow(record), true
}

func lineNumber(data []byte, offset int64) int {
	return bytes.Count(data[:offset], []byte{'\n'}) + 1
}

func toRow(record []string) []any {
	row := make([]any, len(record))
	for i, field := range record {
		row[i] = field
	}
	return row
}
