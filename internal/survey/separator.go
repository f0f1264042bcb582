package survey

import "strings"

// sniffWindow is the number of leading characters inspected by DetectSeparator.
const sniffWindow = 1000

// DetectSeparator picks the field separator of a CSV export by counting
// semicolons and commas in its first 1000 characters. Semicolon wins only
// when strictly more frequent; ties go to comma.
//
// A semicolon export whose first rows carry more commas in free text than
// semicolons will be misdetected as comma-separated.
func DetectSeparator(text string) rune {
	sample := text
	n := 0
	for i := range text {
		if n == sniffWindow {
			sample = text[:i]
			break
		}
		n++
	}

	if strings.Count(sample, ";") > strings.Count(sample, ",") {
		return ';'
	}
	return ','
}
