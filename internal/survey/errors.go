package survey

import "fmt"

// ParseError reports an export that yielded no usable rows.
type ParseError struct {
	Reason  string
	Skipped int
	Err     error
}

func (e *ParseError) Error() string {
	msg := "survey: parse failure: " + e.Reason
	if e.Skipped > 0 {
		msg += fmt.Sprintf(" (%d malformed rows skipped)", e.Skipped)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
