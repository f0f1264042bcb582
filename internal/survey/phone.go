package survey

import "strings"

// phoneWidth is the minimum width of an all-digit phone number. Local numbers
// in the survey region have nine digits and lose their leading zero when the
// export tool treats them as integers.
const phoneWidth = 9

// NormalizePhone trims a phone value and, when it consists only of ASCII
// digits, left-pads it with zeros to nine characters. Anything else passes
// through trimmed.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if !isDigits(s) || len(s) >= phoneWidth {
		return s
	}
	return strings.Repeat("0", phoneWidth-len(s)) + s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
