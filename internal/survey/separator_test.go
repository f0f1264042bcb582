package survey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSeparator(t *testing.T) {
	tests := []struct {
		name string
		text string
		want rune
	}{
		{name: "comma", text: "a,b,c\n1,2,3\n", want: ','},
		{name: "semicolon", text: "a;b;c\n1;2;3\n", want: ';'},
		{name: "tie favors comma", text: "a;b,c\n", want: ','},
		{name: "empty", text: "", want: ','},
		{name: "no separators", text: "abc\n", want: ','},
		{
			name: "semicolon with commas in free text",
			text: "outlet_code;feedback;price\nOUT1;good, but pricey;10\n",
			want: ';',
		},
		{
			name: "commas in free text outnumber semicolons",
			text: "a;b\nx;one, two, three, four\n",
			want: ',',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSeparator(tt.text))
		})
	}
}

func TestDetectSeparator_OnlyFirst1000Chars(t *testing.T) {
	// 1000 characters of semicolons, then a flood of commas past the window.
	text := strings.Repeat(";", 1000) + strings.Repeat(",", 5000)
	assert.Equal(t, ';', DetectSeparator(text))

	text = strings.Repeat("x", 1000) + strings.Repeat(";", 10)
	assert.Equal(t, ',', DetectSeparator(text))
}

func TestDetectSeparator_CountsCharactersNotBytes(t *testing.T) {
	// 999 two-byte runes then one semicolon: the semicolon is the 1000th character.
	text := strings.Repeat("é", 999) + ";" + strings.Repeat(",", 3)
	assert.Equal(t, ';', DetectSeparator(text))
}
