package roof

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Line is one labelled row of the configuration summary.
type Line struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary echoes a Selection for display.
type Summary []Line

// Summary builds the display lines for s. Height and Length are only
// listed while their controls are shown.
func (s Selection) Summary() Summary {
	out := Summary{
		{Label: "Color", Value: Capitalize(s.Color)},
		{Label: "Style", Value: Capitalize(s.Style)},
		{Label: "Material", Value: Capitalize(s.Material)},
		{Label: "Windows", Value: strconv.Itoa(s.WindowCount)},
	}
	if s.ShowsDimensions() {
		out = append(out,
			Line{Label: "Height", Value: strconv.Itoa(s.Height)},
			Line{Label: "Length", Value: strconv.Itoa(s.Length)},
		)
	}
	return out
}

// String renders the summary one "Label: Value" per line.
func (sm Summary) String() string {
	var b strings.Builder
	for i, l := range sm {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Label)
		b.WriteString(": ")
		b.WriteString(l.Value)
	}
	return b.String()
}

// Capitalize upper-cases the first rune of v.
func Capitalize(v string) string {
	r, size := utf8.DecodeRuneInString(v)
	if r == utf8.RuneError {
		return v
	}
	return string(unicode.ToUpper(r)) + v[size:]
}
