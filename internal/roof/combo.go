package roof

import "strconv"

// Combo is the resolved shape of a Selection. Exactly one combination
// exposes height and length; every other one collapses to four fields.
type Combo interface {
	Key() string
	combo()
}

// StandardCombo keys on color, style, material and window count.
type StandardCombo struct {
	Color       string
	Style       string
	Material    string
	WindowCount int
}

// BlueGableTileOneCombo is blue/gable/tile with one window, keyed on a
// 3x3 grid of height and length.
type BlueGableTileOneCombo struct {
	Height int
	Length int
}

func (StandardCombo) combo()         {}
func (BlueGableTileOneCombo) combo() {}

// Key returns "{color}-{style}-{material}-{windows}".
func (c StandardCombo) Key() string {
	return c.Color + "-" + c.Style + "-" + c.Material + "-" + strconv.Itoa(c.WindowCount)
}

// Key returns "blue-gable-tile-1-{height}-{length}".
func (c BlueGableTileOneCombo) Key() string {
	return "blue-gable-tile-1-" + strconv.Itoa(c.Height) + "-" + strconv.Itoa(c.Length)
}

// Combo picks the variant for s.
func (s Selection) Combo() Combo {
	if s.Color == ColorBlue && s.Style == StyleGable && s.Material == MaterialTile && s.WindowCount == 1 {
		return BlueGableTileOneCombo{Height: s.Height, Length: s.Length}
	}
	return StandardCombo{
		Color:       s.Color,
		Style:       s.Style,
		Material:    s.Material,
		WindowCount: s.WindowCount,
	}
}
