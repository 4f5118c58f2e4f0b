package roof

// Bounds of every numeric control (window count, height, length).
const (
	MinValue = 1
	MaxValue = 3
)

// Recognized choices.
const (
	ColorBlue    = "blue"
	ColorRed     = "red"
	ColorGray    = "gray"
	StyleGable   = "gable"
	StyleHip     = "hip"
	MaterialTile = "tile"
)

// Selection is one immutable snapshot of the user's roof configuration.
// Height and Length only matter for the blue gable tile single-window combo.
type Selection struct {
	Color       string `json:"color" yaml:"color"`
	Style       string `json:"style" yaml:"style"`
	Material    string `json:"material" yaml:"material"`
	WindowCount int    `json:"window_count" yaml:"window_count"`
	Height      int    `json:"height" yaml:"height"`
	Length      int    `json:"length" yaml:"length"`
}

// DefaultSelection is the configuration shown before any interaction.
func DefaultSelection() Selection {
	return Selection{
		Color:       ColorBlue,
		Style:       StyleGable,
		Material:    MaterialTile,
		WindowCount: 1,
		Height:      1,
		Length:      1,
	}
}

// Update carries a control change. Nil fields are left untouched.
type Update struct {
	Color       *string
	Style       *string
	Material    *string
	WindowCount *int
	Height      *int
	Length      *int
}

// Apply returns a new snapshot with u applied. Numeric fields are clamped
// to [MinValue, MaxValue] the same way the sliders would.
func (s Selection) Apply(u Update) Selection {
	out := s
	if u.Color != nil {
		out.Color = *u.Color
	}
	if u.Style != nil {
		out.Style = *u.Style
	}
	if u.Material != nil {
		out.Material = *u.Material
	}
	if u.WindowCount != nil {
		out.WindowCount = Clamp(*u.WindowCount)
	}
	if u.Height != nil {
		out.Height = Clamp(*u.Height)
	}
	if u.Length != nil {
		out.Length = Clamp(*u.Length)
	}
	return out
}

// Clamped returns s with every numeric field forced into range.
func (s Selection) Clamped() Selection {
	s.WindowCount = Clamp(s.WindowCount)
	s.Height = Clamp(s.Height)
	s.Length = Clamp(s.Length)
	return s
}

// Clamp forces n into [MinValue, MaxValue].
func Clamp(n int) int {
	if n < MinValue {
		return MinValue
	}
	if n > MaxValue {
		return MaxValue
	}
	return n
}

// ShowsDimensions reports whether the height and length controls apply.
func (s Selection) ShowsDimensions() bool {
	_, ok := s.Combo().(BlueGableTileOneCombo)
	return ok
}

// Key is the catalog key for s.
func (s Selection) Key() string {
	return s.Combo().Key()
}

// Choices lists what the form controls expose.
type Choices struct {
	Colors    []string `json:"colors"`
	Styles    []string `json:"styles"`
	Materials []string `json:"materials"`
	Min       int      `json:"min"`
	Max       int      `json:"max"`
}

// Options returns the choices offered by the configurator controls.
func Options() Choices {
	return Choices{
		Colors:    []string{ColorBlue},
		Styles:    []string{StyleGable, StyleHip},
		Materials: []string{MaterialTile},
		Min:       MinValue,
		Max:       MaxValue,
	}
}

// String returns a pointer to v, for building an Update.
func String(v string) *string { return &v }

// Int returns a pointer to v, for building an Update.
func Int(v int) *int { return &v }
