// Package tui is a terminal rendition of the roof configurator form.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roofkit/roof-customizer/internal/resolver"
	"github.com/roofkit/roof-customizer/internal/roof"
)

type control int

const (
	controlColor control = iota
	controlStyle
	controlMaterial
	controlWindows
	controlHeight
	controlLength
)

var controlLabels = map[control]string{
	controlColor:    "Roof Color",
	controlStyle:    "Roof Style",
	controlMaterial: "Roof Material",
	controlWindows:  "Window",
	controlHeight:   "Height",
	controlLength:   "Length",
}

// Styles used by the view.
type Styles struct {
	Title   lipgloss.Style
	Panel   lipgloss.Style
	Label   lipgloss.Style
	Focused lipgloss.Style
	Muted   lipgloss.Style
	Asset   lipgloss.Style
	Warn    lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1F2937")).MarginBottom(1),
		Panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#9CA3AF")).Padding(0, 1),
		Label:   lipgloss.NewStyle().Bold(true),
		Focused: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563EB")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		Asset:   lipgloss.NewStyle().Foreground(lipgloss.Color("#059669")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706")),
	}
}

// Model holds the current Selection snapshot and its resolution. Every
// key press replaces the snapshot and resolves it again.
type Model struct {
	resolver resolver.Resolver
	choices  roof.Choices
	styles   Styles

	sel    roof.Selection
	result resolver.Result
	focus  int
}

// New creates a model starting from the default selection.
func New(r resolver.Resolver) Model {
	m := Model{
		resolver: r,
		choices:  roof.Options(),
		styles:   DefaultStyles(),
	}
	return m.replace(roof.DefaultSelection())
}

// Selection returns the current snapshot.
func (m Model) Selection() roof.Selection { return m.sel }

// Result returns the resolution of the current snapshot.
func (m Model) Result() resolver.Result { return m.result }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k", "shift+tab":
			m.focus = (m.focus - 1 + len(m.controls())) % len(m.controls())
		case "down", "j", "tab":
			m.focus = (m.focus + 1) % len(m.controls())
		case "left", "h":
			m = m.replace(m.sel.Apply(m.step(-1)))
		case "right", "l":
			m = m.replace(m.sel.Apply(m.step(+1)))
		}
	}
	return m, nil
}

// controls lists the visible controls; height and length only appear for
// the one combination that uses them.
func (m Model) controls() []control {
	cs := []control{controlColor, controlStyle, controlMaterial, controlWindows}
	if m.sel.ShowsDimensions() {
		cs = append(cs, controlHeight, controlLength)
	}
	return cs
}

func (m Model) focused() control {
	cs := m.controls()
	if m.focus >= len(cs) {
		return cs[len(cs)-1]
	}
	return cs[m.focus]
}

// step builds the update for moving the focused control by delta.
func (m Model) step(delta int) roof.Update {
	switch m.focused() {
	case controlColor:
		return roof.Update{Color: roof.String(cycle(m.choices.Colors, m.sel.Color, delta))}
	case controlStyle:
		return roof.Update{Style: roof.String(cycle(m.choices.Styles, m.sel.Style, delta))}
	case controlMaterial:
		return roof.Update{Material: roof.String(cycle(m.choices.Materials, m.sel.Material, delta))}
	case controlWindows:
		return roof.Update{WindowCount: roof.Int(m.sel.WindowCount + delta)}
	case controlHeight:
		return roof.Update{Height: roof.Int(m.sel.Height + delta)}
	case controlLength:
		return roof.Update{Length: roof.Int(m.sel.Length + delta)}
	}
	return roof.Update{}
}

func (m Model) replace(sel roof.Selection) Model {
	m.sel = sel
	m.result = m.resolver.Resolve(sel)
	if n := len(m.controls()); m.focus >= n {
		m.focus = n - 1
	}
	return m
}

func cycle(opts []string, cur string, delta int) string {
	if len(opts) == 0 {
		return cur
	}
	idx := 0
	for i, o := range opts {
		if o == cur {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(opts)) % len(opts)
	return opts[idx]
}

func (m Model) View() string {
	s := m.styles
	var left strings.Builder
	left.WriteString(s.Title.Render("Roof Preview"))
	left.WriteString("\n")
	left.WriteString(s.Asset.Render(m.result.Asset.String()))
	if m.result.Fallback {
		left.WriteString(s.Warn.Render("  (no preview for " + m.result.Key + ")"))
	}
	left.WriteString("\n\n")
	left.WriteString(s.Label.Render("Current Configuration:"))
	left.WriteString("\n")
	left.WriteString(m.result.Summary.String())

	var right strings.Builder
	right.WriteString(s.Title.Render("Roof Options"))
	right.WriteString("\n")
	for i, c := range m.controls() {
		label := controlLabels[c]
		line := fmt.Sprintf("%-14s %s", label+":", m.render(c))
		if i == m.focus {
			line = s.Focused.Render("> " + line)
		} else {
			line = "  " + line
		}
		right.WriteString(line)
		right.WriteString("\n")
	}
	right.WriteString("\n")
	right.WriteString(s.Muted.Render("↑/↓ select · ←/→ change · q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		s.Panel.Render(left.String()),
		" ",
		s.Panel.Render(right.String()),
	) + "\n"
}

func (m Model) render(c control) string {
	switch c {
	case controlColor:
		return roof.Capitalize(m.sel.Color)
	case controlStyle:
		return roof.Capitalize(m.sel.Style)
	case controlMaterial:
		return roof.Capitalize(m.sel.Material)
	case controlWindows:
		return slider(m.sel.WindowCount, m.choices.Min, m.choices.Max)
	case controlHeight:
		return slider(m.sel.Height, m.choices.Min, m.choices.Max)
	case controlLength:
		return slider(m.sel.Length, m.choices.Min, m.choices.Max)
	}
	return ""
}

// slider draws e.g. "1 ─●─ 3  [2]".
func slider(v, lo, hi int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d ", lo)
	for i := lo; i <= hi; i++ {
		if i == v {
			b.WriteString("●")
		} else {
			b.WriteString("─")
		}
	}
	fmt.Fprintf(&b, " %d  [%d]", hi, v)
	return b.String()
}

// Run starts the interactive program and blocks until the user quits.
func Run(r resolver.Resolver, opts ...tea.ProgramOption) (roof.Selection, error) {
	final, err := tea.NewProgram(New(r), opts...).Run()
	if err != nil {
		return roof.Selection{}, err
	}
	return final.(Model).Selection(), nil
}
