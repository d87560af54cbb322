// Package styles holds the chat TUI palette and the lipgloss styles built
// from it.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is a palette. Every style in Styles takes its colours from here.
type Theme struct {
	Accent     lipgloss.Color // titles and the active course
	User       lipgloss.Color
	Assistant  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color // status bar background
}

// DefaultTheme is a dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     "#89B4FA",
		User:       "#F5C2E7",
		Assistant:  "#94E2D5",
		Foreground: "#CDD6F4",
		Muted:      "#6C7086",
		Success:    "#A6E3A1",
		Warning:    "#F9E2AF",
		Error:      "#F38BA8",
		Border:     "#45475A",
		Bar:        "#181825",
	}
}

// Styles are built once per theme and shared by the views.
type Styles struct {
	theme *Theme

	Title, Subtitle               lipgloss.Style
	Normal, Muted, Selected       lipgloss.Style
	Error, Success, Warning       lipgloss.Style
	UserLabel, AssistantLabel     lipgloss.Style
	Citation                      lipgloss.Style // source line under an answer
	Course                        lipgloss.Style // selector in the status bar
	InputField, StatusBar, Border lipgloss.Style
}

func text(c lipgloss.Color) lipgloss.Style  { return lipgloss.NewStyle().Foreground(c) }
func label(c lipgloss.Color) lipgloss.Style { return text(c).Bold(true) }

func boxed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(border)
}

// NewStyles builds styles from theme, or from DefaultTheme when theme is nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	t := theme
	return &Styles{
		theme:          t,
		Title:          label(t.Accent),
		Subtitle:       label(t.Assistant),
		Normal:         text(t.Foreground),
		Muted:          text(t.Muted),
		Selected:       label(t.Bar).Background(t.Accent),
		Error:          text(t.Error),
		Success:        text(t.Success),
		Warning:        text(t.Warning),
		UserLabel:      label(t.User),
		AssistantLabel: label(t.Assistant),
		Citation:       text(t.Muted).Italic(true),
		Course:         label(t.Accent),
		InputField:     boxed(t.Border).Padding(0, 1),
		StatusBar:      text(t.Muted).Background(t.Bar).Padding(0, 1),
		Border:         boxed(t.Border),
	}
}

func DefaultStyles() *Styles { return NewStyles(nil) }

// Theme is the palette s was built from.
func (s *Styles) Theme() *Theme { return s.theme }
