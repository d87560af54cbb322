// Package status renders the one-line bar under the chat view.
package status

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/keymap"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/styles"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// State is what the assistant is doing right now.
type State string

const (
	StateReady     State = "ready"
	StateThinking  State = "thinking"
	StateStreaming State = "streaming"
	StateError     State = "error"
)

// busyLabels are shown for states that ignore the message.
var busyLabels = map[State]string{
	StateThinking:  "Searching course material...",
	StateStreaming: "Answering...",
}

const defaultWidth = 80

// Bar is not a tea.Model. The chat view drives it through setters and
// calls View when it lays out the screen.
type Bar struct {
	styles *styles.Styles
	hints  string

	state   State
	message string
	course  string
	width   int
}

// NewBar builds a bar with the chat key hints. Nil arguments use defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	b := &Bar{styles: s, state: StateReady, course: domain.AutoCourseID, width: defaultWidth}
	b.SetBindings(km.ChatHelp())
	return b
}

// SetBindings replaces the hints on the right of the bar.
func (b *Bar) SetBindings(bindings []key.Binding) {
	parts := make([]string, len(bindings))
	for i, binding := range bindings {
		h := binding.Help()
		parts[i] = h.Key + ": " + h.Desc
	}
	b.hints = strings.Join(parts, " | ")
}

// Set changes state and message together.
func (b *Bar) Set(state State, message string) {
	b.state = state
	b.message = message
}

func (b *Bar) SetState(state State)      { b.state = state }
func (b *Bar) SetMessage(message string) { b.message = message }
func (b *Bar) SetWidth(width int)        { b.width = width }

// SetCourse shows course in brackets. A blank selector shows AUTO.
func (b *Bar) SetCourse(course string) {
	if domain.IsAutoSelector(course) {
		course = domain.AutoCourseID
	}
	b.course = course
}

// Clear goes back to Ready with no message.
func (b *Bar) Clear() { b.Set(StateReady, "") }

func (b *Bar) State() State    { return b.state }
func (b *Bar) Message() string { return b.message }
func (b *Bar) Course() string  { return b.course }
func (b *Bar) Width() int      { return b.width }

func (b *Bar) View() string {
	left := b.styles.Course.Render("["+b.course+"]") + " " + b.status()
	right := b.styles.Muted.Render(b.hints)

	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) status() string {
	if label, ok := busyLabels[b.state]; ok {
		return b.styles.Muted.Render(label)
	}
	if b.state == StateError {
		text := "Error"
		if b.message != "" {
			text += ": " + b.message
		}
		return b.styles.Error.Render(text)
	}
	if b.message == "" {
		return b.styles.Muted.Render("Ready")
	}
	return b.styles.Normal.Render(b.message)
}
