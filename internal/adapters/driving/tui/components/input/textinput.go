// Package input is the question prompt at the bottom of the chat view.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/styles"
)

const (
	questionLimit = 1000
	historyLimit  = 50
	defaultWidth  = 60
	minFieldWidth = 20

	// chrome is the label plus the field border.
	chrome = 12
)

// QuestionInput wraps a bubbles textinput and remembers submitted questions
// so they can be recalled with Previous and Next.
type QuestionInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int

	history []string
	// cursor indexes history while recalling; len(history) means the
	// draft being typed.
	cursor int
	draft  string
}

func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}
	f := textinput.New()
	f.Placeholder = "Ask a question about your course material..."
	f.CharLimit = questionLimit
	f.Width = defaultWidth
	f.Focus()
	return &QuestionInput{field: f, styles: s, width: defaultWidth}
}

func (q *QuestionInput) Init() tea.Cmd { return textinput.Blink }

func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.field, cmd = q.field.Update(msg)
	return q, cmd
}

func (q *QuestionInput) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		q.styles.UserLabel.Render("Ask: "),
		q.styles.InputField.Render(q.field.View()),
	)
}

func (q *QuestionInput) Value() string { return q.field.Value() }

func (q *QuestionInput) SetValue(v string) { q.field.SetValue(v) }

func (q *QuestionInput) Focus() tea.Cmd { return q.field.Focus() }

func (q *QuestionInput) Blur() { q.field.Blur() }

func (q *QuestionInput) Focused() bool { return q.field.Focused() }

// SetWidth fits the field inside width, never narrower than minFieldWidth.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	q.field.Width = max(width-chrome, minFieldWidth)
}

func (q *QuestionInput) Width() int { return q.width }

// Reset clears the field and leaves history recall.
func (q *QuestionInput) Reset() {
	q.field.Reset()
	q.cursor = len(q.history)
	q.draft = ""
}

// Submit returns the trimmed question, records it in history and clears the
// field. A blank field returns "" and changes nothing.
func (q *QuestionInput) Submit() string {
	question := strings.TrimSpace(q.field.Value())
	if question == "" {
		return ""
	}
	if n := len(q.history); n == 0 || q.history[n-1] != question {
		q.history = append(q.history, question)
		if len(q.history) > historyLimit {
			q.history = q.history[len(q.history)-historyLimit:]
		}
	}
	q.Reset()
	return question
}

// Previous replaces the field with the question asked before the one shown.
// The text being typed is kept and comes back after the newest entry.
func (q *QuestionInput) Previous() {
	if q.cursor == 0 {
		return
	}
	if q.cursor == len(q.history) {
		q.draft = q.field.Value()
	}
	q.cursor--
	q.show(q.history[q.cursor])
}

// Next moves forward through history, ending at the saved draft.
func (q *QuestionInput) Next() {
	if q.cursor >= len(q.history) {
		return
	}
	q.cursor++
	if q.cursor == len(q.history) {
		q.show(q.draft)
		return
	}
	q.show(q.history[q.cursor])
}

// History returns the remembered questions, oldest first.
func (q *QuestionInput) History() []string {
	return append([]string(nil), q.history...)
}

func (q *QuestionInput) show(v string) {
	q.field.SetValue(v)
	q.field.CursorEnd()
}
