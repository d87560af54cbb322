// Package chat provides the conversation view of the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/components/input"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/components/status"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/keymap"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/messages"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/styles"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
)

// turn is one rendered entry of the conversation.
type turn struct {
	role    string
	text    string
	sources []domain.Citation
	scope   string
	failed  bool
}

// View is the conversation view: transcript, question input and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript viewport.Model
	spinner    spinner.Model
	statusbar  *status.Bar

	assistant driving.AssistantService
	library   driving.LibraryService
	session   *domain.Session
	docType   domain.DocType
	ctx       context.Context

	turns   []turn
	options []string
	course  int

	// events is the stream being read, nil when idle.
	events <-chan domain.AnswerEvent
	cancel context.CancelFunc
	busy   bool

	width  int
	height int
}

// NewView creates a chat view bound to a fresh session.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	assistant driving.AssistantService,
	library driving.LibraryService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 18),
		spinner:    sp,
		statusbar:  status.NewBar(s, km),
		assistant:  assistant,
		library:    library,
		session:    assistant.NewSession(),
		ctx:        context.Background(),
		options:    domain.CourseOptions(nil),
		width:      80,
		height:     24,
	}
	v.refresh()
	return v
}

// WithContext sets the parent context of every question.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SelectCourse sets the course selector of the session.
func (v *View) SelectCourse(selector string) {
	v.session.SelectCourse(selector)
	v.syncCourse()
}

// SetDocType restricts every question to one document type.
func (v *View) SetDocType(d domain.DocType) {
	v.docType = d
}

// Init loads the course list and starts the cursor.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.LoadCourses())
}

// LoadCourses returns a command that reads the indexed courses.
func (v *View) LoadCourses() tea.Cmd {
	library, ctx := v.library, v.ctx
	return func() tea.Msg {
		courses, err := library.ListCourses(ctx)
		return messages.CoursesLoaded{Courses: courses, Err: err}
	}
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.CoursesLoaded:
		if msg.Err != nil {
			v.statusbar.Set(status.StateError, msg.Err.Error())
			return v, nil
		}
		v.options = domain.CourseOptions(msg.Courses)
		v.syncCourse()
		return v, nil

	case messages.AnswerStarted:
		if !v.busy {
			return v, nil
		}
		v.events = msg.Events
		return v, waitForEvent(msg.Events)

	case messages.AnswerEventReceived:
		if msg.Events != v.events || v.events == nil {
			return v, nil
		}
		return v, v.handleEvent(msg.Event)

	case messages.AnswerStreamClosed:
		if msg.Events != v.events || v.events == nil {
			return v, nil
		}
		v.fail(errors.New("answer stream closed early"), "[Answer interrupted]")
		return v, nil

	case messages.ErrorOccurred:
		if v.busy {
			v.fail(msg.Err, "")
			return v, nil
		}
		v.statusbar.Set(status.StateError, msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Send):
		return v, v.submit()
	case keymap.Matches(k, v.keymap.Reset):
		v.Reset()
		return v, nil
	case keymap.Matches(k, v.keymap.NextCourse):
		v.cycle(1)
		return v, nil
	case keymap.Matches(k, v.keymap.PrevCourse):
		v.cycle(-1)
		return v, nil
	case keymap.Matches(k, v.keymap.HistoryPrev):
		v.input.Previous()
		return v, nil
	case keymap.Matches(k, v.keymap.HistoryNext):
		v.input.Next()
		return v, nil
	case keymap.Matches(k, v.keymap.ScrollUp), keymap.Matches(k, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question. A blank question or a question typed
// while an answer is streaming is ignored.
func (v *View) submit() tea.Cmd {
	if v.busy {
		return nil
	}
	question := v.input.Submit()
	if question == "" {
		return nil
	}
	v.turns = append(v.turns, turn{role: domain.RoleUser, text: question})

	if err := v.assistant.Available(); err != nil {
		v.turns = append(v.turns, turn{role: domain.RoleAssistant, text: err.Error(), failed: true})
		v.statusbar.Set(status.StateError, "LLM not configured")
		v.refresh()
		return nil
	}

	v.turns = append(v.turns, turn{role: domain.RoleAssistant})
	v.busy = true
	v.statusbar.Set(status.StateThinking, "")
	v.refresh()

	ctx, cancel := context.WithCancel(v.ctx)
	v.cancel = cancel
	assistant, session := v.assistant, v.session
	opts := driving.AskOptions{DocType: v.docType}
	ask := func() tea.Msg {
		events, err := assistant.AskStream(ctx, session, question, opts)
		if err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return messages.AnswerStarted{Question: question, Events: events}
	}
	return tea.Batch(v.spinner.Tick, ask)
}

func waitForEvent(events <-chan domain.AnswerEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return messages.AnswerStreamClosed{Events: events}
		}
		return messages.AnswerEventReceived{Events: events, Event: ev}
	}
}

func (v *View) handleEvent(ev domain.AnswerEvent) tea.Cmd {
	current := &v.turns[len(v.turns)-1]
	switch ev.Kind {
	case domain.EventSourcesReady:
		current.sources = ev.Sources
		current.scope = ev.Scope
		v.statusbar.SetState(status.StateStreaming)
	case domain.EventTextDelta:
		current.text += ev.Text
	case domain.EventDone:
		if ev.Answer != "" {
			current.text = ev.Answer
		}
		current.sources = ev.Sources
		v.finish()
		v.statusbar.Set(status.StateReady, fmt.Sprintf("%d source(s)", len(ev.Sources)))
		v.refresh()
		return nil
	case domain.EventError:
		v.fail(ev.Err, ev.Text)
		return nil
	}
	v.refresh()
	return waitForEvent(v.events)
}

// fail ends the pending answer, showing marker in place of the text when set.
func (v *View) fail(err error, marker string) {
	if len(v.turns) > 0 {
		current := &v.turns[len(v.turns)-1]
		current.failed = true
		switch {
		case marker != "":
			current.text = marker
		case err != nil && current.text == "":
			current.text = err.Error()
		}
	}
	v.finish()
	v.statusbar.SetState(status.StateError)
	if err != nil {
		v.statusbar.SetMessage(err.Error())
	}
	v.refresh()
}

func (v *View) finish() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.events = nil
	v.busy = false
}

// Reset abandons any pending answer and clears the conversation.
func (v *View) Reset() {
	v.finish()
	v.session.Reset()
	v.turns = nil
	v.syncCourse()
	v.statusbar.Set(status.StateReady, "Conversation cleared")
	v.refresh()
}

// cycle moves the course selector through the options. It is locked while
// an answer is streaming.
func (v *View) cycle(step int) {
	if v.busy || len(v.options) == 0 {
		return
	}
	v.course = (v.course + step + len(v.options)) % len(v.options)
	v.session.SelectCourse(v.options[v.course])
	v.statusbar.SetCourse(v.session.SelectedCourse())
}

// syncCourse points the selector at the session's course, adding it to
// the options when it is not indexed yet.
func (v *View) syncCourse() {
	selected := v.session.SelectedCourse()
	v.course = -1
	for i, opt := range v.options {
		if opt == selected {
			v.course = i
		}
	}
	if v.course < 0 {
		v.options = append(v.options, selected)
		v.course = len(v.options) - 1
	}
	v.statusbar.SetCourse(selected)
}

// refresh re-renders the transcript and keeps the newest turn in view.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render(
			"Ask anything about your uploaded course material.\n" +
				"Press tab to pick a course, or leave it on AUTO to detect it from the question.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	blocks := make([]string, 0, len(v.turns))
	for i := range v.turns {
		t := &v.turns[i]
		var b strings.Builder
		if t.role == domain.RoleUser {
			b.WriteString(v.styles.UserLabel.Render("You"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(t.text))
			blocks = append(blocks, b.String())
			continue
		}

		b.WriteString(v.styles.AssistantLabel.Render("Assistant"))
		if t.scope != "" {
			b.WriteString(v.styles.Muted.Render(" (" + t.scope + ")"))
		}
		b.WriteString("\n")
		switch {
		case t.failed:
			b.WriteString(v.styles.Error.Render(wrap.Render(t.text)))
		case t.text == "" && v.busy && i == len(v.turns)-1:
			b.WriteString(v.styles.Muted.Render("..."))
		default:
			b.WriteString(wrap.Render(t.text))
		}
		if len(t.sources) > 0 && !t.failed {
			b.WriteString("\n")
			b.WriteString(v.styles.Subtitle.Render("Sources:"))
			for j, c := range t.sources {
				b.WriteString("\n")
				b.WriteString(v.styles.Citation.Render(fmt.Sprintf("  [%d] %s", j+1, c.Label())))
			}
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	title := v.styles.Title.Render("coursemate") + v.styles.Muted.Render("  course Q&A")

	prompt := v.input.View()
	if v.busy {
		prompt = v.spinner.View() + " " + v.styles.Muted.Render("thinking...") + "\n" + prompt
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		v.transcript.View(),
		prompt,
		v.statusbar.View(),
	)
}

// SetDimensions sizes the transcript to the space left by the other rows.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.transcript.Width = width
	v.transcript.Height = max(height-7, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Session returns the conversation session.
func (v *View) Session() *domain.Session {
	return v.session
}

// Busy reports whether an answer is being streamed.
func (v *View) Busy() bool {
	return v.busy
}

// Options returns the course selector choices.
func (v *View) Options() []string {
	return v.options
}

// Transcript returns the rendered conversation.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}
