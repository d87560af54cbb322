package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/keymap"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/messages"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/styles"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/views/chat"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/views/documents"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// App switches between the chat and documents views and routes messages to
// whichever is showing.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView      *chat.View
	documentsView *documents.View

	// courses is the last course list read from the library.
	courses []string

	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp fails when ports lacks a required service.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		chatView:      chat.NewView(s, km, ports.Assistant, ports.Library),
		documentsView: documents.NewView(s, km, ports.Library),
		currentView:   messages.ViewChat,
	}, nil
}

// WithContext bounds every request the views make.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	return a
}

// WithCourse preselects the course questions are scoped to.
func (a *App) WithCourse(selector string) *App {
	a.chatView.SelectCourse(selector)
	return a
}

// WithDocType restricts questions to one document type.
func (a *App) WithDocType(d domain.DocType) *App {
	a.chatView.SetDocType(d)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("coursemate"),
		a.chatView.Init(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewChat && keymap.Matches(msg.String(), a.keymap.Documents) {
			a.currentView = messages.ViewDocuments
			return a, a.documentsView.Open(a.courses, a.chatView.Session().SelectedCourse())
		}
		return a, a.updateActive(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewChat {
			// Deletions may have emptied a course.
			return a, a.chatView.LoadCourses()
		}
		return a, nil

	case messages.CoursesLoaded:
		if msg.Err == nil {
			a.courses = msg.Courses
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	// Answers keep streaming while the library is open.
	case spinner.TickMsg, messages.AnswerStarted, messages.AnswerEventReceived,
		messages.AnswerStreamClosed, messages.ErrorOccurred:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.DocumentsLoaded, messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd
	}

	return a, a.updateActive(msg)
}

func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	default:
		a.chatView, cmd = a.chatView.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.currentView == messages.ViewDocuments {
		hints := make([]string, 0, len(a.keymap.DocumentsHelp()))
		for _, b := range a.keymap.DocumentsHelp() {
			hints = append(hints, b.Help().Key+": "+b.Help().Desc)
		}
		return a.documentsView.View() + "\n\n" + a.styles.Muted.Render(strings.Join(hints, " | "))
	}
	return a.chatView.View()
}

// SetDimensions resizes both views, hidden or not.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
}

func (a *App) CurrentView() messages.ViewType { return a.currentView }

// Courses is the course list from the last library refresh.
func (a *App) Courses() []string { return a.courses }

func (a *App) Chat() *chat.View           { return a.chatView }
func (a *App) Documents() *documents.View { return a.documentsView }
func (a *App) Context() context.Context   { return a.ctx }

// Run takes over the terminal until the user quits or the context ends.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}
