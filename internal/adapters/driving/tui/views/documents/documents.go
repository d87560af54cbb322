// Package documents provides the per-course document library view.
package documents

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/components/list"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/keymap"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/messages"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/styles"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
)

// View lists the documents of one course and removes them on request.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	list    *list.DocumentList
	library driving.LibraryService
	ctx     context.Context

	courses []string
	course  int

	width  int
	height int
	err    error
	notice string

	loading bool

	// confirming is true while a delete waits for y/n.
	confirming bool
}

// NewView creates a documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, library driving.LibraryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		list:    list.NewDocumentList(s),
		library: library,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context used for library calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open shows the library, preferring course when it is indexed.
func (v *View) Open(courses []string, course string) tea.Cmd {
	v.courses = courses
	v.course = 0
	for i, c := range courses {
		if c == course {
			v.course = i
		}
	}
	v.err = nil
	v.notice = ""
	v.confirming = false
	return v.load()
}

// Course returns the course being shown, empty when nothing is indexed.
func (v *View) Course() string {
	if len(v.courses) == 0 {
		return ""
	}
	return v.courses[v.course]
}

func (v *View) load() tea.Cmd {
	course := v.Course()
	if course == "" {
		v.list.SetDocuments(nil)
		return nil
	}
	v.loading = true
	library, ctx := v.library, v.ctx
	return func() tea.Msg {
		docs, err := library.ListDocuments(ctx, course)
		return messages.DocumentsLoaded{CourseID: course, Documents: docs, Err: err}
	}
}

func (v *View) deleteSelected() tea.Cmd {
	doc := v.list.SelectedDocument()
	if doc == nil {
		return nil
	}
	course, file := v.Course(), doc.SourceFile
	library, ctx := v.library, v.ctx
	return func() tea.Msg {
		removed, err := library.DeleteDocument(ctx, course, file)
		return messages.DocumentDeleted{CourseID: course, SourceFile: file, Removed: removed, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirming {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		if msg.CourseID != v.Course() {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.list.SetDocuments(msg.Documents)
		return v, nil

	case messages.DocumentDeleted:
		switch {
		case msg.Err != nil:
			v.err = msg.Err
		case msg.Removed:
			v.notice = fmt.Sprintf("Deleted %s from %s.", msg.SourceFile, msg.CourseID)
		default:
			v.notice = fmt.Sprintf("%s was already gone.", msg.SourceFile)
		}
		return v, v.load()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewChat} }
	case keymap.Matches(k, v.keymap.NextCourse):
		return v, v.cycle(1)
	case keymap.Matches(k, v.keymap.PrevCourse):
		return v, v.cycle(-1)
	case keymap.Matches(k, v.keymap.Refresh):
		v.notice = ""
		return v, v.load()
	case keymap.Matches(k, v.keymap.Delete):
		if doc := v.list.SelectedDocument(); doc != nil {
			v.confirming = true
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirming = false
	if msg.String() == "y" || msg.String() == "Y" {
		return v, v.deleteSelected()
	}
	return v, nil
}

func (v *View) cycle(step int) tea.Cmd {
	if len(v.courses) < 2 {
		return nil
	}
	v.course = (v.course + step + len(v.courses)) % len(v.courses)
	v.notice = ""
	v.err = nil
	v.list.SetDocuments(nil)
	return v.load()
}

// View renders the library.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Course Documents"))
	b.WriteString("\n\n")

	if len(v.courses) == 0 {
		b.WriteString(v.styles.Muted.Render("No courses yet. Upload documents with 'coursemate upload'."))
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s", v.styles.Normal.Render("Course:"), v.styles.Course.Render(v.Course()))
	if len(v.courses) > 1 {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  (%d of %d, tab to switch)", v.course+1, len(v.courses))))
	}
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.list.View())
	}

	if v.confirming {
		if doc := v.list.SelectedDocument(); doc != nil {
			b.WriteString("\n\n")
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete %s from %s? (y/n)", doc.SourceFile, v.Course())))
		}
	} else if v.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Success.Render(v.notice))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-8)
}

// Confirming reports whether a delete is waiting for confirmation.
func (v *View) Confirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
