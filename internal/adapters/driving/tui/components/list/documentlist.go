// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui/styles"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// linesPerDocument is the number of rows one entry occupies.
const linesPerDocument = 2

// DocumentList displays the documents of one course in a navigable list.
type DocumentList struct {
	documents []domain.DocumentSummary
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewDocumentList creates an empty document list.
func NewDocumentList(s *styles.Styles) *DocumentList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &DocumentList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *DocumentList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation keys.
func (l *DocumentList) Update(msg tea.Msg) (*DocumentList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of documents around the selection.
func (l *DocumentList) View() string {
	if len(l.documents) == 0 {
		return l.styles.Muted.Render("No documents")
	}

	visible := (l.height - 2) / linesPerDocument
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.documents))

	lines := make([]string, 0, (end-start)*linesPerDocument+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Documents (%d)", len(l.documents))), "")
	for i := start; i < end; i++ {
		lines = append(lines, l.renderDocument(i, &l.documents[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *DocumentList) renderDocument(index int, doc *domain.DocumentSummary) string {
	name := doc.SourceFile
	maxName := max(l.width-6, 10)
	if len(name) > maxName {
		name = name[:maxName-3] + "..."
	}

	var title string
	if index == l.selected {
		title = l.styles.Selected.Render("> " + name)
	} else {
		title = l.styles.Normal.Render("  " + name)
	}

	detail := fmt.Sprintf("    %s | %d page(s) | %d chunk(s)", doc.DocType, doc.TotalPages, doc.ChunkCount)
	if !doc.UploadedAt.IsZero() {
		detail += " | " + doc.UploadedAt.Local().Format("2006-01-02 15:04")
	}
	return title + "\n" + l.styles.Muted.Render(detail)
}

// SetDocuments replaces the list and keeps the selection in range.
func (l *DocumentList) SetDocuments(docs []domain.DocumentSummary) {
	l.documents = docs
	if l.selected >= len(docs) {
		l.selected = max(len(docs)-1, 0)
	}
}

// Documents returns the listed documents.
func (l *DocumentList) Documents() []domain.DocumentSummary {
	return l.documents
}

// Selected returns the index of the selected document.
func (l *DocumentList) Selected() int {
	return l.selected
}

// SelectedDocument returns the selected document, or nil when the list is empty.
func (l *DocumentList) SelectedDocument() *domain.DocumentSummary {
	if l.selected < 0 || l.selected >= len(l.documents) {
		return nil
	}
	return &l.documents[l.selected]
}

// MoveUp moves selection up.
func (l *DocumentList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *DocumentList) MoveDown() {
	if l.selected < len(l.documents)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *DocumentList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of documents.
func (l *DocumentList) Count() int {
	return len(l.documents)
}

// IsEmpty returns whether the list is empty.
func (l *DocumentList) IsEmpty() bool {
	return len(l.documents) == 0
}
