package domain

// AnswerRequest is a question to answer from the indexed course documents.
type AnswerRequest struct {
	// Question is the user's question. Must not be blank.
	Question string

	// CourseSelector is a course ID, AutoCourseID, or empty for auto.
	CourseSelector string

	// DocType optionally restricts retrieval to one document type.
	DocType DocType

	// History is the prior conversation, oldest first.
	History []Message
}

// AnswerResult is the outcome of a one-shot grounded answer.
type AnswerResult struct {
	Answer     string
	Sources    []Citation
	Evidence   []Chunk
	NumSources int

	// Scope is the course retrieval was restricted to, empty for all courses.
	Scope string
}

// EventKind tags an AnswerEvent.
type EventKind int

// Stream event kinds. EventDone and EventError are terminal and a stream
// emits exactly one of them.
const (
	EventSourcesReady EventKind = iota
	EventTextDelta
	EventDone
	EventError
)

// String returns the string representation.
func (k EventKind) String() string {
	switch k {
	case EventSourcesReady:
		return "sources_ready"
	case EventTextDelta:
		return "text_delta"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for the kinds that end a stream.
func (k EventKind) IsTerminal() bool {
	return k == EventDone || k == EventError
}

// AnswerEvent is one step of a streamed answer.
//
// The first event is EventSourcesReady with Sources and Evidence set and
// empty Text. EventTextDelta events carry Text and nil Sources/Evidence.
// The stream ends with EventDone (Sources and Evidence repeated, Answer set)
// or EventError (Text holds the visible error marker).
type AnswerEvent struct {
	Kind       EventKind
	Text       string
	Sources    []Citation
	Evidence   []Chunk
	NumSources int
	Done       bool

	// Scope is the course retrieval was restricted to. Set on SourcesReady.
	Scope string

	// Answer is the full text streamed so far. Set on terminal events.
	Answer string

	// Err is the generation failure. Set on EventError.
	Err error
}

// RelevanceReport is the result of a relevance pre-flight check.
type RelevanceReport struct {
	HasRelevantDocs bool
	NumRelevant     int
	TopScore        float64

	// Message explains an empty result. Empty when documents qualified.
	Message string
}
