package driven

// PromptStore hands out prompt templates by name.
type PromptStore interface {
	Load(name string) (string, error)

	// Reload drops cached templates so edits on disk are picked up.
	Reload()
}

const (
	// PromptGroundedSystem is the system prompt for answering from course
	// excerpts.
	PromptGroundedSystem = "grounded_system"

	// ContextPlaceholder is replaced with the formatted excerpts.
	ContextPlaceholder = "{context}"
)
