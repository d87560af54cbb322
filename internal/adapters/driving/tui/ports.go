// Package tui is the interactive chat screen behind `coursemate chat`.
package tui

import (
	"errors"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
)

var (
	ErrInvalidPorts            = errors.New("tui: ports are required")
	ErrMissingAssistantService = errors.New("tui: assistant service is required")
	ErrMissingLibraryService   = errors.New("tui: library service is required")
)

// Ports are the services the chat screen calls. Both are required: the
// library lists courses for the chat view and backs the documents view.
type Ports struct {
	Assistant driving.AssistantService
	Library   driving.LibraryService
}

func NewPorts(assistant driving.AssistantService, library driving.LibraryService) *Ports {
	return &Ports{Assistant: assistant, Library: library}
}

func (p *Ports) Validate() error {
	switch {
	case p == nil:
		return ErrInvalidPorts
	case p.Assistant == nil:
		return ErrMissingAssistantService
	case p.Library == nil:
		return ErrMissingLibraryService
	}
	return nil
}
