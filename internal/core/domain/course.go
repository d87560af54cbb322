package domain

import (
	"fmt"
	"strings"
)

// Reserved course identifiers.
const (
	// AutoCourseID asks the retriever to infer the course from the question,
	// falling back to a search across every course.
	AutoCourseID = "AUTO"

	// MiscCourseID is the bucket for documents whose course ID sanitises to nothing.
	MiscCourseID = "MISC"
)

// Course ID length bounds, applied after sanitisation.
const (
	MinCourseIDLength = 2
	MaxCourseIDLength = 50
)

// SanitizeCourseID normalises a raw course ID: surrounding whitespace is
// trimmed, every character outside [A-Za-z0-9_-] is removed and the result
// is upper-cased. An ID that sanitises to nothing becomes MiscCourseID.
//
// "cs 101" becomes "CS101". The function is idempotent.
func SanitizeCourseID(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return MiscCourseID
	}
	return b.String()
}

// ValidateCourseID checks a raw course ID before ingestion.
// Returned errors wrap ErrInvalidInput and carry a user-facing message.
func ValidateCourseID(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: Course ID cannot be empty", ErrInvalidInput)
	}
	id := SanitizeCourseID(raw)
	if len(id) < MinCourseIDLength {
		return fmt.Errorf("%w: Course ID must be at least %d characters", ErrInvalidInput, MinCourseIDLength)
	}
	if len(id) > MaxCourseIDLength {
		return fmt.Errorf("%w: Course ID cannot exceed %d characters", ErrInvalidInput, MaxCourseIDLength)
	}
	return nil
}

// IsAutoSelector reports whether a course selector asks for auto-detection.
// An empty selector is treated the same as AUTO.
func IsAutoSelector(selector string) bool {
	s := strings.TrimSpace(selector)
	return s == "" || strings.EqualFold(s, AutoCourseID)
}

// CourseOptions returns the choices offered to a user picking a course:
// AUTO first, then the known courses in the given order, then MISC.
// Duplicates are dropped.
func CourseOptions(courses []string) []string {
	seen := map[string]bool{AutoCourseID: true}
	opts := []string{AutoCourseID}
	for _, c := range courses {
		if seen[c] {
			continue
		}
		seen[c] = true
		opts = append(opts, c)
	}
	if !seen[MiscCourseID] {
		opts = append(opts, MiscCourseID)
	}
	return opts
}
