package domain

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeCourseID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase with space", "cs 101", "CS101"},
		{"already normalised", "CS101", "CS101"},
		{"surrounding whitespace", "  math-200  ", "MATH-200"},
		{"underscore kept", "phys_1a", "PHYS_1A"},
		{"punctuation removed", "cs.101!", "CS101"},
		{"empty falls back", "", MiscCourseID},
		{"only symbols falls back", "!!! ???", MiscCourseID},
		{"non-ascii removed", "café101", "CAF101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeCourseID(tt.input))
		})
	}
}

func TestSanitizeCourseID_IdempotentAndCharset(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Z0-9_-]+$`)
	inputs := []string{
		"cs 101", "Intro to AI", "ee-  20_b", "", "   ", "😀 emoji 7",
		"MiXeD_case-ID", "tab\tseparated", strings.Repeat("x", 80),
	}

	for _, in := range inputs {
		once := SanitizeCourseID(in)
		assert.Equal(t, once, SanitizeCourseID(once), "input %q", in)
		assert.Regexp(t, valid, once, "input %q", in)
	}
}

func TestValidateCourseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", "cs 101", ""},
		{"empty", "", "Course ID cannot be empty"},
		{"whitespace", "   ", "Course ID cannot be empty"},
		{"too short", "a", "at least 2 characters"},
		{"too long", strings.Repeat("A", 51), "cannot exceed 50 characters"},
		{"exactly fifty", strings.Repeat("B", 50), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCourseID(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsAutoSelector(t *testing.T) {
	assert.True(t, IsAutoSelector(""))
	assert.True(t, IsAutoSelector("AUTO"))
	assert.True(t, IsAutoSelector(" auto "))
	assert.False(t, IsAutoSelector("CS101"))
	assert.False(t, IsAutoSelector("MISC"))
}

func TestCourseOptions(t *testing.T) {
	assert.Equal(t, []string{"AUTO", "MISC"}, CourseOptions(nil))
	assert.Equal(t,
		[]string{"AUTO", "CS101", "MATH200", "MISC"},
		CourseOptions([]string{"CS101", "MATH200", "CS101"}))
	assert.Equal(t,
		[]string{"AUTO", "CS101", "MISC"},
		CourseOptions([]string{"CS101", "MISC"}))
}
