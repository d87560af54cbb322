package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

func TestCoursesCmd(t *testing.T) {
	tests := []struct {
		name     string
		courses  []string
		args     []string
		contains []string
	}{
		{
			name:     "lists courses",
			courses:  []string{"CS101", "MATH200"},
			args:     []string{"courses"},
			contains: []string{"CS101\n", "MATH200\n"},
		},
		{
			name:     "empty index",
			args:     []string{"courses"},
			contains: []string{"No courses yet."},
		},
		{
			name:     "selector options",
			courses:  []string{"CS101"},
			args:     []string{"courses", "--options"},
			contains: []string{"AUTO\nCS101\nMISC\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServices(t)
			s.library.courses = tt.courses

			out, err := execute(t, tt.args...)

			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestCoursesCmd_JSON(t *testing.T) {
	s := setupTestServices(t)
	s.library.courses = []string{"CS101", "MATH200"}

	out, err := execute(t, "courses", "--json", "--options")
	require.NoError(t, err)

	var got []string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{domain.AutoCourseID, "CS101", "MATH200", domain.MiscCourseID}, got)
}

func TestCoursesCmd_Error(t *testing.T) {
	s := setupTestServices(t)
	s.library.err = errors.New("disk full")

	_, err := execute(t, "courses")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list courses")
}

func TestCoursesCmd_NoLibrary(t *testing.T) {
	clearServices(t)

	_, err := execute(t, "courses")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "library service not configured")
}

func TestStatsCmd(t *testing.T) {
	s := setupTestServices(t)
	s.library.stats = &domain.IndexStats{TotalChunks: 42, Courses: []string{"CS101", "MATH200"}}

	out, err := execute(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Chunks:  42")
	assert.Contains(t, out, "Courses: 2")
	assert.Contains(t, out, "- MATH200")
}

func TestCheckCmd(t *testing.T) {
	t.Run("relevant documents", func(t *testing.T) {
		s := setupTestServices(t)
		s.assistant.relevance = &domain.RelevanceReport{HasRelevantDocs: true, NumRelevant: 3, TopScore: 0.82}

		out, err := execute(t, "check", "what is big-O?", "--course", "CS101")

		require.NoError(t, err)
		assert.Equal(t, "CS101", s.assistant.lastCourse)
		assert.Contains(t, out, "Found 3 relevant chunk(s), top score 0.82")
	})

	t.Run("nothing relevant", func(t *testing.T) {
		s := setupTestServices(t)
		s.assistant.relevance = &domain.RelevanceReport{Message: "No relevant documents found."}

		out, err := execute(t, "check", "what is big-O?")

		require.NoError(t, err)
		assert.Equal(t, domain.AutoCourseID, s.assistant.lastCourse)
		assert.Contains(t, out, "No relevant documents found.")
	})

	t.Run("service error", func(t *testing.T) {
		s := setupTestServices(t)
		s.assistant.err = domain.ErrEmbeddingUnavailable

		_, err := execute(t, "check", "q")

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}
