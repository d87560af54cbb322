package input

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestionInput(t *testing.T) {
	in := NewQuestionInput(nil)

	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.Equal(t, 60, in.Width())
}

func TestQuestionInput_Init(t *testing.T) {
	assert.NotNil(t, NewQuestionInput(nil).Init())
}

func TestQuestionInput_TypesRunes(t *testing.T) {
	in := NewQuestionInput(nil)

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("why?")})

	assert.Equal(t, "why?", in.Value())
}

func TestQuestionInput_Backspace(t *testing.T) {
	in := NewQuestionInput(nil)
	in.SetValue("abc")

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Equal(t, "ab", in.Value())
}

func TestQuestionInput_CharLimit(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetValue(strings.Repeat("a", questionLimit+50))

	assert.Len(t, in.Value(), questionLimit)
}

func TestQuestionInput_FocusAndBlur(t *testing.T) {
	in := NewQuestionInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestQuestionInput_Reset(t *testing.T) {
	in := NewQuestionInput(nil)
	in.SetValue("something")

	in.Reset()

	assert.Empty(t, in.Value())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		inner int
	}{
		{"wide terminal", 100, 88},
		{"narrow terminal keeps a minimum", 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewQuestionInput(nil)
			in.SetWidth(tt.width)

			assert.Equal(t, tt.width, in.Width())
			assert.Equal(t, tt.inner, in.field.Width)
		})
	}
}

func TestQuestionInput_View(t *testing.T) {
	in := NewQuestionInput(nil)

	assert.Contains(t, in.View(), "Ask:")
}

func TestQuestionInput_Submit(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetValue("   ")
	assert.Empty(t, in.Submit())
	assert.Empty(t, in.History())

	in.SetValue("  what is a monad?  ")
	assert.Equal(t, "what is a monad?", in.Submit())
	assert.Empty(t, in.Value())

	in.SetValue("what is a monad?")
	in.Submit()
	assert.Equal(t, []string{"what is a monad?"}, in.History(), "repeats are stored once")
}

func TestQuestionInput_HistoryRecall(t *testing.T) {
	in := NewQuestionInput(nil)
	for _, q := range []string{"first", "second"} {
		in.SetValue(q)
		in.Submit()
	}
	in.SetValue("draft")

	in.Previous()
	assert.Equal(t, "second", in.Value())
	in.Previous()
	assert.Equal(t, "first", in.Value())
	in.Previous()
	assert.Equal(t, "first", in.Value(), "stops at the oldest")

	in.Next()
	assert.Equal(t, "second", in.Value())
	in.Next()
	assert.Equal(t, "draft", in.Value())
	in.Next()
	assert.Equal(t, "draft", in.Value())
}

func TestQuestionInput_HistoryLimit(t *testing.T) {
	in := NewQuestionInput(nil)
	for i := 0; i < historyLimit+5; i++ {
		in.SetValue(strings.Repeat("q", i+1))
		in.Submit()
	}

	h := in.History()
	require.Len(t, h, historyLimit)
	assert.Equal(t, strings.Repeat("q", 6), h[0])
}
