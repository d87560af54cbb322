package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewChat, "chat"},
		{ViewDocuments, "documents"},
		{ViewType(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestViewChat_IsZeroValue(t *testing.T) {
	var msg ViewChanged
	assert.Equal(t, ViewChat, msg.View)
}

func TestAnswerStarted_CarriesStream(t *testing.T) {
	ch := make(chan domain.AnswerEvent, 1)
	ch <- domain.AnswerEvent{Kind: domain.EventDone, Answer: "ok"}
	close(ch)

	msg := AnswerStarted{Question: "what is a monad?", Events: ch}

	ev, ok := <-msg.Events
	assert.True(t, ok)
	assert.Equal(t, "ok", ev.Answer)
	_, ok = <-msg.Events
	assert.False(t, ok)
}

func TestDocumentDeleted_Fields(t *testing.T) {
	err := errors.New("store offline")
	msg := DocumentDeleted{CourseID: "CS101", SourceFile: "intro.pdf", Err: err}

	assert.False(t, msg.Removed)
	assert.ErrorIs(t, msg.Err, err)
}
