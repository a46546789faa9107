package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/events"
	"launchkit-backend-go/pkg/messagequeue"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendWaitlistWelcome(recipient, ventureName string) error {
	return m.Called(recipient, ventureName).Error(0)
}

func message(t *testing.T, e events.Event) messagequeue.Message {
	t.Helper()
	body, err := json.Marshal(e)
	require.NoError(t, err)
	return messagequeue.Message{ID: e.ID, Type: e.Type, Body: body}
}

func TestMailHandler_WaitlistJoined(t *testing.T) {
	m := &mockMailer{}
	m.On("SendWaitlistWelcome", "jo@example.com", "Acme").Return(nil).Once()
	h := NewMailHandler(m, zap.NewNop())

	err := h.Handle(context.Background(), message(t, events.New(events.WaitlistJoined, map[string]any{
		"email": "jo@example.com", "ventureName": "Acme",
	})))
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestMailHandler_Failures(t *testing.T) {
	m := &mockMailer{}
	m.On("SendWaitlistWelcome", "jo@example.com", "").Return(errors.New("smtp down"))
	h := NewMailHandler(m, zap.NewNop())

	err := h.Handle(context.Background(), message(t, events.New(events.WaitlistJoined, map[string]any{"email": "jo@example.com"})))
	assert.ErrorContains(t, err, "smtp down")

	err = h.Handle(context.Background(), message(t, events.New(events.WaitlistJoined, map[string]any{})))
	assert.EqualError(t, err, "waitlist event has no email")

	err = h.Handle(context.Background(), messagequeue.Message{Body: []byte("not json")})
	assert.Error(t, err)
}

func TestMailHandler_IgnoresOtherEvents(t *testing.T) {
	m := &mockMailer{}
	h := NewMailHandler(m, zap.NewNop())

	err := h.Handle(context.Background(), message(t, events.New(events.AnalysisCompleted, map[string]any{"analysisId": "a1"})))
	require.NoError(t, err)
	m.AssertNotCalled(t, "SendWaitlistWelcome", mock.Anything, mock.Anything)
}
