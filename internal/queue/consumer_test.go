package queue

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	to, subject, html string
	err               error
}

func (r *recordingSender) Send(to, subject, html string) error {
	r.to, r.subject, r.html = to, subject, html
	return r.err
}

func TestHandleMessageDeliversRenderedMail(t *testing.T) {
	body, err := json.Marshal(MailRequestedEvent{
		MessageID: "m-1",
		To:        "a@example.com",
		Kind:      "welcome",
		Name:      "Jamie",
	})
	require.NoError(t, err)

	s := &recordingSender{}
	require.NoError(t, handleMessage(body, s))
	assert.Equal(t, "a@example.com", s.to)
	assert.Equal(t, "Welcome to BenefitMap", s.subject)
	assert.Contains(t, s.html, "Jamie")
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
	s := &recordingSender{}
	assert.Error(t, handleMessage([]byte("not json"), s))
	assert.Empty(t, s.to)

	body, _ := json.Marshal(MailRequestedEvent{MessageID: "m-2", Kind: "welcome"})
	assert.Error(t, handleMessage(body, s), "missing recipient")
}

func TestHandleMessagePropagatesSendFailure(t *testing.T) {
	body, _ := json.Marshal(MailRequestedEvent{
		MessageID: "m-3", To: "a@example.com", Kind: "generic", Subject: "Hi",
	})
	s := &recordingSender{err: errors.New("smtp down")}
	err := handleMessage(body, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestRenderEventFallsBackToGeneric(t *testing.T) {
	subject, html := RenderEvent(MailRequestedEvent{
		Kind: "something-new", Subject: "Subject", Body: "Body",
	})
	assert.Equal(t, "Subject", subject)
	assert.Contains(t, html, "Body")
}

func TestRenderEventDeadline(t *testing.T) {
	subject, _ := RenderEvent(MailRequestedEvent{
		Kind: "deadline", Title: "Grant", DueDate: "2025-07-01",
	})
	assert.Contains(t, subject, "Grant")
}
