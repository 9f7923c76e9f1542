package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/servicedesk/internal/config"
)

type fakeSender struct {
	messages []*gomail.Message
	err      error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.messages = append(f.messages, m...)
	return f.err
}

func TestRender(t *testing.T) {
	vars := map[string]any{
		"number":   int64(42),
		"customer": "ACME",
		"author":   "admin",
		"status":   "Closed",
		"url":      "https://erp.example.com/service-tickets/42",
	}

	subject, body := Render(TemplateNewStatus, "Jo", vars)
	assert.Equal(t, "Service #42 changed to Closed", subject)
	assert.Contains(t, body, "Hello Jo,")
	assert.Contains(t, body, "Service #42 for ACME is now Closed.")
	assert.Contains(t, body, "https://erp.example.com/service-tickets/42")

	subject, body = Render("custom-key", "", map[string]any{"b": 2, "a": 1})
	assert.Equal(t, "custom-key", subject)
	assert.Equal(t, "a: 1\nb: 2\n", body)
}

func TestSMTPNotifierSend(t *testing.T) {
	sender := &fakeSender{}
	n := &SMTPNotifier{
		config: config.SMTPConfig{FromAddress: "desk@example.com", FromName: "Desk"},
		sender: sender,
		logger: zap.NewNop(),
	}

	err := n.Send(context.Background(), TemplateNewAssignee, "tech@example.com", "Tech", map[string]any{"number": 7})
	require.NoError(t, err)
	require.Len(t, sender.messages, 1)
	assert.Equal(t, []string{"Service #7 has been assigned to you"}, sender.messages[0].GetHeader("Subject"))

	sender.err = errors.New("relay down")
	err = n.Send(context.Background(), TemplateNewAssignee, "tech@example.com", "", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "relay down")
}

func TestNewPicksImplementation(t *testing.T) {
	_, isLog := New(config.SMTPConfig{}, nil).(*LogNotifier)
	assert.True(t, isLog)

	_, isSMTP := New(config.SMTPConfig{Host: "smtp.example.com", Port: 25}, nil).(*SMTPNotifier)
	assert.True(t, isSMTP)

	assert.NoError(t, NewLogNotifier(nil).Send(context.Background(), TemplateNewUser, "u@example.com", "u", nil))
}
