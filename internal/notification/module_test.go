package notification

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"replify_backend/internal/events"
	"replify_backend/platform/logger"
)

type fakeSender struct {
	subjects []string
	bodies   []string
}

func (f *fakeSender) Send(_ context.Context, subject, htmlContent string) error {
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, htmlContent)
	return nil
}

type emailConfig struct {
	enabled bool
}

func (c emailConfig) GetSMTPHost() string            { return "smtp.example.com" }
func (c emailConfig) GetSMTPPort() int               { return 587 }
func (c emailConfig) GetSMTPUsername() string        { return "u" }
func (c emailConfig) GetSMTPPassword() string        { return "p" }
func (c emailConfig) GetEmailFromName() string       { return "Replify" }
func (c emailConfig) GetEmailFromAddress() string    { return "noreply@example.com" }
func (c emailConfig) GetEmailNotifyAddress() string  { return "ops@example.com" }
func (c emailConfig) IsEmailEnabled() bool           { return c.enabled }

func TestHandle_EscalationSendsEmail(t *testing.T) {
	sender := &fakeSender{}
	m := NewModule(sender, emailConfig{enabled: true}, logger.New("test"))

	err := m.Handle(context.Background(), events.ConversationEscalated{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: uuid.New(),
		BusinessID:     uuid.New(),
		CustomerNumber: "27821234567",
		Reason:         "trigger_phrase",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.subjects) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.subjects))
	}
	if !strings.Contains(sender.bodies[0], "27821234567") {
		t.Fatalf("email body missing customer number: %q", sender.bodies[0])
	}
	if !strings.Contains(sender.bodies[0], "trigger_phrase") {
		t.Fatalf("email body missing reason: %q", sender.bodies[0])
	}
}

func TestHandle_DisabledEmailIsNoop(t *testing.T) {
	sender := &fakeSender{}
	m := NewModule(sender, emailConfig{enabled: false}, logger.New("test"))

	err := m.Handle(context.Background(), events.ConversationEscalated{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.subjects) != 0 {
		t.Fatalf("no email expected while disabled, got %d", len(sender.subjects))
	}
}

func TestHandle_IgnoresOtherEvents(t *testing.T) {
	sender := &fakeSender{}
	m := NewModule(sender, emailConfig{enabled: true}, logger.New("test"))

	err := m.Handle(context.Background(), events.ConversationResolved{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.subjects) != 0 {
		t.Fatalf("resolved events must not email, got %d", len(sender.subjects))
	}
}
