package notification

import (
	"context"
	"fmt"
	"html"

	"replify_backend/internal/events"
	"replify_backend/platform/config"
	"replify_backend/platform/logger"
)

// EmailSender is what the module needs from the SMTP layer.
type EmailSender interface {
	Send(ctx context.Context, subject, htmlContent string) error
}

// Module handles conversation events and emails the operator inbox.
type Module struct {
	sender EmailSender
	cfg    config.EmailConfig
	log    *logger.Logger
}

// NewModule creates the notification module.
func NewModule(sender EmailSender, cfg config.EmailConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, cfg: cfg, log: log}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ConversationEscalated{}.EventName(), m)
}

// Handle dispatches a domain event to its handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ConversationEscalated:
		return m.handleEscalated(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleEscalated(ctx context.Context, e events.ConversationEscalated) error {
	if !m.cfg.IsEmailEnabled() {
		return nil
	}

	subject := "Customer waiting for a human agent"
	body := fmt.Sprintf(
		"<h2>Conversation escalated</h2>"+
			"<p>Customer <strong>%s</strong> needs a human agent.</p>"+
			"<p>Reason: %s<br>Conversation: %s</p>",
		html.EscapeString(e.CustomerNumber),
		html.EscapeString(e.Reason),
		e.ConversationID,
	)

	if err := m.sender.Send(ctx, subject, body); err != nil {
		m.log.Error("escalation email failed", "conversation_id", e.ConversationID, "error", err.Error())
		return err
	}

	m.log.Info("escalation email sent", "conversation_id", e.ConversationID)
	return nil
}

// Compile-time check that Module implements events.Handler
var _ events.Handler = (*Module)(nil)
