// Package domain defines the conversation bounded context's entities and
// closed enumerations. Status and Role are deliberately typed so that every
// site branching on them is exhaustive and adding a value is a
// compile-time-visible change.
package domain

import (
	"time"

	"replify_backend/platform/apperr"

	"github.com/google/uuid"
)

// Status is the conversation lifecycle state.
type Status string

const (
	// StatusOpen means automation may handle the conversation.
	StatusOpen Status = "open"
	// StatusNeedsHuman means the conversation awaits a human agent.
	StatusNeedsHuman Status = "needs_human"
	// StatusResolved is terminal; later contact opens a new conversation.
	StatusResolved Status = "resolved"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusOpen, StatusNeedsHuman, StatusResolved:
		return Status(raw), nil
	default:
		return "", apperr.Validation("unknown conversation status: " + raw)
	}
}

// Role identifies the author of a message.
type Role string

const (
	// RoleUser is the customer.
	RoleUser Role = "user"
	// RoleAssistant is the automated assistant.
	RoleAssistant Role = "assistant"
	// RoleHumanAgent is a human operator replying from the dashboard.
	RoleHumanAgent Role = "human_agent"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser, RoleAssistant, RoleHumanAgent:
		return Role(raw), nil
	default:
		return "", apperr.Validation("unknown message role: " + raw)
	}
}

// InModelContext reports whether messages with this role participate in
// generation history. Human agent turns are excluded so agent and assistant
// voices are never conflated in model context.
func (r Role) InModelContext() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	case RoleHumanAgent:
		return false
	default:
		return false
	}
}

// Conversation is the unit of ongoing dialogue between one customer and one
// business. At most one non-resolved conversation exists per
// (business, customer) pair; the store enforces this with a partial unique
// index.
type Conversation struct {
	ID             uuid.UUID
	BusinessID     uuid.UUID
	CustomerNumber string
	CustomerName   string
	Status         Status
	AIHandling     bool
	LastMessageAt  *time.Time
	CreatedAt      time.Time

	// Messages is populated only by loads that request it (the directory's
	// find-or-create and the message listing); ordered by CreatedAt ascending.
	Messages []Message
}

// Active reports whether the conversation still accepts messages under its
// current identity. Resolved conversations are terminal.
func (c *Conversation) Active() bool {
	return c.Status != StatusResolved
}

// Message is a single immutable turn within a conversation.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Role           Role
	Content        string
	// ChannelMessageID is the provider's message id when the message came in
	// over the channel; unique when present, used for idempotent ingestion.
	ChannelMessageID string
	NeedsHuman       bool
	CreatedAt        time.Time
}
