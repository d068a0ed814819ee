// Package events defines domain events for decoupled, event-driven
// communication between modules. Infrastructure (Bus, Handler) is in
// platform/events.
package events

import (
	platformevents "replify_backend/platform/events"
	"replify_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = platformevents.Event
	Bus         = platformevents.Bus
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
	BaseEvent   = platformevents.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = platformevents.NewBaseEvent

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// =============================================================================
// Conversation Domain Events
// =============================================================================

// ConversationEscalated is published when a conversation transitions to
// needs_human, whether by trigger phrase, model sentinel, or dashboard
// takeover.
type ConversationEscalated struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	BusinessID     uuid.UUID `json:"businessId"`
	CustomerNumber string    `json:"customerNumber"`
	// Reason is a short machine-readable cause: "trigger_phrase",
	// "model_sentinel", or "takeover".
	Reason string `json:"reason"`
}

func (e ConversationEscalated) EventName() string { return "conversation.escalated" }

// ConversationResolved is published when an operator closes a conversation.
type ConversationResolved struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	BusinessID     uuid.UUID `json:"businessId"`
}

func (e ConversationResolved) EventName() string { return "conversation.resolved" }
