package repository

import (
	"context"
	"time"

	"replify_backend/internal/conversation/domain"

	"github.com/google/uuid"
)

// AppendParams carries everything needed to persist one message and keep the
// parent conversation's fields in sync within a single transaction.
type AppendParams struct {
	ConversationID   uuid.UUID
	Role             domain.Role
	Content          string
	ChannelMessageID string // empty when the message did not come in over the channel
	NeedsHuman       bool
}

// Summary is the dashboard row shape for a conversation listing: the
// conversation plus its last message preview and message count.
type Summary struct {
	ID             uuid.UUID
	CustomerNumber string
	CustomerName   string
	Status         domain.Status
	AIHandling     bool
	LastMessageAt  *time.Time
	LastMessage    string
	MessageCount   int
	CreatedAt      time.Time
}

// Repository is the persistence port for conversations and messages.
type Repository interface {
	// GetActive returns the most recently created non-resolved conversation
	// for the (business, customer) pair, with messages eagerly loaded in
	// chronological order. Not-found when no active conversation exists.
	GetActive(ctx context.Context, businessID uuid.UUID, customerNumber string) (domain.Conversation, error)

	// Create inserts a fresh open conversation. The customer name is the
	// channel profile name and may be empty. A concurrent creation for the
	// same (business, customer) pair trips the store's partial unique index
	// and surfaces as a conflict error.
	Create(ctx context.Context, businessID uuid.UUID, customerNumber, customerName string) (domain.Conversation, error)

	// GetByID returns the conversation without its messages.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error)

	// Append inserts the message and updates the parent conversation's
	// last_message_at (and status/ai_handling when NeedsHuman) atomically.
	// Not-found when the conversation does not exist; conflict when the
	// channel message id was already ingested.
	Append(ctx context.Context, params AppendParams) (domain.Message, error)

	// SetStatus updates status and ai_handling. Not-found when the
	// conversation does not exist. Idempotent at the row level.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.Status, aiHandling bool) error

	// List returns dashboard summaries for a business, newest activity first,
	// optionally filtered by status.
	List(ctx context.Context, businessID uuid.UUID, status *domain.Status) ([]Summary, error)

	// ListMessages returns all messages of a conversation in chronological
	// order. Not-found when the conversation does not exist.
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)

	// CountByStatus returns conversation counts per status for a business.
	CountByStatus(ctx context.Context, businessID uuid.UUID) (map[domain.Status]int, error)

	// HasChannelMessage reports whether a channel message id was already
	// ingested, for cheap webhook redelivery short-circuiting.
	HasChannelMessage(ctx context.Context, channelMessageID string) (bool, error)
}
