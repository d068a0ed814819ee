package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"replify_backend/internal/conversation/domain"
	"replify_backend/platform/apperr"
)

const (
	conversationNotFoundMessage = "conversation not found"
	duplicateMessageMessage     = "channel message already ingested"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new conversation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetActive retrieves the most recent non-resolved conversation for the
// (business, customer) pair with its messages loaded.
func (r *Repo) GetActive(ctx context.Context, businessID uuid.UUID, customerNumber string) (domain.Conversation, error) {
	query := `
		SELECT id, business_id, customer_number, COALESCE(customer_name, ''), status, ai_handling, last_message_at, created_at
		FROM conversations
		WHERE business_id = $1 AND customer_number = $2 AND status <> 'resolved'
		ORDER BY created_at DESC
		LIMIT 1`

	conv, err := r.scanConversation(r.pool.QueryRow(ctx, query, businessID, customerNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Conversation{}, apperr.NotFound(conversationNotFoundMessage)
		}
		return domain.Conversation{}, fmt.Errorf("get active conversation: %w", err)
	}

	msgs, err := r.ListMessages(ctx, conv.ID)
	if err != nil {
		return domain.Conversation{}, err
	}
	conv.Messages = msgs

	return conv, nil
}

// Create inserts a fresh open conversation with ai_handling enabled.
func (r *Repo) Create(ctx context.Context, businessID uuid.UUID, customerNumber, customerName string) (domain.Conversation, error) {
	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:             uuid.New(),
		BusinessID:     businessID,
		CustomerNumber: customerNumber,
		CustomerName:   customerName,
		Status:         domain.StatusOpen,
		AIHandling:     true,
		LastMessageAt:  &now,
		CreatedAt:      now,
	}

	query := `
		INSERT INTO conversations (id, business_id, customer_number, customer_name, status, ai_handling, last_message_at, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		conv.ID, conv.BusinessID, conv.CustomerNumber, conv.CustomerName, conv.Status, conv.AIHandling, conv.LastMessageAt, conv.CreatedAt,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domain.Conversation{}, apperr.Conflict("active conversation already exists for customer")
		}
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}

	return conv, nil
}

// GetByID retrieves a conversation without its messages.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error) {
	query := `
		SELECT id, business_id, customer_number, COALESCE(customer_name, ''), status, ai_handling, last_message_at, created_at
		FROM conversations
		WHERE id = $1`

	conv, err := r.scanConversation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Conversation{}, apperr.NotFound(conversationNotFoundMessage)
		}
		return domain.Conversation{}, fmt.Errorf("get conversation by id: %w", err)
	}

	return conv, nil
}

// Append inserts the message and updates the parent conversation atomically.
// Both statements run inside one transaction: a crash between them must not
// leave the conversation's status inconsistent with its messages.
func (r *Repo) Append(ctx context.Context, params AppendParams) (domain.Message, error) {
	now := time.Now().UTC()
	msg := domain.Message{
		ID:               uuid.New(),
		ConversationID:   params.ConversationID,
		Role:             params.Role,
		Content:          params.Content,
		ChannelMessageID: params.ChannelMessageID,
		NeedsHuman:       params.NeedsHuman,
		CreatedAt:        now,
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Message{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	insert := `
		INSERT INTO messages (id, conversation_id, role, content, channel_message_id, needs_human, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`

	_, err = tx.Exec(ctx, insert,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.ChannelMessageID, msg.NeedsHuman, msg.CreatedAt,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domain.Message{}, apperr.Conflict(duplicateMessageMessage)
		}
		if isPgError(err, pgForeignKeyViolation) {
			return domain.Message{}, apperr.NotFound(conversationNotFoundMessage)
		}
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}

	var update string
	if params.NeedsHuman {
		update = `UPDATE conversations SET last_message_at = $2, status = 'needs_human', ai_handling = FALSE WHERE id = $1`
	} else {
		update = `UPDATE conversations SET last_message_at = $2 WHERE id = $1`
	}

	tag, err := tx.Exec(ctx, update, params.ConversationID, now)
	if err != nil {
		return domain.Message{}, fmt.Errorf("update conversation after append: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Message{}, apperr.NotFound(conversationNotFoundMessage)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Message{}, fmt.Errorf("commit append: %w", err)
	}

	return msg, nil
}

// SetStatus updates status and ai_handling on a conversation.
func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status domain.Status, aiHandling bool) error {
	query := `UPDATE conversations SET status = $2, ai_handling = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status, aiHandling)
	if err != nil {
		return fmt.Errorf("set conversation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(conversationNotFoundMessage)
	}

	return nil
}

// List retrieves dashboard summaries ordered by latest activity.
func (r *Repo) List(ctx context.Context, businessID uuid.UUID, status *domain.Status) ([]Summary, error) {
	query := `
		SELECT c.id, c.customer_number, COALESCE(c.customer_name, ''), c.status, c.ai_handling,
		       c.last_message_at, c.created_at,
		       COALESCE(last_msg.content, ''),
		       COALESCE(counts.total, 0)
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT m.content FROM messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC
			LIMIT 1
		) last_msg ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS total FROM messages m
			WHERE m.conversation_id = c.id
		) counts ON TRUE
		WHERE c.business_id = $1 AND ($2::text IS NULL OR c.status = $2)
		ORDER BY c.last_message_at DESC NULLS LAST`

	var statusFilter *string
	if status != nil {
		s := string(*status)
		statusFilter = &s
	}

	rows, err := r.pool.Query(ctx, query, businessID, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var rawStatus string
		if err := rows.Scan(
			&s.ID, &s.CustomerNumber, &s.CustomerName, &rawStatus, &s.AIHandling,
			&s.LastMessageAt, &s.CreatedAt, &s.LastMessage, &s.MessageCount,
		); err != nil {
			return nil, fmt.Errorf("scan conversation summary: %w", err)
		}
		parsed, err := domain.ParseStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		s.Status = parsed
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// ListMessages retrieves all messages of a conversation, oldest first.
func (r *Repo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, COALESCE(channel_message_id, ''), needs_human, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var rawRole string
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &rawRole, &m.Content, &m.ChannelMessageID, &m.NeedsHuman, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		role, err := domain.ParseRole(rawRole)
		if err != nil {
			return nil, err
		}
		m.Role = role
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

// CountByStatus returns conversation counts grouped by status.
func (r *Repo) CountByStatus(ctx context.Context, businessID uuid.UUID) (map[domain.Status]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM conversations
		WHERE business_id = $1
		GROUP BY status`

	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("count conversations by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var rawStatus string
		var count int
		if err := rows.Scan(&rawStatus, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		status, err := domain.ParseStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// HasChannelMessage reports whether a channel message id was already ingested.
func (r *Repo) HasChannelMessage(ctx context.Context, channelMessageID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM messages WHERE channel_message_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, channelMessageID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check channel message: %w", err)
	}
	return exists, nil
}

func (r *Repo) scanConversation(row pgx.Row) (domain.Conversation, error) {
	var conv domain.Conversation
	var rawStatus string

	err := row.Scan(
		&conv.ID, &conv.BusinessID, &conv.CustomerNumber, &conv.CustomerName,
		&rawStatus, &conv.AIHandling, &conv.LastMessageAt, &conv.CreatedAt,
	)
	if err != nil {
		return domain.Conversation{}, err
	}

	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return domain.Conversation{}, err
	}
	conv.Status = status

	return conv, nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
