// Package service implements the conversation lifecycle: the status state
// machine, the message append semantics, and the find-or-create directory
// for (business, customer) pairs.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"replify_backend/internal/conversation/domain"
	"replify_backend/internal/conversation/repository"
	"replify_backend/internal/conversation/transport"
	"replify_backend/internal/events"
	"replify_backend/platform/apperr"
	"replify_backend/platform/logger"
)

// DeliveryRequest carries one outbound text to the customer.
type DeliveryRequest struct {
	CustomerNumber string
	Text           string
	PhoneNumberID  string
	AccessToken    string
}

// Deliverer sends outbound texts over the messaging channel. Failures are
// logged by the caller and never retried here.
type Deliverer interface {
	Deliver(ctx context.Context, req DeliveryRequest) error
}

// ChannelCredentials resolves a business's channel send credentials.
type ChannelCredentials interface {
	ChannelCredentialsFor(ctx context.Context, businessID uuid.UUID) (phoneNumberID, accessToken string, err error)
}

// AppendInput is the service-level append request.
type AppendInput struct {
	ConversationID   uuid.UUID
	Role             domain.Role
	Content          string
	ChannelMessageID string
	NeedsHuman       bool
	// EscalationReason annotates the escalation event when NeedsHuman is set:
	// "trigger_phrase" or "model_sentinel".
	EscalationReason string
}

// Service provides conversation lifecycle operations.
type Service struct {
	repo  repository.Repository
	creds ChannelCredentials
	out   Deliverer
	bus   events.Bus
	log   *logger.Logger

	// directory collapses concurrent find-or-create calls for the same
	// (business, customer) pair within this process. Cross-process races are
	// caught by the store's partial unique index.
	directory singleflight.Group
}

// New creates a new conversation service.
func New(repo repository.Repository, creds ChannelCredentials, out Deliverer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, creds: creds, out: out, bus: bus, log: log}
}

// GetOrCreate returns the active conversation for the (business, customer)
// pair, creating a fresh open one when none exists. The customer name only
// applies on create; it is the channel profile name and may be empty. The
// returned conversation has its messages eagerly loaded.
func (s *Service) GetOrCreate(ctx context.Context, businessID uuid.UUID, customerNumber, customerName string) (domain.Conversation, error) {
	key := businessID.String() + "|" + customerNumber

	v, err, _ := s.directory.Do(key, func() (interface{}, error) {
		return s.getOrCreate(ctx, businessID, customerNumber, customerName)
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	return v.(domain.Conversation), nil
}

func (s *Service) getOrCreate(ctx context.Context, businessID uuid.UUID, customerNumber, customerName string) (domain.Conversation, error) {
	conv, err := s.repo.GetActive(ctx, businessID, customerNumber)
	if err == nil {
		return conv, nil
	}
	if !apperr.IsNotFound(err) {
		return domain.Conversation{}, err
	}

	conv, err = s.repo.Create(ctx, businessID, customerNumber, customerName)
	if err == nil {
		s.log.Info("conversation created", "conversation_id", conv.ID, "business_id", businessID)
		return conv, nil
	}
	if apperr.IsConflict(err) {
		// A concurrent first message won the unique-index race; its
		// conversation is the active one now.
		return s.repo.GetActive(ctx, businessID, customerNumber)
	}
	return domain.Conversation{}, err
}

// AppendMessage persists one message. When NeedsHuman is set the parent
// conversation transitions to needs_human with automation disabled, in the
// same transaction as the insert.
func (s *Service) AppendMessage(ctx context.Context, input AppendInput) (domain.Message, error) {
	if _, err := domain.ParseRole(string(input.Role)); err != nil {
		return domain.Message{}, err
	}

	msg, err := s.repo.Append(ctx, repository.AppendParams{
		ConversationID:   input.ConversationID,
		Role:             input.Role,
		Content:          input.Content,
		ChannelMessageID: input.ChannelMessageID,
		NeedsHuman:       input.NeedsHuman,
	})
	if err != nil {
		return domain.Message{}, err
	}

	if input.NeedsHuman {
		s.publishEscalated(ctx, input.ConversationID, input.EscalationReason)
	}

	return msg, nil
}

// TakeOver flags the conversation for a human agent and disables automation,
// independent of any message insert.
func (s *Service) TakeOver(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetStatus(ctx, id, domain.StatusNeedsHuman, false); err != nil {
		return err
	}

	s.log.Info("conversation taken over", "conversation_id", id)
	s.publishEscalated(ctx, id, "takeover")
	return nil
}

// Resolve closes the conversation. Resolved is terminal: the next inbound
// message from the customer opens a new conversation.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) error {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetStatus(ctx, id, domain.StatusResolved, false); err != nil {
		return err
	}

	s.log.Info("conversation resolved", "conversation_id", id)
	if s.bus != nil {
		s.bus.Publish(ctx, events.ConversationResolved{
			BaseEvent:      events.NewBaseEvent(),
			ConversationID: id,
			BusinessID:     conv.BusinessID,
		})
	}
	return nil
}

// RecordAgentReply persists a human agent's reply and sends it to the
// customer. Automation stays disabled; an agent answering must not silently
// re-enable the assistant.
func (s *Service) RecordAgentReply(ctx context.Context, id uuid.UUID, text string) (domain.Message, error) {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}

	msg, err := s.repo.Append(ctx, repository.AppendParams{
		ConversationID: id,
		Role:           domain.RoleHumanAgent,
		Content:        text,
	})
	if err != nil {
		return domain.Message{}, err
	}

	phoneNumberID, accessToken, err := s.creds.ChannelCredentialsFor(ctx, conv.BusinessID)
	if err != nil {
		return domain.Message{}, err
	}

	if err := s.out.Deliver(ctx, DeliveryRequest{
		CustomerNumber: conv.CustomerNumber,
		Text:           text,
		PhoneNumberID:  phoneNumberID,
		AccessToken:    accessToken,
	}); err != nil {
		// The reply is already durable; delivery failure is logged, not retried.
		s.log.DeliveryError(conv.CustomerNumber, err)
	}

	return msg, nil
}

// List returns dashboard conversation rows, optionally filtered by status.
func (s *Service) List(ctx context.Context, businessID uuid.UUID, statusFilter string) ([]transport.ConversationResponse, error) {
	var status *domain.Status
	if statusFilter != "" {
		parsed, err := domain.ParseStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	summaries, err := s.repo.List(ctx, businessID, status)
	if err != nil {
		return nil, err
	}

	rows := make([]transport.ConversationResponse, 0, len(summaries))
	for _, sum := range summaries {
		rows = append(rows, toConversationResponse(sum))
	}
	return rows, nil
}

// ListMessages returns all messages of a conversation, oldest first.
func (s *Service) ListMessages(ctx context.Context, id uuid.UUID) ([]transport.MessageResponse, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	rows := make([]transport.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, transport.MessageResponse{
			ID:         m.ID.String(),
			Role:       string(m.Role),
			Content:    m.Content,
			NeedsHuman: m.NeedsHuman,
			CreatedAt:  m.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows, nil
}

// Stats returns conversation counts grouped by status.
func (s *Service) Stats(ctx context.Context, businessID uuid.UUID) (transport.StatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx, businessID)
	if err != nil {
		return transport.StatsResponse{}, err
	}

	stats := transport.StatsResponse{
		Open:       counts[domain.StatusOpen],
		NeedsHuman: counts[domain.StatusNeedsHuman],
		Resolved:   counts[domain.StatusResolved],
	}
	stats.Total = stats.Open + stats.NeedsHuman + stats.Resolved
	return stats, nil
}

// HasChannelMessage reports whether a channel message id was already ingested.
func (s *Service) HasChannelMessage(ctx context.Context, channelMessageID string) (bool, error) {
	return s.repo.HasChannelMessage(ctx, channelMessageID)
}

func (s *Service) publishEscalated(ctx context.Context, id uuid.UUID, reason string) {
	if s.bus == nil {
		return
	}

	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Warn("escalation event skipped", "conversation_id", id, "error", err.Error())
		return
	}

	s.bus.Publish(ctx, events.ConversationEscalated{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: id,
		BusinessID:     conv.BusinessID,
		CustomerNumber: conv.CustomerNumber,
		Reason:         reason,
	})
}

func toConversationResponse(sum repository.Summary) transport.ConversationResponse {
	var lastMessageAt *string
	if sum.LastMessageAt != nil {
		formatted := sum.LastMessageAt.Format(time.RFC3339)
		lastMessageAt = &formatted
	}

	return transport.ConversationResponse{
		ID:             sum.ID.String(),
		CustomerNumber: sum.CustomerNumber,
		CustomerName:   sum.CustomerName,
		Status:         string(sum.Status),
		AIHandling:     sum.AIHandling,
		LastMessageAt:  lastMessageAt,
		LastMessage:    sum.LastMessage,
		MessageCount:   sum.MessageCount,
		Unread:         sum.Status == domain.StatusNeedsHuman,
	}
}
