package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"replify_backend/internal/conversation/domain"
	"replify_backend/internal/conversation/repository"
	"replify_backend/internal/events"
	"replify_backend/platform/apperr"
	"replify_backend/platform/logger"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	conversations map[uuid.UUID]*domain.Conversation
	messages      map[uuid.UUID][]domain.Message

	createCalls int
	// conflictOnCreate makes the next Create fail as if the partial unique
	// index fired, and registers the "winning" conversation.
	conflictOnCreate bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		conversations: make(map[uuid.UUID]*domain.Conversation),
		messages:      make(map[uuid.UUID][]domain.Message),
	}
}

func (f *fakeRepo) GetActive(_ context.Context, businessID uuid.UUID, customerNumber string) (domain.Conversation, error) {
	var found *domain.Conversation
	for _, c := range f.conversations {
		if c.BusinessID == businessID && c.CustomerNumber == customerNumber && c.Status != domain.StatusResolved {
			if found == nil || c.CreatedAt.After(found.CreatedAt) {
				found = c
			}
		}
	}
	if found == nil {
		return domain.Conversation{}, apperr.NotFound("conversation not found")
	}
	conv := *found
	conv.Messages = append([]domain.Message(nil), f.messages[conv.ID]...)
	return conv, nil
}

func (f *fakeRepo) Create(_ context.Context, businessID uuid.UUID, customerNumber, customerName string) (domain.Conversation, error) {
	f.createCalls++
	if f.conflictOnCreate {
		f.conflictOnCreate = false
		f.insert(businessID, customerNumber, customerName)
		return domain.Conversation{}, apperr.Conflict("active conversation already exists")
	}
	return f.insert(businessID, customerNumber, customerName), nil
}

func (f *fakeRepo) insert(businessID uuid.UUID, customerNumber, customerName string) domain.Conversation {
	now := time.Now()
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
	f.conversations[conv.ID] = &conv
	return conv
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Conversation, error) {
	c, ok := f.conversations[id]
	if !ok {
		return domain.Conversation{}, apperr.NotFound("conversation not found")
	}
	return *c, nil
}

func (f *fakeRepo) Append(_ context.Context, params repository.AppendParams) (domain.Message, error) {
	c, ok := f.conversations[params.ConversationID]
	if !ok {
		return domain.Message{}, apperr.NotFound("conversation not found")
	}

	msg := domain.Message{
		ID:               uuid.New(),
		ConversationID:   params.ConversationID,
		Role:             params.Role,
		Content:          params.Content,
		ChannelMessageID: params.ChannelMessageID,
		NeedsHuman:       params.NeedsHuman,
		CreatedAt:        time.Now(),
	}
	f.messages[params.ConversationID] = append(f.messages[params.ConversationID], msg)

	now := msg.CreatedAt
	c.LastMessageAt = &now
	if params.NeedsHuman {
		c.Status = domain.StatusNeedsHuman
		c.AIHandling = false
	}
	return msg, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id uuid.UUID, status domain.Status, aiHandling bool) error {
	c, ok := f.conversations[id]
	if !ok {
		return apperr.NotFound("conversation not found")
	}
	c.Status = status
	c.AIHandling = aiHandling
	return nil
}

func (f *fakeRepo) List(_ context.Context, businessID uuid.UUID, status *domain.Status) ([]repository.Summary, error) {
	var rows []repository.Summary
	for _, c := range f.conversations {
		if c.BusinessID != businessID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		sum := repository.Summary{
			ID:             c.ID,
			CustomerNumber: c.CustomerNumber,
			Status:         c.Status,
			AIHandling:     c.AIHandling,
			LastMessageAt:  c.LastMessageAt,
			MessageCount:   len(f.messages[c.ID]),
			CreatedAt:      c.CreatedAt,
		}
		if msgs := f.messages[c.ID]; len(msgs) > 0 {
			sum.LastMessage = msgs[len(msgs)-1].Content
		}
		rows = append(rows, sum)
	}
	return rows, nil
}

func (f *fakeRepo) ListMessages(_ context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	if _, ok := f.conversations[conversationID]; !ok {
		return nil, apperr.NotFound("conversation not found")
	}
	return append([]domain.Message(nil), f.messages[conversationID]...), nil
}

func (f *fakeRepo) CountByStatus(_ context.Context, businessID uuid.UUID) (map[domain.Status]int, error) {
	counts := make(map[domain.Status]int)
	for _, c := range f.conversations {
		if c.BusinessID == businessID {
			counts[c.Status]++
		}
	}
	return counts, nil
}

func (f *fakeRepo) HasChannelMessage(_ context.Context, channelMessageID string) (bool, error) {
	for _, msgs := range f.messages {
		for _, m := range msgs {
			if m.ChannelMessageID == channelMessageID && channelMessageID != "" {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeCreds struct{}

func (fakeCreds) ChannelCredentialsFor(context.Context, uuid.UUID) (string, string, error) {
	return "pnid-1", "token-1", nil
}

type fakeDeliverer struct {
	sent []DeliveryRequest
	err  error
}

func (f *fakeDeliverer) Deliver(_ context.Context, req DeliveryRequest) error {
	f.sent = append(f.sent, req)
	return f.err
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event)            { b.published = append(b.published, event) }
func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error  { b.published = append(b.published, event); return nil }
func (b *recordingBus) Subscribe(string, events.Handler)                         {}

func newTestService(repo repository.Repository, out Deliverer, bus events.Bus) *Service {
	return New(repo, fakeCreds{}, out, bus, logger.New("test"))
}

func TestGetOrCreate_ReusesActiveConversation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeDeliverer{}, &recordingBus{})
	businessID := uuid.New()

	first, err := svc.GetOrCreate(context.Background(), businessID, "27821234567", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GetOrCreate(context.Background(), businessID, "27821234567", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected the same conversation, got %s and %s", first.ID, second.ID)
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected a single create, got %d", repo.createCalls)
	}
}

func TestGetOrCreate_NewConversationAfterResolve(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeDeliverer{}, &recordingBus{})
	businessID := uuid.New()

	first, err := svc.GetOrCreate(context.Background(), businessID, "27821234567", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Resolve(context.Background(), first.ID); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	second, err := svc.GetOrCreate(context.Background(), businessID, "27821234567", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("resolved conversation must not be resurrected")
	}
	if second.Status != domain.StatusOpen || !second.AIHandling {
		t.Fatalf("new conversation must be open with automation on, got %s/%v", second.Status, second.AIHandling)
	}
}

func TestGetOrCreate_ConflictRetriesAsLookup(t *testing.T) {
	repo := newFakeRepo()
	repo.conflictOnCreate = true
	svc := newTestService(repo, &fakeDeliverer{}, &recordingBus{})
	businessID := uuid.New()

	conv, err := svc.GetOrCreate(context.Background(), businessID, "27821234567", "")
	if err != nil {
		t.Fatalf("conflict must degrade to a lookup, got error: %v", err)
	}
	if conv.ID == uuid.Nil {
		t.Fatalf("expected the winning conversation")
	}
}

func TestAppendMessage_NeedsHumanTransitionsAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeDeliverer{}, bus)
	conv, _ := svc.GetOrCreate(context.Background(), uuid.New(), "27821234567", "")

	_, err := svc.AppendMessage(context.Background(), AppendInput{
		ConversationID:   conv.ID,
		Role:             domain.RoleAssistant,
		Content:          "handing off",
		NeedsHuman:       true,
		EscalationReason: "trigger_phrase",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), conv.ID)
	if got.Status != domain.StatusNeedsHuman {
		t.Fatalf("expected needs_human, got %s", got.Status)
	}
	if got.AIHandling {
		t.Fatalf("automation must be disabled on escalation")
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	escalated, ok := bus.published[0].(events.ConversationEscalated)
	if !ok {
		t.Fatalf("expected ConversationEscalated, got %T", bus.published[0])
	}
	if escalated.Reason != "trigger_phrase" {
		t.Fatalf("expected trigger_phrase reason, got %q", escalated.Reason)
	}
}

func TestAppendMessage_RejectsUnknownRole(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeDeliverer{}, &recordingBus{})
	conv, _ := svc.GetOrCreate(context.Background(), uuid.New(), "27821234567", "")

	_, err := svc.AppendMessage(context.Background(), AppendInput{
		ConversationID: conv.ID,
		Role:           domain.Role("robot"),
		Content:        "beep",
	})
	if err == nil {
		t.Fatalf("expected validation error for unknown role")
	}
}

func TestRecordAgentReply_DeliveryFailureDoesNotFail(t *testing.T) {
	repo := newFakeRepo()
	out := &fakeDeliverer{err: errors.New("channel down")}
	svc := newTestService(repo, out, &recordingBus{})
	conv, _ := svc.GetOrCreate(context.Background(), uuid.New(), "27821234567", "")

	msg, err := svc.RecordAgentReply(context.Background(), conv.ID, "we will call you back")
	if err != nil {
		t.Fatalf("reply must stay durable on delivery failure, got: %v", err)
	}
	if msg.Role != domain.RoleHumanAgent {
		t.Fatalf("expected human_agent role, got %s", msg.Role)
	}
	if len(out.sent) != 1 {
		t.Fatalf("expected one delivery attempt, got %d", len(out.sent))
	}
	if out.sent[0].PhoneNumberID != "pnid-1" || out.sent[0].AccessToken != "token-1" {
		t.Fatalf("expected resolved channel credentials, got %+v", out.sent[0])
	}
}

func TestRecordAgentReply_UnknownConversation(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeDeliverer{}, &recordingBus{})

	_, err := svc.RecordAgentReply(context.Background(), uuid.New(), "hello?")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestTakeOver_FlagsAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := newTestService(repo, &fakeDeliverer{}, bus)
	conv, _ := svc.GetOrCreate(context.Background(), uuid.New(), "27821234567", "")

	if err := svc.TakeOver(context.Background(), conv.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), conv.ID)
	if got.Status != domain.StatusNeedsHuman || got.AIHandling {
		t.Fatalf("takeover must set needs_human with automation off, got %s/%v", got.Status, got.AIHandling)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected escalation event, got %d events", len(bus.published))
	}
	if e := bus.published[0].(events.ConversationEscalated); e.Reason != "takeover" {
		t.Fatalf("expected takeover reason, got %q", e.Reason)
	}
}

func TestStats_CountsByStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeDeliverer{}, &recordingBus{})
	businessID := uuid.New()

	open, _ := svc.GetOrCreate(context.Background(), businessID, "1000", "")
	flagged, _ := svc.GetOrCreate(context.Background(), businessID, "2000", "")
	_ = svc.TakeOver(context.Background(), flagged.ID)
	done, _ := svc.GetOrCreate(context.Background(), businessID, "3000", "")
	_ = svc.Resolve(context.Background(), done.ID)
	_ = open

	stats, err := svc.Stats(context.Background(), businessID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 3 || stats.Open != 1 || stats.NeedsHuman != 1 || stats.Resolved != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestList_InvalidStatusFilter(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeDeliverer{}, &recordingBus{})

	if _, err := svc.List(context.Background(), uuid.New(), "archived"); err == nil {
		t.Fatalf("expected validation error for unknown status filter")
	}
}

// Scenario: a customer chats, asks for a manager, and an agent replies. The
// conversation must land in needs_human with automation off, and the agent's
// reply must not re-enable it.
func TestScenario_EscalationThenAgentReply(t *testing.T) {
	repo := newFakeRepo()
	out := &fakeDeliverer{}
	svc := newTestService(repo, out, &recordingBus{})
	businessID := uuid.New()

	conv, err := svc.GetOrCreate(context.Background(), businessID, "27821234567", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mustAppend := func(input AppendInput) {
		t.Helper()
		if _, err := svc.AppendMessage(context.Background(), input); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	mustAppend(AppendInput{ConversationID: conv.ID, Role: domain.RoleUser, Content: "hi", ChannelMessageID: "wamid.1"})
	mustAppend(AppendInput{ConversationID: conv.ID, Role: domain.RoleAssistant, Content: "Hi! How can I help?"})
	mustAppend(AppendInput{ConversationID: conv.ID, Role: domain.RoleUser, Content: "I want to speak to a manager", ChannelMessageID: "wamid.2"})
	mustAppend(AppendInput{ConversationID: conv.ID, Role: domain.RoleAssistant, Content: "connecting you", NeedsHuman: true, EscalationReason: "trigger_phrase"})

	got, _ := repo.GetByID(context.Background(), conv.ID)
	if got.Status != domain.StatusNeedsHuman || got.AIHandling {
		t.Fatalf("expected needs_human with automation off, got %s/%v", got.Status, got.AIHandling)
	}

	if _, err := svc.RecordAgentReply(context.Background(), conv.ID, "manager here, how can I help?"); err != nil {
		t.Fatalf("agent reply failed: %v", err)
	}

	got, _ = repo.GetByID(context.Background(), conv.ID)
	if got.AIHandling {
		t.Fatalf("agent reply must not re-enable automation")
	}
	if got.Status != domain.StatusNeedsHuman {
		t.Fatalf("agent reply must not change status, got %s", got.Status)
	}

	msgs, _ := svc.ListMessages(context.Background(), conv.ID)
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	if msgs[len(msgs)-1].Role != string(domain.RoleHumanAgent) {
		t.Fatalf("expected final human_agent message, got %s", msgs[len(msgs)-1].Role)
	}
}
