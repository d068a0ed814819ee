package inbound

import (
	"context"

	"github.com/google/uuid"

	"replify_backend/internal/assistant"
	busrepo "replify_backend/internal/business/repository"
	"replify_backend/internal/conversation/domain"
	convsvc "replify_backend/internal/conversation/service"
	"replify_backend/platform/apperr"
	"replify_backend/platform/config"
	"replify_backend/platform/logger"
	"replify_backend/platform/phone"
)

// FallbackMediaMessage is sent for message types the assistant cannot process.
const FallbackMediaMessage = "Hi! I can only process text messages right now. " +
	"Please describe what you need and I'll be happy to help 😊"

// BusinessDirectory resolves the business addressed by a webhook event.
type BusinessDirectory interface {
	GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (busrepo.Business, error)
}

// ConversationStore is the slice of the conversation service the pipeline uses.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, businessID uuid.UUID, customerNumber, customerName string) (domain.Conversation, error)
	AppendMessage(ctx context.Context, input convsvc.AppendInput) (domain.Message, error)
	HasChannelMessage(ctx context.Context, channelMessageID string) (bool, error)
}

// ReplyResolver produces the assistant's reply for one inbound text.
type ReplyResolver interface {
	Resolve(ctx context.Context, inbound string, profile assistant.BusinessProfile, history []assistant.Turn) assistant.Outcome
}

// ReadMarker marks inbound channel messages as read.
type ReadMarker interface {
	MarkRead(ctx context.Context, phoneNumberID, accessToken, channelMessageID string) error
}

// Processor runs the inbound pipeline for one webhook message event.
type Processor struct {
	businesses BusinessDirectory
	convs      ConversationStore
	resolver   ReplyResolver
	out        convsvc.Deliverer
	reader     ReadMarker
	cfg        config.AIConfig
	log        *logger.Logger
}

// NewProcessor creates the inbound message processor.
func NewProcessor(
	businesses BusinessDirectory,
	convs ConversationStore,
	resolver ReplyResolver,
	out convsvc.Deliverer,
	reader ReadMarker,
	cfg config.AIConfig,
	log *logger.Logger,
) *Processor {
	return &Processor{
		businesses: businesses,
		convs:      convs,
		resolver:   resolver,
		out:        out,
		reader:     reader,
		cfg:        cfg,
		log:        log,
	}
}

// Process handles one webhook notification. Errors are returned for logging
// only; the HTTP layer always acknowledges with 200 so Meta does not retry
// into a failing pipeline.
func (p *Processor) Process(ctx context.Context, notification Notification) error {
	event, ok := notification.FirstMessage()
	if !ok {
		return nil
	}

	business, err := p.businesses.GetByPhoneNumberID(ctx, event.PhoneNumberID)
	if err != nil {
		if apperr.IsNotFound(err) {
			p.log.Warn("no business for webhook event", "phone_number_id", event.PhoneNumberID)
			return nil
		}
		return err
	}

	if p.reader != nil && event.ChannelMessageID != "" {
		if err := p.reader.MarkRead(ctx, business.PhoneNumberID, business.AccessToken, event.ChannelMessageID); err != nil {
			p.log.Warn("mark as read failed", "error", err.Error())
		}
	}

	switch {
	case event.Type == "text":
		return p.processText(ctx, business, event)
	case mediaTypes[event.Type]:
		return p.deliver(ctx, business, event.From, FallbackMediaMessage)
	default:
		return nil
	}
}

func (p *Processor) processText(ctx context.Context, business busrepo.Business, event MessageEvent) error {
	if event.Text == "" {
		return nil
	}

	seen, err := p.convs.HasChannelMessage(ctx, event.ChannelMessageID)
	if err != nil {
		return err
	}
	if seen {
		p.log.Info("duplicate webhook delivery skipped", "channel_message_id", event.ChannelMessageID)
		return nil
	}

	customerNumber := phone.NormalizeWhatsApp(event.From)

	conv, err := p.convs.GetOrCreate(ctx, business.ID, customerNumber, event.CustomerName)
	if err != nil {
		return err
	}

	if _, err := p.convs.AppendMessage(ctx, convsvc.AppendInput{
		ConversationID:   conv.ID,
		Role:             domain.RoleUser,
		Content:          event.Text,
		ChannelMessageID: event.ChannelMessageID,
	}); err != nil {
		return err
	}

	if !p.cfg.IsAIEnabled() || !business.AIEnabled || !conv.AIHandling {
		return nil
	}

	history := assistant.AssembleHistory(conv.Messages)
	outcome := p.resolver.Resolve(ctx, event.Text, profileOf(business), history)

	if _, err := p.convs.AppendMessage(ctx, convsvc.AppendInput{
		ConversationID:   conv.ID,
		Role:             domain.RoleAssistant,
		Content:          outcome.Reply,
		NeedsHuman:       outcome.Escalate,
		EscalationReason: outcome.Reason,
	}); err != nil {
		return err
	}

	return p.deliver(ctx, business, customerNumber, outcome.Reply)
}

func (p *Processor) deliver(ctx context.Context, business busrepo.Business, to, text string) error {
	err := p.out.Deliver(ctx, convsvc.DeliveryRequest{
		CustomerNumber: to,
		Text:           text,
		PhoneNumberID:  business.PhoneNumberID,
		AccessToken:    business.AccessToken,
	})
	if err != nil {
		p.log.DeliveryError(to, err)
	}
	return nil
}

func profileOf(business busrepo.Business) assistant.BusinessProfile {
	entries := make([]assistant.CatalogueEntry, 0, len(business.Catalogue))
	for _, item := range business.Catalogue {
		entries = append(entries, assistant.CatalogueEntry{
			Name:        item.Name,
			Price:       item.Price,
			Size:        item.Size,
			Description: item.Description,
			IsAvailable: item.IsAvailable,
		})
	}

	return assistant.BusinessProfile{
		Name:           business.Name,
		Description:    business.Description,
		BusinessHours:  business.BusinessHours,
		Location:       business.Location,
		PaymentMethods: business.PaymentMethods,
		DeliveryInfo:   business.DeliveryInfo,
		Catalogue:      entries,
	}
}
