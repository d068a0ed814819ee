// Package inbound ingests WhatsApp Cloud API webhook events and runs the
// per-message pipeline: business lookup, conversation find-or-create, message
// persistence, reply resolution, and outbound delivery.
package inbound

import "strings"

// Notification is the Meta webhook envelope. Only the fields the pipeline
// reads are modelled; everything else is ignored.
type Notification struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string          `json:"messaging_product"`
	Metadata         Metadata        `json:"metadata"`
	Contacts         []Contact       `json:"contacts"`
	Messages         []InboundMessage `json:"messages"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	WaID    string         `json:"wa_id"`
	Profile ContactProfile `json:"profile"`
}

type ContactProfile struct {
	Name string `json:"name"`
}

type InboundMessage struct {
	ID        string      `json:"id"`
	From      string      `json:"from"`
	Timestamp string      `json:"timestamp"`
	Type      string      `json:"type"`
	Text      *TextBody   `json:"text,omitempty"`
}

type TextBody struct {
	Body string `json:"body"`
}

// MessageEvent is one inbound message with its routing metadata flattened out
// of the webhook envelope.
type MessageEvent struct {
	PhoneNumberID    string
	ChannelMessageID string
	From             string
	CustomerName     string
	Type             string
	Text             string
}

// FirstMessage extracts the first message event from the notification.
// Status-only notifications (delivery receipts etc.) yield ok=false.
func (n Notification) FirstMessage() (MessageEvent, bool) {
	for _, entry := range n.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			if len(value.Messages) == 0 {
				continue
			}

			msg := value.Messages[0]
			event := MessageEvent{
				PhoneNumberID:    value.Metadata.PhoneNumberID,
				ChannelMessageID: msg.ID,
				From:             msg.From,
				Type:             msg.Type,
			}
			if msg.Text != nil {
				event.Text = strings.TrimSpace(msg.Text.Body)
			}
			if len(value.Contacts) > 0 {
				event.CustomerName = value.Contacts[0].Profile.Name
			}
			return event, true
		}
	}
	return MessageEvent{}, false
}

// mediaTypes are generation-ineligible message types that get the fixed
// capability notice.
var mediaTypes = map[string]bool{
	"image":    true,
	"audio":    true,
	"video":    true,
	"document": true,
	"sticker":  true,
}
