// Package transport defines the request/response DTOs for the conversation
// bounded context.
package transport

// AgentReplyRequest is the dashboard's human-agent reply body.
type AgentReplyRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

// ConversationResponse is a single dashboard conversation row.
type ConversationResponse struct {
	ID             string  `json:"id"`
	CustomerNumber string  `json:"customer_number"`
	CustomerName   string  `json:"customer_name,omitempty"`
	Status         string  `json:"status"`
	AIHandling     bool    `json:"ai_handling"`
	LastMessageAt  *string `json:"last_message_at"`
	LastMessage    string  `json:"last_message,omitempty"`
	MessageCount   int     `json:"message_count"`
	Unread         bool    `json:"unread"`
}

// MessageResponse is a single message row.
type MessageResponse struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	NeedsHuman bool   `json:"needs_human"`
	CreatedAt  string `json:"created_at"`
}

// StatsResponse reports conversation counts grouped by status.
type StatsResponse struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	NeedsHuman int `json:"needs_human"`
	Resolved   int `json:"resolved"`
}

// StatusUpdateResponse acknowledges a takeover/resolve action.
type StatusUpdateResponse struct {
	Status string `json:"status"`
}
