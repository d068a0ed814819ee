// Package transport defines the request/response DTOs for the business
// bounded context.
package transport

// CatalogueItemRequest is one catalogue entry in a registration or add call.
type CatalogueItemRequest struct {
	Name        string `json:"name" validate:"required"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	Description string `json:"description"`
	IsAvailable *bool  `json:"is_available"`
}

// RegisterBusinessRequest registers a new business account with an optional
// starting catalogue.
type RegisterBusinessRequest struct {
	UserID         string                 `json:"user_id" validate:"required"`
	Name           string                 `json:"name" validate:"required"`
	WhatsAppNumber string                 `json:"whatsapp_number"`
	PhoneNumberID  string                 `json:"phone_number_id"`
	AccessToken    string                 `json:"access_token"`
	Description    string                 `json:"description"`
	BusinessHours  string                 `json:"business_hours"`
	Location       string                 `json:"location"`
	PaymentMethods string                 `json:"payment_methods"`
	DeliveryInfo   string                 `json:"delivery_info"`
	GreetingMsg    string                 `json:"greeting_message"`
	AwayMsg        string                 `json:"away_message"`
	Catalogue      []CatalogueItemRequest `json:"catalogue" validate:"dive"`
}

// RegisterBusinessResponse acknowledges a registration.
type RegisterBusinessResponse struct {
	BusinessID string `json:"business_id"`
}

// CatalogueItemResponse is one catalogue entry in a business response.
type CatalogueItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price,omitempty"`
	Size        string `json:"size,omitempty"`
	Description string `json:"description,omitempty"`
	IsAvailable bool   `json:"is_available"`
}

// BusinessResponse is the dashboard's business profile shape.
type BusinessResponse struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	WhatsAppNumber string                  `json:"whatsapp_number,omitempty"`
	PhoneNumberID  string                  `json:"phone_number_id,omitempty"`
	Description    string                  `json:"description,omitempty"`
	BusinessHours  string                  `json:"business_hours,omitempty"`
	Location       string                  `json:"location,omitempty"`
	PaymentMethods string                  `json:"payment_methods,omitempty"`
	DeliveryInfo   string                  `json:"delivery_info,omitempty"`
	GreetingMsg    string                  `json:"greeting_message,omitempty"`
	AwayMsg        string                  `json:"away_message,omitempty"`
	IsActive       bool                    `json:"is_active"`
	AIEnabled      bool                    `json:"ai_enabled"`
	CreatedAt      string                  `json:"created_at"`
	Catalogue      []CatalogueItemResponse `json:"catalogue"`
}
