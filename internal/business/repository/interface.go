package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Business is a registered business account with its channel credentials and
// the profile fields used to build assistant context.
type Business struct {
	ID             uuid.UUID
	OwnerUserID    string
	Name           string
	WhatsAppNumber string
	PhoneNumberID  string
	AccessToken    string
	Description    string
	BusinessHours  string
	Location       string
	PaymentMethods string
	DeliveryInfo   string
	GreetingMsg    string
	AwayMsg        string
	IsActive       bool
	AIEnabled      bool
	CreatedAt      time.Time

	// Catalogue is populated by loads that request it.
	Catalogue []CatalogueItem
}

// CatalogueItem is a product or service a business offers.
type CatalogueItem struct {
	ID          uuid.UUID
	BusinessID  uuid.UUID
	Name        string
	Price       string
	Size        string
	Description string
	IsAvailable bool
	CreatedAt   time.Time
}

// CreateParams carries the fields for registering a business.
type CreateParams struct {
	OwnerUserID    string
	Name           string
	WhatsAppNumber string
	PhoneNumberID  string
	AccessToken    string
	Description    string
	BusinessHours  string
	Location       string
	PaymentMethods string
	DeliveryInfo   string
	GreetingMsg    string
	AwayMsg        string
}

// ItemParams carries the fields for adding a catalogue item.
type ItemParams struct {
	Name        string
	Price       string
	Size        string
	Description string
	IsAvailable bool
}

// Repository is the persistence port for businesses and their catalogues.
type Repository interface {
	// GetByID returns the business with its catalogue loaded.
	GetByID(ctx context.Context, id uuid.UUID) (Business, error)

	// GetByPhoneNumberID returns the business owning a channel phone number,
	// with catalogue loaded. When both a seeded demo business and a real one
	// share the number, the real one wins.
	GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (Business, error)

	// GetByOwner returns the business registered by a dashboard user, with
	// catalogue loaded.
	GetByOwner(ctx context.Context, ownerUserID string) (Business, error)

	// Create registers a business. Conflict when the owner already has one.
	Create(ctx context.Context, params CreateParams) (Business, error)

	// AddCatalogueItem adds an item to a business's catalogue.
	AddCatalogueItem(ctx context.Context, businessID uuid.UUID, params ItemParams) (CatalogueItem, error)

	// UpdateAccessToken refreshes the stored token for every business bound
	// to a phone number (startup token rotation).
	UpdateAccessToken(ctx context.Context, phoneNumberID, accessToken string) error

	// ExistsByPhoneNumberID reports whether any business is bound to the
	// phone number.
	ExistsByPhoneNumberID(ctx context.Context, phoneNumberID string) (bool, error)
}
