// Package service provides business account logic: registration, profile
// lookups, and channel credential resolution for outbound delivery.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"replify_backend/internal/business/repository"
	"replify_backend/internal/business/transport"
	"replify_backend/platform/logger"
)

// Service provides business account operations.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new business service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates a business account and seeds its starting catalogue.
func (s *Service) Register(ctx context.Context, req transport.RegisterBusinessRequest) (transport.RegisterBusinessResponse, error) {
	biz, err := s.repo.Create(ctx, repository.CreateParams{
		OwnerUserID:    req.UserID,
		Name:           req.Name,
		WhatsAppNumber: req.WhatsAppNumber,
		PhoneNumberID:  req.PhoneNumberID,
		AccessToken:    req.AccessToken,
		Description:    req.Description,
		BusinessHours:  req.BusinessHours,
		Location:       req.Location,
		PaymentMethods: req.PaymentMethods,
		DeliveryInfo:   req.DeliveryInfo,
		GreetingMsg:    req.GreetingMsg,
		AwayMsg:        req.AwayMsg,
	})
	if err != nil {
		return transport.RegisterBusinessResponse{}, err
	}

	for _, item := range req.Catalogue {
		available := true
		if item.IsAvailable != nil {
			available = *item.IsAvailable
		}
		if _, err := s.repo.AddCatalogueItem(ctx, biz.ID, repository.ItemParams{
			Name:        item.Name,
			Price:       item.Price,
			Size:        item.Size,
			Description: item.Description,
			IsAvailable: available,
		}); err != nil {
			return transport.RegisterBusinessResponse{}, err
		}
	}

	s.log.Info("business registered", "business_id", biz.ID, "name", biz.Name)
	return transport.RegisterBusinessResponse{BusinessID: biz.ID.String()}, nil
}

// GetMine returns the business owned by a dashboard user.
func (s *Service) GetMine(ctx context.Context, ownerUserID string) (transport.BusinessResponse, error) {
	biz, err := s.repo.GetByOwner(ctx, ownerUserID)
	if err != nil {
		return transport.BusinessResponse{}, err
	}
	return toResponse(biz), nil
}

// AddCatalogueItem adds a single catalogue entry to a business.
func (s *Service) AddCatalogueItem(ctx context.Context, businessID uuid.UUID, req transport.CatalogueItemRequest) (transport.CatalogueItemResponse, error) {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := s.repo.AddCatalogueItem(ctx, businessID, repository.ItemParams{
		Name:        req.Name,
		Price:       req.Price,
		Size:        req.Size,
		Description: req.Description,
		IsAvailable: available,
	})
	if err != nil {
		return transport.CatalogueItemResponse{}, err
	}

	return toItemResponse(item), nil
}

// GetByPhoneNumberID resolves the business for an inbound webhook event.
func (s *Service) GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (repository.Business, error) {
	return s.repo.GetByPhoneNumberID(ctx, phoneNumberID)
}

// ChannelCredentialsFor resolves a business's channel send credentials. This
// satisfies the conversation service's ChannelCredentials port.
func (s *Service) ChannelCredentialsFor(ctx context.Context, businessID uuid.UUID) (string, string, error) {
	biz, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return "", "", err
	}
	return biz.PhoneNumberID, biz.AccessToken, nil
}

func toResponse(biz repository.Business) transport.BusinessResponse {
	items := make([]transport.CatalogueItemResponse, 0, len(biz.Catalogue))
	for _, item := range biz.Catalogue {
		items = append(items, toItemResponse(item))
	}

	return transport.BusinessResponse{
		ID:             biz.ID.String(),
		Name:           biz.Name,
		WhatsAppNumber: biz.WhatsAppNumber,
		PhoneNumberID:  biz.PhoneNumberID,
		Description:    biz.Description,
		BusinessHours:  biz.BusinessHours,
		Location:       biz.Location,
		PaymentMethods: biz.PaymentMethods,
		DeliveryInfo:   biz.DeliveryInfo,
		GreetingMsg:    biz.GreetingMsg,
		AwayMsg:        biz.AwayMsg,
		IsActive:       biz.IsActive,
		AIEnabled:      biz.AIEnabled,
		CreatedAt:      biz.CreatedAt.Format(time.RFC3339),
		Catalogue:      items,
	}
}

func toItemResponse(item repository.CatalogueItem) transport.CatalogueItemResponse {
	return transport.CatalogueItemResponse{
		ID:          item.ID.String(),
		Name:        item.Name,
		Price:       item.Price,
		Size:        item.Size,
		Description: item.Description,
		IsAvailable: item.IsAvailable,
	}
}
