package business

import (
	"context"

	"replify_backend/internal/business/repository"
	"replify_backend/platform/apperr"
	"replify_backend/platform/config"
	"replify_backend/platform/logger"
)

// SeedDemoBusiness makes sure the shared demo business exists so the webhook
// has somewhere to route inbound messages before any real registration. When
// the business already exists it only refreshes the stored access token,
// since Meta tokens rotate.
func SeedDemoBusiness(ctx context.Context, repo repository.Repository, cfg config.SeedConfig, log *logger.Logger) error {
	phoneNumberID := cfg.GetSeedPhoneNumberID()
	if phoneNumberID == "" {
		log.Info("demo business seed skipped, WHATSAPP_PHONE_NUMBER_ID not set")
		return nil
	}

	exists, err := repo.ExistsByPhoneNumberID(ctx, phoneNumberID)
	if err != nil {
		return err
	}
	if exists {
		if token := cfg.GetSeedAccessToken(); token != "" {
			if err := repo.UpdateAccessToken(ctx, phoneNumberID, token); err != nil {
				return err
			}
		}
		log.Info("demo business already seeded", "phone_number_id", phoneNumberID)
		return nil
	}

	biz, err := repo.Create(ctx, repository.CreateParams{
		OwnerUserID:    "demo-seed",
		Name:           "Scented Bliss",
		WhatsAppNumber: cfg.GetSeedWhatsAppNumber(),
		PhoneNumberID:  phoneNumberID,
		AccessToken:    cfg.GetSeedAccessToken(),
		Description:    "Boutique perfume shop offering hand-blended fragrances.",
		BusinessHours:  "Mon-Sat 9am-6pm",
		Location:       "Cape Town, South Africa",
		PaymentMethods: "Card, EFT, Cash on collection",
		DeliveryInfo:   "Nationwide courier, 2-4 business days. Free delivery over R500.",
		GreetingMsg:    "Hi! Welcome to Scented Bliss. How can I help you find your perfect scent today?",
		AwayMsg:        "Thanks for your message! We're currently closed but will get back to you as soon as we open.",
	})
	if err != nil {
		if apperr.IsConflict(err) {
			return nil
		}
		return err
	}

	items := []repository.ItemParams{
		{Name: "Midnight Oud", Price: "R450", Size: "50ml", Description: "Deep woody oud with amber and spice.", IsAvailable: true},
		{Name: "Citrus Bloom", Price: "R320", Size: "50ml", Description: "Fresh bergamot and orange blossom.", IsAvailable: true},
		{Name: "Vanilla Noir", Price: "R380", Size: "50ml", Description: "Warm vanilla with smoky undertones.", IsAvailable: true},
		{Name: "Ocean Drift", Price: "R300", Size: "30ml", Description: "Light aquatic scent with sea salt notes.", IsAvailable: true},
	}
	for _, item := range items {
		if _, err := repo.AddCatalogueItem(ctx, biz.ID, item); err != nil {
			return err
		}
	}

	log.Info("demo business seeded", "business_id", biz.ID, "name", biz.Name)
	return nil
}
