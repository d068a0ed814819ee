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

	"replify_backend/platform/apperr"
)

const businessNotFoundMessage = "business not found"

// demoOwnerID marks the seeded demo business so real registrations bound to
// the same phone number take precedence in webhook routing.
const demoOwnerID = "demo-seed"

const businessColumns = `id, owner_user_id, name,
	COALESCE(whatsapp_number, ''), COALESCE(phone_number_id, ''), COALESCE(access_token, ''),
	COALESCE(description, ''), COALESCE(business_hours, ''), COALESCE(location, ''),
	COALESCE(payment_methods, ''), COALESCE(delivery_info, ''),
	COALESCE(greeting_message, ''), COALESCE(away_message, ''),
	is_active, ai_enabled, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new business repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a business by its ID with catalogue loaded.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`

	biz, err := scanBusiness(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Business{}, apperr.NotFound(businessNotFoundMessage)
		}
		return Business{}, fmt.Errorf("get business by id: %w", err)
	}

	return r.withCatalogue(ctx, biz)
}

// GetByPhoneNumberID retrieves the business bound to a channel phone number,
// preferring a real registration over the seeded demo.
func (r *Repo) GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (Business, error) {
	query := `SELECT ` + businessColumns + `
		FROM businesses
		WHERE phone_number_id = $1
		ORDER BY (owner_user_id = $2) ASC, created_at ASC
		LIMIT 1`

	biz, err := scanBusiness(r.pool.QueryRow(ctx, query, phoneNumberID, demoOwnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Business{}, apperr.NotFound(businessNotFoundMessage)
		}
		return Business{}, fmt.Errorf("get business by phone number id: %w", err)
	}

	return r.withCatalogue(ctx, biz)
}

// GetByOwner retrieves the business registered by a dashboard user.
func (r *Repo) GetByOwner(ctx context.Context, ownerUserID string) (Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE owner_user_id = $1`

	biz, err := scanBusiness(r.pool.QueryRow(ctx, query, ownerUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Business{}, apperr.NotFound(businessNotFoundMessage)
		}
		return Business{}, fmt.Errorf("get business by owner: %w", err)
	}

	return r.withCatalogue(ctx, biz)
}

// Create registers a new business.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Business, error) {
	biz := Business{
		ID:             uuid.New(),
		OwnerUserID:    params.OwnerUserID,
		Name:           params.Name,
		WhatsAppNumber: params.WhatsAppNumber,
		PhoneNumberID:  params.PhoneNumberID,
		AccessToken:    params.AccessToken,
		Description:    params.Description,
		BusinessHours:  params.BusinessHours,
		Location:       params.Location,
		PaymentMethods: params.PaymentMethods,
		DeliveryInfo:   params.DeliveryInfo,
		GreetingMsg:    params.GreetingMsg,
		AwayMsg:        params.AwayMsg,
		IsActive:       true,
		AIEnabled:      true,
		CreatedAt:      time.Now().UTC(),
	}

	query := `
		INSERT INTO businesses (
			id, owner_user_id, name, whatsapp_number, phone_number_id, access_token,
			description, business_hours, location, payment_methods, delivery_info,
			greeting_message, away_message, is_active, ai_enabled, created_at
		) VALUES (
			$1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
			NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''),
			NULLIF($12, ''), NULLIF($13, ''), $14, $15, $16
		)`

	_, err := r.pool.Exec(ctx, query,
		biz.ID, biz.OwnerUserID, biz.Name, biz.WhatsAppNumber, biz.PhoneNumberID, biz.AccessToken,
		biz.Description, biz.BusinessHours, biz.Location, biz.PaymentMethods, biz.DeliveryInfo,
		biz.GreetingMsg, biz.AwayMsg, biz.IsActive, biz.AIEnabled, biz.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Business{}, apperr.Conflict("business already registered for this user")
		}
		return Business{}, fmt.Errorf("create business: %w", err)
	}

	return biz, nil
}

// AddCatalogueItem adds an item to the business's catalogue.
func (r *Repo) AddCatalogueItem(ctx context.Context, businessID uuid.UUID, params ItemParams) (CatalogueItem, error) {
	item := CatalogueItem{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Name:        params.Name,
		Price:       params.Price,
		Size:        params.Size,
		Description: params.Description,
		IsAvailable: params.IsAvailable,
		CreatedAt:   time.Now().UTC(),
	}

	query := `
		INSERT INTO catalogue_items (id, business_id, name, price, size, description, is_available, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.BusinessID, item.Name, item.Price, item.Size, item.Description, item.IsAvailable, item.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return CatalogueItem{}, apperr.NotFound(businessNotFoundMessage)
		}
		return CatalogueItem{}, fmt.Errorf("add catalogue item: %w", err)
	}

	return item, nil
}

// UpdateAccessToken refreshes the stored token for all businesses bound to
// the phone number.
func (r *Repo) UpdateAccessToken(ctx context.Context, phoneNumberID, accessToken string) error {
	query := `UPDATE businesses SET access_token = $2 WHERE phone_number_id = $1`

	if _, err := r.pool.Exec(ctx, query, phoneNumberID, accessToken); err != nil {
		return fmt.Errorf("update access token: %w", err)
	}
	return nil
}

// ExistsByPhoneNumberID reports whether any business is bound to the number.
func (r *Repo) ExistsByPhoneNumberID(ctx context.Context, phoneNumberID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM businesses WHERE phone_number_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, phoneNumberID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check business by phone number id: %w", err)
	}
	return exists, nil
}

func (r *Repo) withCatalogue(ctx context.Context, biz Business) (Business, error) {
	query := `
		SELECT id, business_id, name, COALESCE(price, ''), COALESCE(size, ''), COALESCE(description, ''), is_available, created_at
		FROM catalogue_items
		WHERE business_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, biz.ID)
	if err != nil {
		return Business{}, fmt.Errorf("load catalogue: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item CatalogueItem
		if err := rows.Scan(
			&item.ID, &item.BusinessID, &item.Name, &item.Price, &item.Size,
			&item.Description, &item.IsAvailable, &item.CreatedAt,
		); err != nil {
			return Business{}, fmt.Errorf("scan catalogue item: %w", err)
		}
		biz.Catalogue = append(biz.Catalogue, item)
	}

	return biz, rows.Err()
}

func scanBusiness(row pgx.Row) (Business, error) {
	var b Business
	err := row.Scan(
		&b.ID, &b.OwnerUserID, &b.Name,
		&b.WhatsAppNumber, &b.PhoneNumberID, &b.AccessToken,
		&b.Description, &b.BusinessHours, &b.Location,
		&b.PaymentMethods, &b.DeliveryInfo,
		&b.GreetingMsg, &b.AwayMsg,
		&b.IsActive, &b.AIEnabled, &b.CreatedAt,
	)
	return b, err
}
