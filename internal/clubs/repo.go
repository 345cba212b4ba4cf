package clubs

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
)

// Repository exposes club persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID retrieves a club by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	var club models.Club
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&club).Error
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// FindBySubscriptionID retrieves the club holding the given provider
// subscription id.
func (r *Repository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Club, error) {
	var club models.Club
	err := r.db.WithContext(ctx).
		Where("paypal_subscription_id = ?", subscriptionID).
		First(&club).Error
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// FindByWebhookID retrieves the club whose stored settings carry the given
// provider webhook id. The id lives inside the JSON settings blob and tenant
// counts stay small, so active clubs are filtered in memory rather than with
// a dialect-specific JSON operator.
func (r *Repository) FindByWebhookID(ctx context.Context, webhookID string) (*models.Club, error) {
	webhookID = strings.TrimSpace(webhookID)
	if webhookID == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var candidates []models.Club
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if candidates[i].PayPalSettings.WebhookID == webhookID {
			return &candidates[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Create persists a new club record.
func (r *Repository) Create(ctx context.Context, club *models.Club) error {
	return r.db.WithContext(ctx).Create(club).Error
}

// UpdateColumns applies a partial column update to a club.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Club{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SaveSettings replaces the stored settings blob for a club.
func (r *Repository) SaveSettings(ctx context.Context, id uuid.UUID, settings types.PayPalSettings) error {
	return r.db.WithContext(ctx).
		Model(&models.Club{}).
		Where("id = ?", id).
		Update("paypal_settings", settings).Error
}
