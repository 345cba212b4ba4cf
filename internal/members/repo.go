package members

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/enums"
)

// Repository exposes member persistence operations.
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

// FindByClubAndEmail retrieves a member by tenant and normalized email.
func (r *Repository) FindByClubAndEmail(ctx context.Context, clubID uuid.UUID, email string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("club_id = ? AND email = ?", clubID, normalizeEmail(email)).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindBySubscriptionID retrieves the member holding the given provider
// subscription id within a club.
func (r *Repository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("paypal_subscription_id = ?", subscriptionID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Create persists a new member record.
func (r *Repository) Create(ctx context.Context, member *models.Member) error {
	member.Email = normalizeEmail(member.Email)
	return r.db.WithContext(ctx).Create(member).Error
}

// UpdateColumns applies a partial column update to a member.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CancelBySubscription marks the member cancelled, scoped to both the club
// and the provider subscription id so one tenant can never flip another
// tenant's member. It reports how many rows changed.
func (r *Repository) CancelBySubscription(ctx context.Context, clubID uuid.UUID, subscriptionID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("club_id = ? AND paypal_subscription_id = ?", clubID, subscriptionID).
		Update("subscription_status", enums.SubscriptionStatusCancelled)
	return result.RowsAffected, result.Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
