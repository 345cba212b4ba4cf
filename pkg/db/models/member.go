package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorclubhq/clubhub-backend/pkg/enums"
)

// Member belongs to exactly one club. Subscription fields are owned by the
// reconciliation flow: only webhook handlers and the explicit cancel action
// touch them, always through partial column updates.
type Member struct {
	ID                    uuid.UUID                `gorm:"type:uuid;primaryKey"`
	ClubID                uuid.UUID                `gorm:"column:club_id;type:uuid;not null;index"`
	Email                 string                   `gorm:"column:email;not null;index"`
	DisplayName           string                   `gorm:"column:display_name"`
	PayPalSubscriptionID  string                   `gorm:"column:paypal_subscription_id;index"`
	SubscriptionStatus    enums.SubscriptionStatus `gorm:"column:subscription_status;not null;default:'none'"`
	SubscriptionStartDate *time.Time               `gorm:"column:subscription_start_date"`
	SubscriptionEndDate   *time.Time               `gorm:"column:subscription_end_date"`
	CreatedAt             time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
