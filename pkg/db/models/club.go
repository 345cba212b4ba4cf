package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorclubhq/clubhub-backend/pkg/enums"
	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
)

// Club represents the canonical tenant model. Each club owns its PayPal
// credentials exclusively; clubs are deactivated rather than deleted.
type Club struct {
	ID                   uuid.UUID                `gorm:"type:uuid;primaryKey"`
	Name                 string                   `gorm:"column:name;not null"`
	Slug                 string                   `gorm:"column:slug;not null;unique"`
	Active               bool                     `gorm:"column:active;not null"`
	PayPalSettings       types.PayPalSettings     `gorm:"column:paypal_settings;type:jsonb"`
	PayPalProductID      string                   `gorm:"column:paypal_product_id"`
	PayPalMonthlyPlanID  string                   `gorm:"column:paypal_monthly_plan_id"`
	PayPalYearlyPlanID   string                   `gorm:"column:paypal_yearly_plan_id"`
	PayPalSubscriptionID string                   `gorm:"column:paypal_subscription_id;index"`
	SubscriptionStatus   enums.SubscriptionStatus `gorm:"column:subscription_status;not null;default:'none'"`
	NextBillingDate      *time.Time               `gorm:"column:next_billing_date"`
	RemindersSent        int                      `gorm:"column:reminders_sent;not null;default:0"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// IsFullySetup reports whether the club can take member subscriptions:
// credentials plus all three provisioned provider ids must be present.
func (c *Club) IsFullySetup() bool {
	if c == nil {
		return false
	}
	return c.PayPalSettings.ClientID != "" &&
		c.PayPalSettings.ClientSecret != "" &&
		c.PayPalProductID != "" &&
		c.PayPalMonthlyPlanID != "" &&
		c.PayPalYearlyPlanID != ""
}
