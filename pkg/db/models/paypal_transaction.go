package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/motorclubhq/clubhub-backend/pkg/enums"
)

// PayPalTransaction is the append-only audit record of observed provider
// events. Rows are never updated or deleted; retries append new rows unless
// deduplicated upstream by the webhook idempotency guard.
type PayPalTransaction struct {
	ID              uuid.UUID             `gorm:"type:uuid;primaryKey"`
	ClubID          uuid.UUID             `gorm:"column:club_id;type:uuid;not null;index"`
	PayPalPaymentID string                `gorm:"column:paypal_payment_id;not null"`
	TransactionType enums.TransactionType `gorm:"column:transaction_type;not null"`
	Amount          string                `gorm:"column:amount;not null;default:'0'"`
	Currency        string                `gorm:"column:currency;not null;default:'USD'"`
	Status          string                `gorm:"column:status;not null"`
	Description     string                `gorm:"column:description"`
	Metadata        json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}
