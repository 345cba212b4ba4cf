package models

import (
	"time"

	"github.com/google/uuid"
)

// APICallLog records every outbound PayPal API call for monitoring and
// dispute resolution. Error detail lands here, never in API responses.
type APICallLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClubID     *uuid.UUID `gorm:"column:club_id;type:uuid;index"`
	Operation  string     `gorm:"column:operation;not null;index"`
	Endpoint   string     `gorm:"column:endpoint;not null"`
	StatusCode int        `gorm:"column:status_code;not null;default:0"`
	Success    bool       `gorm:"column:success;not null;default:false"`
	DurationMS int64      `gorm:"column:duration_ms;not null;default:0"`
	Detail     string     `gorm:"column:detail"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
