package monitoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
)

// OperationStats aggregates call outcomes per operation.
type OperationStats struct {
	Operation     string  `json:"operation"`
	Calls         int64   `json:"calls"`
	Failures      int64   `json:"failures"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// Repository persists and aggregates API call log rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends one call log row.
func (r *Repository) Create(ctx context.Context, row *models.APICallLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// LastCall returns the most recent call for a club, or ErrRecordNotFound.
func (r *Repository) LastCall(ctx context.Context, clubID uuid.UUID) (*models.APICallLog, error) {
	var row models.APICallLog
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListRecent returns the most recent call rows for a club.
func (r *Repository) ListRecent(ctx context.Context, clubID uuid.UUID, limit int) ([]models.APICallLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.APICallLog
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StatsSince aggregates calls per operation for a club within a window.
func (r *Repository) StatsSince(ctx context.Context, clubID uuid.UUID, since time.Time) ([]OperationStats, error) {
	var stats []OperationStats
	err := r.db.WithContext(ctx).
		Model(&models.APICallLog{}).
		Select("operation, COUNT(*) AS calls, SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failures, AVG(duration_ms) AS avg_duration_ms").
		Where("club_id = ? AND created_at >= ?", clubID, since).
		Group("operation").
		Order("operation").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
