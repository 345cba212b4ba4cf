package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/pagination"
)

// TypeTotal is one row of the per-club transaction summary.
type TypeTotal struct {
	TransactionType string `json:"transaction_type"`
	Status          string `json:"status"`
	Count           int64  `json:"count"`
}

// Repository exposes the append-only payment ledger. Rows are never updated
// or deleted.
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

// Create appends a ledger row.
func (r *Repository) Create(ctx context.Context, txn *models.PayPalTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// ListByClub returns a page of ledger rows for a club, newest first.
// The returned cursor is empty when there are no further pages.
func (r *Repository) ListByClub(ctx context.Context, clubID uuid.UUID, p pagination.Params) ([]models.PayPalTransaction, string, error) {
	cursor, err := pagination.ParseCursor(p.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(p.Limit))
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.PayPalTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(p.Limit)
	if len(rows) <= limit {
		return rows, "", nil
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	return rows, next, nil
}

// SummaryByClub aggregates ledger rows by type and status.
func (r *Repository) SummaryByClub(ctx context.Context, clubID uuid.UUID) ([]TypeTotal, error) {
	var totals []TypeTotal
	err := r.db.WithContext(ctx).
		Model(&models.PayPalTransaction{}).
		Select("transaction_type, status, COUNT(*) AS count").
		Where("club_id = ?", clubID).
		Group("transaction_type, status").
		Order("transaction_type, status").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// ExistsByPaymentID reports whether a provider payment id was already
// recorded for the club. Used as a database-level duplicate guard behind
// the redis one.
func (r *Repository) ExistsByPaymentID(ctx context.Context, clubID uuid.UUID, paymentID string) (bool, error) {
	if paymentID == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PayPalTransaction{}).
		Where("club_id = ? AND paypal_payment_id = ?", clubID, paymentID).
		Count(&count).Error
	return count > 0, err
}
