package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/internal/transactions"
	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

// HealthReport describes the outcome of the most recent provider call.
type HealthReport struct {
	Healthy     bool       `json:"healthy"`
	LastCallAt  *time.Time `json:"last_call_at,omitempty"`
	Operation   string     `json:"operation,omitempty"`
	LastSuccess bool       `json:"last_success"`
	DurationMS  int64      `json:"duration_ms"`
}

// MetricsReport aggregates call outcomes over the reporting window.
type MetricsReport struct {
	WindowHours int              `json:"window_hours"`
	TotalCalls  int64            `json:"total_calls"`
	Failures    int64            `json:"failures"`
	ErrorRate   float64          `json:"error_rate"`
	Operations  []OperationStats `json:"operations"`
}

// SummaryReport totals ledger rows by type and status.
type SummaryReport struct {
	ClubID       uuid.UUID               `json:"club_id"`
	Transactions []transactions.TypeTotal `json:"transactions"`
}

// Service answers the admin monitoring queries and records outbound calls.
type Service interface {
	paypal.CallRecorder
	Health(ctx context.Context, clubID uuid.UUID) (*HealthReport, error)
	Metrics(ctx context.Context, clubID uuid.UUID) (*MetricsReport, error)
	Audit(ctx context.Context, clubID uuid.UUID, limit int) ([]models.APICallLog, error)
	Summary(ctx context.Context, clubID uuid.UUID) (*SummaryReport, error)
}

// ServiceParams groups dependencies for the monitoring service.
type ServiceParams struct {
	Repo            *Repository
	TransactionRepo *transactions.Repository
	Logger          *logger.Logger
	// WindowHours bounds the metrics aggregation; defaults to 24.
	WindowHours int
}

type service struct {
	repo        *Repository
	txnRepo     *transactions.Repository
	logger      *logger.Logger
	windowHours int
}

// NewService builds the monitoring service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("monitoring repo required")
	}
	if params.TransactionRepo == nil {
		return nil, fmt.Errorf("transaction repo required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	window := params.WindowHours
	if window <= 0 {
		window = 24
	}
	return &service{
		repo:        params.Repo,
		txnRepo:     params.TransactionRepo,
		logger:      params.Logger,
		windowHours: window,
	}, nil
}

// RecordAPICall persists one audit row. Persistence failures are logged and
// swallowed so auditing never breaks the call it observes.
func (s *service) RecordAPICall(ctx context.Context, record paypal.CallRecord) {
	row := &models.APICallLog{
		ID:         uuid.New(),
		ClubID:     record.ClubID,
		Operation:  record.Operation,
		Endpoint:   record.Endpoint,
		StatusCode: record.StatusCode,
		Success:    record.Success,
		DurationMS: record.Duration.Milliseconds(),
		Detail:     record.Detail,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error(ctx, "persist api call log", err)
	}
}

// Health reports on the most recent provider call for the club. A club with
// no recorded calls is reported unhealthy with no timestamp.
func (s *service) Health(ctx context.Context, clubID uuid.UUID) (*HealthReport, error) {
	last, err := s.repo.LastCall(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &HealthReport{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load last api call")
	}
	at := last.CreatedAt
	return &HealthReport{
		Healthy:     last.Success,
		LastCallAt:  &at,
		Operation:   last.Operation,
		LastSuccess: last.Success,
		DurationMS:  last.DurationMS,
	}, nil
}

// Metrics aggregates call counts, failures, and latency over the window.
func (s *service) Metrics(ctx context.Context, clubID uuid.UUID) (*MetricsReport, error) {
	since := time.Now().Add(-time.Duration(s.windowHours) * time.Hour)
	stats, err := s.repo.StatsSince(ctx, clubID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate api calls")
	}

	report := &MetricsReport{WindowHours: s.windowHours, Operations: stats}
	for _, op := range stats {
		report.TotalCalls += op.Calls
		report.Failures += op.Failures
	}
	if report.TotalCalls > 0 {
		report.ErrorRate = float64(report.Failures) / float64(report.TotalCalls)
	}
	return report, nil
}

// Audit returns the raw recent call rows for operator inspection.
func (s *service) Audit(ctx context.Context, clubID uuid.UUID, limit int) ([]models.APICallLog, error) {
	rows, err := s.repo.ListRecent(ctx, clubID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list api calls")
	}
	return rows, nil
}

// Summary totals the club's ledger rows by type and status.
func (s *service) Summary(ctx context.Context, clubID uuid.UUID) (*SummaryReport, error) {
	totals, err := s.txnRepo.SummaryByClub(ctx, clubID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize transactions")
	}
	return &SummaryReport{ClubID: clubID, Transactions: totals}, nil
}
