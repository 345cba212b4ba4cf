package monitoring

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/internal/transactions"
	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/enums"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.APICallLog{}, &models.PayPalTransaction{}))

	svc, err := NewService(ServiceParams{
		Repo:            NewRepository(conn),
		TransactionRepo: transactions.NewRepository(conn),
		Logger:          logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc, conn
}

func TestRecordAPICallPersistsRow(t *testing.T) {
	svc, conn := newService(t)
	clubID := uuid.New()

	svc.RecordAPICall(context.Background(), paypal.CallRecord{
		ClubID:     &clubID,
		Operation:  "create_plan",
		Endpoint:   "/v1/billing/plans",
		StatusCode: 201,
		Success:    true,
		Duration:   125 * time.Millisecond,
	})

	var row models.APICallLog
	require.NoError(t, conn.First(&row, "club_id = ?", clubID).Error)
	assert.Equal(t, "create_plan", row.Operation)
	assert.Equal(t, int64(125), row.DurationMS)
	assert.True(t, row.Success)
}

func TestHealthReflectsLastCall(t *testing.T) {
	svc, _ := newService(t)
	clubID := uuid.New()
	ctx := context.Background()

	report, err := svc.Health(ctx, clubID)
	require.NoError(t, err)
	assert.False(t, report.Healthy)
	assert.Nil(t, report.LastCallAt)

	svc.RecordAPICall(ctx, paypal.CallRecord{ClubID: &clubID, Operation: "get_access_token", Success: true, StatusCode: 200})

	report, err = svc.Health(ctx, clubID)
	require.NoError(t, err)
	assert.True(t, report.Healthy)
	require.NotNil(t, report.LastCallAt)
	assert.Equal(t, "get_access_token", report.Operation)
}

func TestMetricsAggregatesWindow(t *testing.T) {
	svc, _ := newService(t)
	clubID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.RecordAPICall(ctx, paypal.CallRecord{ClubID: &clubID, Operation: "create_plan", Success: true, Duration: 100 * time.Millisecond})
	}
	svc.RecordAPICall(ctx, paypal.CallRecord{ClubID: &clubID, Operation: "create_plan", Success: false, Duration: 300 * time.Millisecond})

	report, err := svc.Metrics(ctx, clubID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.TotalCalls)
	assert.Equal(t, int64(1), report.Failures)
	assert.InDelta(t, 0.25, report.ErrorRate, 0.001)
	require.Len(t, report.Operations, 1)
	assert.Equal(t, "create_plan", report.Operations[0].Operation)
}

func TestAuditListsRecentCalls(t *testing.T) {
	svc, _ := newService(t)
	clubID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.RecordAPICall(ctx, paypal.CallRecord{ClubID: &clubID, Operation: "verify_webhook_signature", Success: true})
	}

	rows, err := svc.Audit(ctx, clubID, 3)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSummaryTotalsTransactions(t *testing.T) {
	svc, conn := newService(t)
	clubID := uuid.New()

	require.NoError(t, conn.Create(&models.PayPalTransaction{
		ID:              uuid.New(),
		ClubID:          clubID,
		TransactionType: enums.TransactionTypePaymentCompleted,
		Amount:          "25.00",
		Currency:        "USD",
		Status:          "completed",
	}).Error)

	report, err := svc.Summary(context.Background(), clubID)
	require.NoError(t, err)
	require.Len(t, report.Transactions, 1)
	assert.Equal(t, int64(1), report.Transactions[0].Count)
}
