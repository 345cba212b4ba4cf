package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	paypalwebhook "github.com/motorclubhq/clubhub-backend/internal/webhooks/paypal"
	"github.com/motorclubhq/clubhub-backend/pkg/config"
	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

type fakeVerifier struct {
	verified bool
	err      error
	gotCfg   paypal.ClientConfig
	gotBody  []byte
}

func (f *fakeVerifier) VerifyWebhookSignature(_ context.Context, cfg paypal.ClientConfig, _ string, _ http.Header, rawBody []byte) (bool, error) {
	f.gotCfg = cfg
	f.gotBody = rawBody
	return f.verified, f.err
}

type fakeClubRepo struct {
	club *models.Club
}

func (f *fakeClubRepo) FindByWebhookID(_ context.Context, webhookID string) (*models.Club, error) {
	if f.club != nil && f.club.PayPalSettings.WebhookID == webhookID {
		return f.club, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeGuard struct {
	fresh    bool
	checkErr error
	released []string
	checked  []string
}

func (f *fakeGuard) CheckAndMark(_ context.Context, eventID string) (bool, error) {
	f.checked = append(f.checked, eventID)
	return f.fresh, f.checkErr
}

func (f *fakeGuard) Release(_ context.Context, eventID string) error {
	f.released = append(f.released, eventID)
	return nil
}

type fakeService struct {
	result paypalwebhook.Result
	events []paypal.WebhookEvent
}

func (f *fakeService) HandleEvent(_ context.Context, event paypal.WebhookEvent) paypalwebhook.Result {
	f.events = append(f.events, event)
	return f.result
}

func eventBody(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":         "WH-EVT-1",
		"event_type": paypal.EventSubscriptionActivated,
		"resource":   map[string]string{"id": "I-SUB1"},
	})
	require.NoError(t, err)
	return raw
}

func fallbackConfig() config.PayPalConfig {
	return config.PayPalConfig{
		FallbackClientID:     "fallback-client",
		FallbackClientSecret: "fallback-secret",
		FallbackWebhookID:    "WH-GLOBAL",
	}
}

func postWebhook(handler http.HandlerFunc, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paypal", bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestWebhookHappyPath(t *testing.T) {
	verifier := &fakeVerifier{verified: true}
	guard := &fakeGuard{fresh: true}
	svc := &fakeService{result: paypalwebhook.Result{Handled: true}}

	handler := PayPalWebhook(svc, verifier, &fakeClubRepo{}, guard, fallbackConfig(), nil)
	rec := postWebhook(handler, eventBody(t), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received":true`)
	require.Len(t, svc.events, 1)
	assert.Equal(t, "WH-EVT-1", svc.events[0].ID)
	assert.Equal(t, []string{"WH-EVT-1"}, guard.checked)
	assert.Empty(t, guard.released)
}

func TestWebhookSignatureMismatchRejectsBeforeDispatch(t *testing.T) {
	verifier := &fakeVerifier{verified: false}
	guard := &fakeGuard{fresh: true}
	svc := &fakeService{}

	handler := PayPalWebhook(svc, verifier, &fakeClubRepo{}, guard, fallbackConfig(), nil)
	rec := postWebhook(handler, eventBody(t), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.events)
	assert.Empty(t, guard.checked)
}

func TestWebhookMissingIDRejected(t *testing.T) {
	handler := PayPalWebhook(&fakeService{}, &fakeVerifier{verified: true}, &fakeClubRepo{}, &fakeGuard{fresh: true}, config.PayPalConfig{
		FallbackClientID:     "fallback-client",
		FallbackClientSecret: "fallback-secret",
	}, nil)
	rec := postWebhook(handler, eventBody(t), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookUsesClubCredentials(t *testing.T) {
	clubID := uuid.New()
	repo := &fakeClubRepo{club: &models.Club{
		ID: clubID,
		PayPalSettings: types.PayPalSettings{
			ClientID:     "club-client",
			ClientSecret: "club-secret",
			WebhookID:    "WH-CLUB",
			IsProduction: true,
		},
	}}
	verifier := &fakeVerifier{verified: true}

	handler := PayPalWebhook(&fakeService{}, verifier, repo, &fakeGuard{fresh: true}, fallbackConfig(), nil)
	rec := postWebhook(handler, eventBody(t), map[string]string{paypal.HeaderWebhookID: "WH-CLUB"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "club-client", verifier.gotCfg.ClientID)
	assert.Equal(t, paypal.ProductionBaseURL, verifier.gotCfg.BaseURL)
	require.NotNil(t, verifier.gotCfg.ClubID)
	assert.Equal(t, clubID, *verifier.gotCfg.ClubID)
}

func TestWebhookFallsBackToGlobalCredentials(t *testing.T) {
	verifier := &fakeVerifier{verified: true}

	handler := PayPalWebhook(&fakeService{}, verifier, &fakeClubRepo{}, &fakeGuard{fresh: true}, fallbackConfig(), nil)
	rec := postWebhook(handler, eventBody(t), map[string]string{paypal.HeaderWebhookID: "WH-UNKNOWN"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback-client", verifier.gotCfg.ClientID)
	assert.Equal(t, paypal.SandboxBaseURL, verifier.gotCfg.BaseURL)
}

func TestWebhookVerifiesExactRawBytes(t *testing.T) {
	verifier := &fakeVerifier{verified: true}
	body := append(eventBody(t), '\n')

	handler := PayPalWebhook(&fakeService{}, verifier, &fakeClubRepo{}, &fakeGuard{fresh: true}, fallbackConfig(), nil)
	postWebhook(handler, body, nil)

	assert.Equal(t, body, verifier.gotBody)
}

func TestWebhookDuplicateDeliveryAcknowledged(t *testing.T) {
	svc := &fakeService{}
	guard := &fakeGuard{fresh: false}

	handler := PayPalWebhook(svc, &fakeVerifier{verified: true}, &fakeClubRepo{}, guard, fallbackConfig(), nil)
	rec := postWebhook(handler, eventBody(t), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received":true`)
	assert.Empty(t, svc.events)
}

func TestWebhookGuardFailureStillDispatches(t *testing.T) {
	svc := &fakeService{result: paypalwebhook.Result{Handled: true}}
	guard := &fakeGuard{checkErr: context.DeadlineExceeded}

	handler := PayPalWebhook(svc, &fakeVerifier{verified: true}, &fakeClubRepo{}, guard, fallbackConfig(), nil)
	rec := postWebhook(handler, eventBody(t), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received":true`)
	require.Len(t, svc.events, 1)
	assert.Equal(t, "WH-EVT-1", svc.events[0].ID)
}

func TestWebhookHandlerFailureStillAcknowledged(t *testing.T) {
	svc := &fakeService{result: paypalwebhook.Result{Err: context.DeadlineExceeded}}
	guard := &fakeGuard{fresh: true}

	handler := PayPalWebhook(svc, &fakeVerifier{verified: true}, &fakeClubRepo{}, guard, fallbackConfig(), nil)
	rec := postWebhook(handler, eventBody(t), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received":true`)
	assert.Equal(t, []string{"WH-EVT-1"}, guard.released)
}
