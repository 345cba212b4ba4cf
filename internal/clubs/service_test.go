package clubs

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

type fakeSettingsRepo struct {
	clubs map[uuid.UUID]*models.Club
	saved *types.PayPalSettings
}

func (f *fakeSettingsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Club, error) {
	club, ok := f.clubs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *club
	return &copied, nil
}

func (f *fakeSettingsRepo) SaveSettings(_ context.Context, id uuid.UUID, settings types.PayPalSettings) error {
	f.saved = &settings
	if club, ok := f.clubs[id]; ok {
		club.PayPalSettings = settings
	}
	return nil
}

type fakeTokenClient struct {
	token string
	err   error
	calls int
}

func (f *fakeTokenClient) GetAccessToken(_ context.Context, _ paypal.ClientConfig) (string, error) {
	f.calls++
	return f.token, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newSettingsService(t *testing.T, repo *fakeSettingsRepo, tokens *fakeTokenClient) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, TokenClient: tokens, Logger: testLogger()})
	require.NoError(t, err)
	return svc
}

func strPtr(s string) *string { return &s }

func TestGetSettingsMasksCredentials(t *testing.T) {
	clubID := uuid.New()
	repo := &fakeSettingsRepo{clubs: map[uuid.UUID]*models.Club{
		clubID: {
			ID: clubID,
			PayPalSettings: types.PayPalSettings{
				ClientID:     "AbCdEfGhIjKl",
				ClientSecret: "short",
				Currency:     "USD",
			},
		},
	}}
	svc := newSettingsService(t, repo, &fakeTokenClient{token: "t"})

	view, err := svc.GetSettings(context.Background(), clubID)
	require.NoError(t, err)
	assert.Equal(t, "AbCd****IjKl", view.ClientID)
	assert.Equal(t, "****hort", view.ClientSecret)
	assert.False(t, view.FullySetup)
	assert.Nil(t, view.ConnectionOK)
}

func TestGetSettingsUnknownClub(t *testing.T) {
	repo := &fakeSettingsRepo{clubs: map[uuid.UUID]*models.Club{}}
	svc := newSettingsService(t, repo, &fakeTokenClient{})

	_, err := svc.GetSettings(context.Background(), uuid.New())
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestUpdateSettingsPartialMerge(t *testing.T) {
	clubID := uuid.New()
	repo := &fakeSettingsRepo{clubs: map[uuid.UUID]*models.Club{
		clubID: {
			ID: clubID,
			PayPalSettings: types.PayPalSettings{
				ClientID:     "existing-client-id",
				ClientSecret: "existing-secret",
				MonthlyPrice: "25.00",
			},
		},
	}}
	tokens := &fakeTokenClient{token: "token-123"}
	svc := newSettingsService(t, repo, tokens)

	view, err := svc.UpdateSettings(context.Background(), clubID, types.PayPalSettingsPatch{
		WebhookID: strPtr("WH-9"),
		Currency:  strPtr("eur"),
	})
	require.NoError(t, err)

	require.NotNil(t, repo.saved)
	assert.Equal(t, "existing-client-id", repo.saved.ClientID)
	assert.Equal(t, "existing-secret", repo.saved.ClientSecret)
	assert.Equal(t, "WH-9", repo.saved.WebhookID)
	assert.Equal(t, "EUR", repo.saved.Currency)
	assert.Equal(t, "25.00", repo.saved.MonthlyPrice)

	require.NotNil(t, view.ConnectionOK)
	assert.True(t, *view.ConnectionOK)
	assert.Equal(t, 1, tokens.calls)
}

func TestUpdateSettingsRejectsEmptyCredentials(t *testing.T) {
	clubID := uuid.New()
	repo := &fakeSettingsRepo{clubs: map[uuid.UUID]*models.Club{clubID: {ID: clubID}}}
	svc := newSettingsService(t, repo, &fakeTokenClient{})

	for _, patch := range []types.PayPalSettingsPatch{
		{ClientID: strPtr("  ")},
		{ClientSecret: strPtr("")},
	} {
		_, err := svc.UpdateSettings(context.Background(), clubID, patch)
		var appErr *pkgerrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	}
	assert.Nil(t, repo.saved)
}

func TestUpdateSettingsConnectionFailureReported(t *testing.T) {
	clubID := uuid.New()
	repo := &fakeSettingsRepo{clubs: map[uuid.UUID]*models.Club{clubID: {ID: clubID}}}
	tokens := &fakeTokenClient{err: paypal.ErrNotConfigured}
	svc := newSettingsService(t, repo, tokens)

	view, err := svc.UpdateSettings(context.Background(), clubID, types.PayPalSettingsPatch{
		ClientID:     strPtr("new-client"),
		ClientSecret: strPtr("new-secret"),
	})
	require.NoError(t, err)
	require.NotNil(t, view.ConnectionOK)
	assert.False(t, *view.ConnectionOK)
}
