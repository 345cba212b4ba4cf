package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorclubhq/clubhub-backend/internal/clubs"
	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
)

type fakeSettingsService struct {
	view    *clubs.SettingsView
	err     error
	gotPatch *types.PayPalSettingsPatch
}

func (f *fakeSettingsService) GetSettings(_ context.Context, _ uuid.UUID) (*clubs.SettingsView, error) {
	return f.view, f.err
}

func (f *fakeSettingsService) UpdateSettings(_ context.Context, _ uuid.UUID, patch types.PayPalSettingsPatch) (*clubs.SettingsView, error) {
	f.gotPatch = &patch
	return f.view, f.err
}

func settingsRouter(svc clubs.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/clubs/{clubID}/paypal-settings", GetPayPalSettings(svc, nil))
	r.Put("/api/v1/clubs/{clubID}/paypal-settings", UpdatePayPalSettings(svc, nil))
	return r
}

func TestGetPayPalSettingsReturnsMaskedView(t *testing.T) {
	svc := &fakeSettingsService{view: &clubs.SettingsView{
		ClientID:     "AbCd****IjKl",
		ClientSecret: "****cret",
	}}
	router := settingsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clubs/"+uuid.NewString()+"/paypal-settings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AbCd****IjKl")
	assert.NotContains(t, rec.Body.String(), "AbCdEfGhIjKl")
}

func TestGetPayPalSettingsRejectsBadClubID(t *testing.T) {
	router := settingsRouter(&fakeSettingsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clubs/not-a-uuid/paypal-settings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePayPalSettingsDecodesPatch(t *testing.T) {
	svc := &fakeSettingsService{view: &clubs.SettingsView{}}
	router := settingsRouter(svc)

	body, err := json.Marshal(map[string]any{
		"client_id":     "new-client",
		"is_production": true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/clubs/"+uuid.NewString()+"/paypal-settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotPatch)
	require.NotNil(t, svc.gotPatch.ClientID)
	assert.Equal(t, "new-client", *svc.gotPatch.ClientID)
	require.NotNil(t, svc.gotPatch.IsProduction)
	assert.True(t, *svc.gotPatch.IsProduction)
	assert.Nil(t, svc.gotPatch.ClientSecret)
}

func TestUpdatePayPalSettingsUnknownClub(t *testing.T) {
	svc := &fakeSettingsService{err: pkgerrors.New(pkgerrors.CodeNotFound, "club not found")}
	router := settingsRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/clubs/"+uuid.NewString()+"/paypal-settings", bytes.NewReader([]byte(`{"client_id":"x"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
