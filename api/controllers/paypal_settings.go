package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/motorclubhq/clubhub-backend/api/responses"
	"github.com/motorclubhq/clubhub-backend/api/validators"
	"github.com/motorclubhq/clubhub-backend/internal/clubs"
	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
)

func clubIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "clubID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "club id must be a valid uuid")
	}
	return id, nil
}

// GetPayPalSettings returns the stored settings with credentials masked.
func GetPayPalSettings(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		clubID, err := clubIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.GetSettings(ctx, clubID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// UpdatePayPalSettings applies a partial settings update and echoes the
// masked result plus a live credential check.
func UpdatePayPalSettings(svc clubs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		clubID, err := clubIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var patch types.PayPalSettingsPatch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.UpdateSettings(ctx, clubID, patch)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
