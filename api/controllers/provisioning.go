package controllers

import (
	"net/http"

	"github.com/motorclubhq/clubhub-backend/api/responses"
	"github.com/motorclubhq/clubhub-backend/api/validators"
	"github.com/motorclubhq/clubhub-backend/internal/provisioning"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
)

type setupProductsRequest struct {
	MonthlyPrice string `json:"monthly_price,omitempty"`
	YearlyPrice  string `json:"yearly_price,omitempty"`
	Currency     string `json:"currency,omitempty" validate:"omitempty,len=3"`
	Description  string `json:"description,omitempty" validate:"omitempty,max=256"`
	Force        bool   `json:"force,omitempty"`
}

// SetupPayPalProducts provisions the product and both plans for a club.
func SetupPayPalProducts(svc provisioning.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		clubID, err := clubIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req setupProductsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.SetupProducts(ctx, provisioning.SetupParams{
			ClubID:       clubID,
			MonthlyPrice: req.MonthlyPrice,
			YearlyPrice:  req.YearlyPrice,
			Currency:     req.Currency,
			Description:  req.Description,
			Force:        req.Force,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
