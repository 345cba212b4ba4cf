package controllers

import (
	"net/http"

	"github.com/motorclubhq/clubhub-backend/api/responses"
	"github.com/motorclubhq/clubhub-backend/api/validators"
	"github.com/motorclubhq/clubhub-backend/internal/subscriptions"
	"github.com/motorclubhq/clubhub-backend/pkg/enums"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
)

type createSubscriptionRequest struct {
	PlanType  string `json:"plan_type" validate:"required,oneof=monthly yearly"`
	Email     string `json:"email" validate:"required,email"`
	ReturnURL string `json:"return_url,omitempty" validate:"omitempty,url"`
	CancelURL string `json:"cancel_url,omitempty" validate:"omitempty,url"`
}

type cancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
	Reason         string `json:"reason,omitempty" validate:"omitempty,max=128"`
}

// CreateSubscription starts the redirect approval flow for a member.
func CreateSubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		clubID, err := clubIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req createSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Create(ctx, clubID, subscriptions.CreateParams{
			PlanType:  enums.PlanInterval(req.PlanType),
			Email:     req.Email,
			ReturnURL: req.ReturnURL,
			CancelURL: req.CancelURL,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CancelSubscription cancels at the provider, then marks the member.
func CancelSubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		clubID, err := clubIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req cancelSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Cancel(ctx, clubID, req.SubscriptionID, req.Reason); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"message":         "subscription cancelled",
			"subscription_id": req.SubscriptionID,
		})
	}
}
