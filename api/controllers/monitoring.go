package controllers

import (
	"net/http"

	"github.com/motorclubhq/clubhub-backend/api/responses"
	"github.com/motorclubhq/clubhub-backend/api/validators"
	"github.com/motorclubhq/clubhub-backend/internal/monitoring"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
)

// PayPalMonitoring answers the admin monitoring queries. The action query
// parameter selects the report.
func PayPalMonitoring(svc monitoring.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		action, err := validators.QueryEnum(r, "action", "health", "metrics", "audit", "summary")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		clubID, err := validators.QueryUUID(r, "club_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload any
		switch action {
		case "health":
			payload, err = svc.Health(ctx, clubID)
		case "metrics":
			payload, err = svc.Metrics(ctx, clubID)
		case "audit":
			var limit int
			limit, err = validators.QueryIntDefault(r, "limit", 50)
			if err == nil {
				payload, err = svc.Audit(ctx, clubID, limit)
			}
		case "summary":
			payload, err = svc.Summary(ctx, clubID)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}
