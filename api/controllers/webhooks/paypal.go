package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/api/responses"
	paypalwebhook "github.com/motorclubhq/clubhub-backend/internal/webhooks/paypal"
	"github.com/motorclubhq/clubhub-backend/pkg/config"
	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

type webhookVerifier interface {
	VerifyWebhookSignature(ctx context.Context, cfg paypal.ClientConfig, webhookID string, headers http.Header, rawBody []byte) (bool, error)
}

type webhookClubRepo interface {
	FindByWebhookID(ctx context.Context, webhookID string) (*models.Club, error)
}

type webhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type webhookService interface {
	HandleEvent(ctx context.Context, event paypal.WebhookEvent) paypalwebhook.Result
}

// PayPalWebhook verifies and dispatches provider event deliveries. After the
// signature checks out, the provider always gets a 200 so it stops retrying;
// handler failures are logged and release the dedup claim instead of
// surfacing.
func PayPalWebhook(svc webhookService, verifier webhookVerifier, clubRepo webhookClubRepo, guard webhookGuard, cfg config.PayPalConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || verifier == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook pipeline unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		webhookID := strings.TrimSpace(r.Header.Get(paypal.HeaderWebhookID))
		if webhookID == "" {
			webhookID = strings.TrimSpace(cfg.FallbackWebhookID)
		}
		if webhookID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook id missing"))
			return
		}

		verifyCfg, err := resolveVerifyConfig(ctx, clubRepo, cfg, webhookID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		verified, err := verifier.VerifyWebhookSignature(ctx, verifyCfg, webhookID, r.Header, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify webhook signature"))
			return
		}
		if !verified {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch"))
			return
		}

		var event paypal.WebhookEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		fresh, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			// A broken idempotency store must not bounce a verified delivery
			// back to the provider; the ledger-level guard catches replays.
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "idempotency check unavailable, dispatching anyway")
			}
			fresh = true
		}
		if !fresh {
			if logg != nil {
				logg.Info(logg.WithEventType(ctx, event.EventType), "duplicate webhook delivery ignored")
			}
			writeReceived(w)
			return
		}

		result := svc.HandleEvent(ctx, event)
		if result.Err != nil {
			// Drop the claim so the provider's retry gets another chance.
			_ = guard.Release(ctx, event.ID)
		}
		writeReceived(w)
	}
}

// resolveVerifyConfig picks the credentials for the remote signature check:
// the club owning the webhook id when one exists, the configured fallback
// otherwise.
func resolveVerifyConfig(ctx context.Context, clubRepo webhookClubRepo, cfg config.PayPalConfig, webhookID string) (paypal.ClientConfig, error) {
	if clubRepo != nil {
		club, err := clubRepo.FindByWebhookID(ctx, webhookID)
		if err == nil {
			return paypal.ConfigForSettings(club.ID, club.PayPalSettings), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return paypal.ClientConfig{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve webhook club")
		}
	}

	fallback := paypal.ConfigForFallback(cfg)
	if fallback.ClientID == "" || fallback.ClientSecret == "" {
		return paypal.ClientConfig{}, pkgerrors.New(pkgerrors.CodeValidation, "no credentials available for webhook verification")
	}
	return fallback, nil
}

func writeReceived(w http.ResponseWriter) {
	responses.WriteSuccess(w, map[string]bool{"received": true})
}
