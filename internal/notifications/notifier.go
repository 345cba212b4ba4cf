package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/motorclubhq/clubhub-backend/pkg/logger"
)

// PaymentDetails carries the payment facts echoed into notifications.
type PaymentDetails struct {
	PaymentID string
	Amount    string
	Currency  string
	Payer     string
}

// Notifier is the outbound messaging hook fired by webhook handlers.
// Template rendering and delivery belong to the mailer collaborator; this
// surface only states which member-facing moments exist.
type Notifier interface {
	SubscriptionActivated(ctx context.Context, clubID uuid.UUID, subscriptionID string)
	SubscriptionCancelled(ctx context.Context, clubID uuid.UUID, subscriptionID string)
	PaymentSucceeded(ctx context.Context, clubID uuid.UUID, details PaymentDetails)
	PaymentFailed(ctx context.Context, clubID uuid.UUID, subscriptionID string)
}

// LogNotifier writes each notification moment to the structured log. It is
// the default implementation until a mailer is wired in.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier builds the logging notifier.
func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logg}
}

func (n *LogNotifier) SubscriptionActivated(ctx context.Context, clubID uuid.UUID, subscriptionID string) {
	n.log(ctx, clubID, "notify: subscription activated", map[string]any{"subscription_id": subscriptionID})
}

func (n *LogNotifier) SubscriptionCancelled(ctx context.Context, clubID uuid.UUID, subscriptionID string) {
	n.log(ctx, clubID, "notify: subscription cancelled", map[string]any{"subscription_id": subscriptionID})
}

func (n *LogNotifier) PaymentSucceeded(ctx context.Context, clubID uuid.UUID, details PaymentDetails) {
	n.log(ctx, clubID, "notify: payment succeeded", map[string]any{
		"payment_id": details.PaymentID,
		"amount":     details.Amount,
		"currency":   details.Currency,
	})
}

func (n *LogNotifier) PaymentFailed(ctx context.Context, clubID uuid.UUID, subscriptionID string) {
	n.log(ctx, clubID, "notify: payment failed", map[string]any{"subscription_id": subscriptionID})
}

func (n *LogNotifier) log(ctx context.Context, clubID uuid.UUID, msg string, fields map[string]any) {
	if n.logger == nil {
		return
	}
	fields["club_id"] = clubID.String()
	n.logger.Info(n.logger.WithFields(ctx, fields), msg)
}
