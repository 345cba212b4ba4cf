package paypalwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/internal/clubs"
	"github.com/motorclubhq/clubhub-backend/internal/members"
	"github.com/motorclubhq/clubhub-backend/internal/notifications"
	"github.com/motorclubhq/clubhub-backend/internal/transactions"
	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/enums"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/metrics"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Result reports what one dispatch did so the controller can log failures
// while still acknowledging the delivery.
type Result struct {
	Handled bool
	ClubID  *uuid.UUID
	Err     error
}

// ServiceParams groups dependencies for the webhook service.
type ServiceParams struct {
	ClubRepo          *clubs.Repository
	MemberRepo        *members.Repository
	TransactionRepo   *transactions.Repository
	TransactionRunner txRunner
	Notifier          notifications.Notifier
	Metrics           *metrics.PayPalMetrics
	Logger            *logger.Logger
}

// Service applies verified provider events to local state. Handlers are
// last-write-wins and tolerate out-of-order delivery.
type Service struct {
	clubRepo   *clubs.Repository
	memberRepo *members.Repository
	txnRepo    *transactions.Repository
	txRunner   txRunner
	notifier   notifications.Notifier
	metrics    *metrics.PayPalMetrics
	logger     *logger.Logger
}

// NewService builds the webhook service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.ClubRepo == nil {
		return nil, fmt.Errorf("club repo required")
	}
	if params.MemberRepo == nil {
		return nil, fmt.Errorf("member repo required")
	}
	if params.TransactionRepo == nil {
		return nil, fmt.Errorf("transaction repo required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		clubRepo:   params.ClubRepo,
		memberRepo: params.MemberRepo,
		txnRepo:    params.TransactionRepo,
		txRunner:   params.TransactionRunner,
		notifier:   params.Notifier,
		metrics:    params.Metrics,
		logger:     params.Logger,
	}, nil
}

// HandleEvent dispatches one verified event. Unknown event types are
// acknowledged without action.
func (s *Service) HandleEvent(ctx context.Context, event paypal.WebhookEvent) Result {
	logCtx := s.logger.WithEventType(ctx, event.EventType)

	var result Result
	switch event.EventType {
	case paypal.EventSubscriptionActivated:
		result = s.handleActivated(logCtx, event)
	case paypal.EventSubscriptionCancelled:
		result = s.handleCancelled(logCtx, event)
	case paypal.EventPaymentCompleted:
		result = s.handlePaymentCompleted(logCtx, event)
	case paypal.EventPaymentFailed:
		result = s.handlePaymentFailed(logCtx, event)
	default:
		s.logger.Info(logCtx, "ignoring unrecognized webhook event type")
		return Result{}
	}

	if s.metrics != nil {
		s.metrics.IncWebhookEvent(event.EventType, result.Err == nil)
	}
	if result.Err != nil {
		s.logger.Error(logCtx, "webhook handler failed", result.Err)
	}
	return result
}

func (s *Service) handleActivated(ctx context.Context, event paypal.WebhookEvent) Result {
	var resource paypal.SubscriptionResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		return Result{Err: fmt.Errorf("parse subscription resource: %w", err)}
	}
	if resource.ID == "" {
		return Result{Err: errors.New("activation event carries no subscription id")}
	}

	nextBilling := parseBillingTime(resource.BillingInfo.NextBillingTime)

	club, err := s.clubRepo.FindBySubscriptionID(ctx, resource.ID)
	if err == nil {
		uerr := s.clubRepo.UpdateColumns(ctx, club.ID, map[string]any{
			"subscription_status": enums.SubscriptionStatusActive,
			"next_billing_date":   nextBilling,
			"reminders_sent":      0,
		})
		if uerr != nil {
			return Result{ClubID: &club.ID, Err: uerr}
		}
		s.notifier.SubscriptionActivated(ctx, club.ID, resource.ID)
		return Result{Handled: true, ClubID: &club.ID}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{Err: err}
	}

	member, err := s.memberRepo.FindBySubscriptionID(ctx, resource.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn(ctx, "activation for unknown subscription")
			return Result{}
		}
		return Result{Err: err}
	}

	ctx = s.logger.WithMemberID(ctx, member.ID.String())
	now := time.Now().UTC()
	uerr := s.memberRepo.UpdateColumns(ctx, member.ID, map[string]any{
		"subscription_status":     enums.SubscriptionStatusActive,
		"subscription_start_date": &now,
		"subscription_end_date":   nil,
	})
	if uerr != nil {
		return Result{ClubID: &member.ClubID, Err: uerr}
	}
	s.notifier.SubscriptionActivated(ctx, member.ClubID, resource.ID)
	return Result{Handled: true, ClubID: &member.ClubID}
}

func (s *Service) handleCancelled(ctx context.Context, event paypal.WebhookEvent) Result {
	var resource paypal.SubscriptionResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		return Result{Err: fmt.Errorf("parse subscription resource: %w", err)}
	}
	if resource.ID == "" {
		return Result{Err: errors.New("cancellation event carries no subscription id")}
	}

	club, err := s.clubRepo.FindBySubscriptionID(ctx, resource.ID)
	if err == nil {
		uerr := s.clubRepo.UpdateColumns(ctx, club.ID, map[string]any{
			"subscription_status": enums.SubscriptionStatusCancelled,
			"next_billing_date":   nil,
		})
		if uerr != nil {
			return Result{ClubID: &club.ID, Err: uerr}
		}
		s.notifier.SubscriptionCancelled(ctx, club.ID, resource.ID)
		return Result{Handled: true, ClubID: &club.ID}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{Err: err}
	}

	member, err := s.memberRepo.FindBySubscriptionID(ctx, resource.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn(ctx, "cancellation for unknown subscription")
			return Result{}
		}
		return Result{Err: err}
	}

	ctx = s.logger.WithMemberID(ctx, member.ID.String())
	now := time.Now().UTC()
	uerr := s.memberRepo.UpdateColumns(ctx, member.ID, map[string]any{
		"subscription_status":   enums.SubscriptionStatusCancelled,
		"subscription_end_date": &now,
	})
	if uerr != nil {
		return Result{ClubID: &member.ClubID, Err: uerr}
	}
	s.notifier.SubscriptionCancelled(ctx, member.ClubID, resource.ID)
	return Result{Handled: true, ClubID: &member.ClubID}
}

func (s *Service) handlePaymentCompleted(ctx context.Context, event paypal.WebhookEvent) Result {
	var sale paypal.SaleResource
	if err := json.Unmarshal(event.Resource, &sale); err != nil {
		return Result{Err: fmt.Errorf("parse sale resource: %w", err)}
	}
	if sale.BillingAgreementID == "" {
		s.logger.Warn(ctx, "completed sale carries no billing agreement id")
		return Result{}
	}

	clubID, found, err := s.resolveClubID(ctx, sale.BillingAgreementID)
	if err != nil {
		return Result{Err: err}
	}
	if !found {
		s.logger.Warn(ctx, "completed sale matched no club or member")
		return Result{}
	}

	// Database-level duplicate guard behind the redis one: redeliveries that
	// slip past the event-id claim must not append a second ledger row.
	exists, err := s.txnRepo.ExistsByPaymentID(ctx, clubID, sale.ID)
	if err != nil {
		return Result{ClubID: &clubID, Err: err}
	}
	if exists {
		s.logger.Warn(ctx, "completed sale already recorded, skipping ledger append")
		return Result{Handled: true, ClubID: &clubID}
	}

	amount := sale.Amount.Total
	if amount == "" {
		amount = "0"
	}
	currency := sale.Amount.Currency
	if currency == "" {
		currency = "USD"
	}

	metadata, _ := json.Marshal(map[string]string{
		"billing_agreement_id": sale.BillingAgreementID,
		"payer_email":          sale.Payer.PayerInfo.Email,
		"payer_id":             sale.Payer.PayerInfo.PayerID,
	})

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.txnRepo.WithTx(tx).Create(ctx, &models.PayPalTransaction{
			ID:              uuid.New(),
			ClubID:          clubID,
			PayPalPaymentID: sale.ID,
			TransactionType: enums.TransactionTypePaymentCompleted,
			Amount:          amount,
			Currency:        currency,
			Status:          "completed",
			Description:     event.Summary,
			Metadata:        metadata,
		})
	})
	if err != nil {
		return Result{ClubID: &clubID, Err: err}
	}

	s.notifier.PaymentSucceeded(ctx, clubID, notifications.PaymentDetails{
		PaymentID: sale.ID,
		Amount:    amount,
		Currency:  currency,
		Payer:     sale.Payer.PayerInfo.Email,
	})
	return Result{Handled: true, ClubID: &clubID}
}

func (s *Service) handlePaymentFailed(ctx context.Context, event paypal.WebhookEvent) Result {
	var resource paypal.SubscriptionResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		return Result{Err: fmt.Errorf("parse subscription resource: %w", err)}
	}
	if resource.ID == "" {
		return Result{Err: errors.New("payment failure event carries no subscription id")}
	}

	club, err := s.clubRepo.FindBySubscriptionID(ctx, resource.ID)
	if err == nil {
		uerr := s.clubRepo.UpdateColumns(ctx, club.ID, map[string]any{
			"subscription_status": enums.SubscriptionStatusPastDue,
		})
		if uerr != nil {
			return Result{ClubID: &club.ID, Err: uerr}
		}
		s.notifier.PaymentFailed(ctx, club.ID, resource.ID)
		return Result{Handled: true, ClubID: &club.ID}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{Err: err}
	}

	member, err := s.memberRepo.FindBySubscriptionID(ctx, resource.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn(ctx, "payment failure for unknown subscription")
			return Result{}
		}
		return Result{Err: err}
	}

	ctx = s.logger.WithMemberID(ctx, member.ID.String())
	uerr := s.memberRepo.UpdateColumns(ctx, member.ID, map[string]any{
		"subscription_status": enums.SubscriptionStatusPastDue,
	})
	if uerr != nil {
		return Result{ClubID: &member.ClubID, Err: uerr}
	}
	s.notifier.PaymentFailed(ctx, member.ClubID, resource.ID)
	return Result{Handled: true, ClubID: &member.ClubID}
}

// resolveClubID maps a subscription id to its owning club, checking club
// subscriptions first and member subscriptions second.
func (s *Service) resolveClubID(ctx context.Context, subscriptionID string) (uuid.UUID, bool, error) {
	club, err := s.clubRepo.FindBySubscriptionID(ctx, subscriptionID)
	if err == nil {
		return club.ID, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, err
	}

	member, err := s.memberRepo.FindBySubscriptionID(ctx, subscriptionID)
	if err == nil {
		return member.ClubID, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, err
	}
	return uuid.Nil, false, nil
}

func parseBillingTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}
