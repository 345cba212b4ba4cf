package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/internal/members"
	"github.com/motorclubhq/clubhub-backend/internal/transactions"
	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/enums"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

type clubRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Club, error)
}

type paypalClient interface {
	GetAccessToken(ctx context.Context, cfg paypal.ClientConfig) (string, error)
	CreateSubscription(ctx context.Context, cfg paypal.ClientConfig, token string, params paypal.SubscriptionParams) (*paypal.SubscriptionResult, error)
	CancelSubscription(ctx context.Context, cfg paypal.ClientConfig, token, subscriptionID, reason string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateParams starts the approval flow for one member.
type CreateParams struct {
	PlanType  enums.PlanInterval
	Email     string
	ReturnURL string
	CancelURL string
}

// CreateResult carries the provider subscription id and the approval
// redirect the member must complete.
type CreateResult struct {
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
	ApprovalURL    string `json:"approval_url"`
}

// Service drives the member subscription lifecycle. Activation is never
// performed here; only the activation webhook marks a member active.
type Service interface {
	Create(ctx context.Context, clubID uuid.UUID, params CreateParams) (*CreateResult, error)
	Cancel(ctx context.Context, clubID uuid.UUID, subscriptionID, reason string) error
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	ClubRepo          clubRepository
	MemberRepo        *members.Repository
	TransactionRepo   *transactions.Repository
	PayPalClient      paypalClient
	TransactionRunner txRunner
	Logger            *logger.Logger
}

type service struct {
	clubRepo   clubRepository
	memberRepo *members.Repository
	txnRepo    *transactions.Repository
	paypal     paypalClient
	txRunner   txRunner
	logger     *logger.Logger
}

// NewService builds the subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ClubRepo == nil {
		return nil, fmt.Errorf("club repo required")
	}
	if params.MemberRepo == nil {
		return nil, fmt.Errorf("member repo required")
	}
	if params.TransactionRepo == nil {
		return nil, fmt.Errorf("transaction repo required")
	}
	if params.PayPalClient == nil {
		return nil, fmt.Errorf("paypal client required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		clubRepo:   params.ClubRepo,
		memberRepo: params.MemberRepo,
		txnRepo:    params.TransactionRepo,
		paypal:     params.PayPalClient,
		txRunner:   params.TransactionRunner,
		logger:     params.Logger,
	}, nil
}

// Create starts a subscription at the provider and records the member as
// pending. The member only becomes active when the activation webhook lands.
func (s *service) Create(ctx context.Context, clubID uuid.UUID, params CreateParams) (*CreateResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !params.PlanType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan_type must be monthly or yearly")
	}

	club, err := s.findClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !club.IsFullySetup() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "club paypal products are not provisioned")
	}

	planID := club.PayPalMonthlyPlanID
	if params.PlanType == enums.PlanIntervalYearly {
		planID = club.PayPalYearlyPlanID
	}

	cfg := paypal.ConfigForSettings(club.ID, club.PayPalSettings)
	token, err := s.paypal.GetAccessToken(ctx, cfg)
	if err != nil {
		return nil, s.authFailure(ctx, club.ID, err)
	}

	created, err := s.paypal.CreateSubscription(ctx, cfg, token, paypal.SubscriptionParams{
		PlanID:          planID,
		SubscriberEmail: email,
		ReturnURL:       params.ReturnURL,
		CancelURL:       params.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		memberRepo := s.memberRepo.WithTx(tx)
		txnRepo := s.txnRepo.WithTx(tx)

		member, ferr := memberRepo.FindByClubAndEmail(ctx, club.ID, email)
		switch {
		case ferr == nil:
			if uerr := memberRepo.UpdateColumns(ctx, member.ID, map[string]any{
				"paypal_subscription_id": created.ID,
				"subscription_status":    enums.SubscriptionStatusPending,
			}); uerr != nil {
				return uerr
			}
		case errors.Is(ferr, gorm.ErrRecordNotFound):
			if cerr := memberRepo.Create(ctx, &models.Member{
				ID:                   uuid.New(),
				ClubID:               club.ID,
				Email:                email,
				PayPalSubscriptionID: created.ID,
				SubscriptionStatus:   enums.SubscriptionStatusPending,
			}); cerr != nil {
				return cerr
			}
		default:
			return ferr
		}

		return txnRepo.Create(ctx, &models.PayPalTransaction{
			ID:              uuid.New(),
			ClubID:          club.ID,
			PayPalPaymentID: created.ID,
			TransactionType: enums.TransactionTypeSubscriptionCreated,
			Amount:          "0",
			Currency:        currencyOrDefault(club),
			Status:          strings.ToLower(created.Status),
			Description:     fmt.Sprintf("%s subscription created for %s", params.PlanType, email),
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record pending subscription")
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"club_id":         club.ID.String(),
		"subscription_id": created.ID,
	})
	s.logger.Info(logCtx, "subscription approval flow started")

	return &CreateResult{
		SubscriptionID: created.ID,
		Status:         created.Status,
		ApprovalURL:    created.ApprovalURL,
	}, nil
}

// Cancel cancels at the provider first and only touches the member row once
// the provider confirmed. A failed provider call leaves the member untouched.
func (s *service) Cancel(ctx context.Context, clubID uuid.UUID, subscriptionID, reason string) error {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription_id is required")
	}
	if strings.TrimSpace(reason) == "" {
		reason = "Member requested cancellation"
	}

	club, err := s.findClub(ctx, clubID)
	if err != nil {
		return err
	}

	cfg := paypal.ConfigForSettings(club.ID, club.PayPalSettings)
	token, err := s.paypal.GetAccessToken(ctx, cfg)
	if err != nil {
		return s.authFailure(ctx, club.ID, err)
	}

	if err := s.paypal.CancelSubscription(ctx, cfg, token, subscriptionID, reason); err != nil {
		return err
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		affected, cerr := s.memberRepo.WithTx(tx).CancelBySubscription(ctx, club.ID, subscriptionID)
		if cerr != nil {
			return cerr
		}
		if affected == 0 {
			logCtx := s.logger.WithClubID(ctx, club.ID.String())
			s.logger.Warn(logCtx, "cancelled subscription matched no member")
		}

		return s.txnRepo.WithTx(tx).Create(ctx, &models.PayPalTransaction{
			ID:              uuid.New(),
			ClubID:          club.ID,
			PayPalPaymentID: subscriptionID,
			TransactionType: enums.TransactionTypeSubscriptionCancelled,
			Amount:          "0",
			Currency:        currencyOrDefault(club),
			Status:          "cancelled",
			Description:     reason,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record cancellation")
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"club_id":         club.ID.String(),
		"subscription_id": subscriptionID,
	})
	s.logger.Info(logCtx, "subscription cancelled")
	return nil
}

func (s *service) findClub(ctx context.Context, clubID uuid.UUID) (*models.Club, error) {
	club, err := s.clubRepo.FindByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load club")
	}
	return club, nil
}

// authFailure logs the underlying token error but surfaces only a generic
// dependency failure; credential detail never reaches API clients.
func (s *service) authFailure(ctx context.Context, clubID uuid.UUID, err error) error {
	logCtx := s.logger.WithClubID(ctx, clubID.String())
	s.logger.Error(logCtx, "paypal authentication failed", err)
	return pkgerrors.New(pkgerrors.CodeDependency, "payment provider authentication failed")
}

func currencyOrDefault(club *models.Club) string {
	if club.PayPalSettings.Currency != "" {
		return club.PayPalSettings.Currency
	}
	return "USD"
}
