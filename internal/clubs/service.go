package clubs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
	"github.com/motorclubhq/clubhub-backend/pkg/security"
)

type tokenAcquirer interface {
	GetAccessToken(ctx context.Context, cfg paypal.ClientConfig) (string, error)
}

type settingsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Club, error)
	SaveSettings(ctx context.Context, id uuid.UUID, settings types.PayPalSettings) error
}

// SettingsView is the masked settings echo returned to admins. Raw
// credentials never leave the service.
type SettingsView struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	WebhookID    string `json:"webhook_id,omitempty"`
	IsProduction bool   `json:"is_production"`
	MonthlyPrice string `json:"monthly_price,omitempty"`
	YearlyPrice  string `json:"yearly_price,omitempty"`
	Currency     string `json:"currency,omitempty"`
	FullySetup   bool   `json:"fully_setup"`
	// ConnectionOK is populated only on writes, after the credential check.
	ConnectionOK *bool `json:"connection_ok,omitempty"`
}

// Service defines the credential settings surface.
type Service interface {
	GetSettings(ctx context.Context, clubID uuid.UUID) (*SettingsView, error)
	UpdateSettings(ctx context.Context, clubID uuid.UUID, patch types.PayPalSettingsPatch) (*SettingsView, error)
}

// ServiceParams groups dependencies for the settings service.
type ServiceParams struct {
	Repo        settingsRepository
	TokenClient tokenAcquirer
	Logger      *logger.Logger
}

type service struct {
	repo   settingsRepository
	tokens tokenAcquirer
	logger *logger.Logger
}

// NewService builds the settings service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("club repo required")
	}
	if params.TokenClient == nil {
		return nil, fmt.Errorf("token client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   params.Repo,
		tokens: params.TokenClient,
		logger: params.Logger,
	}, nil
}

// GetSettings returns the stored settings with credentials masked.
func (s *service) GetSettings(ctx context.Context, clubID uuid.UUID) (*SettingsView, error) {
	club, err := s.findClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	return maskedView(club), nil
}

// UpdateSettings applies a partial update on top of the stored blob. The
// write goes straight to the database; persisted state is the only source
// of truth for later calls. The response includes a live credential check.
func (s *service) UpdateSettings(ctx context.Context, clubID uuid.UUID, patch types.PayPalSettingsPatch) (*SettingsView, error) {
	if patch.ClientID != nil && strings.TrimSpace(*patch.ClientID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_id cannot be empty")
	}
	if patch.ClientSecret != nil && strings.TrimSpace(*patch.ClientSecret) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_secret cannot be empty")
	}

	club, err := s.findClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	merged := club.PayPalSettings.Merge(patch)
	if err := s.repo.SaveSettings(ctx, clubID, merged); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save paypal settings")
	}
	club.PayPalSettings = merged

	view := maskedView(club)
	view.ConnectionOK = s.testConnection(ctx, clubID, merged)
	return view, nil
}

// testConnection attempts a token exchange with the freshly stored
// credentials. Failures are reported in the response, never as an error.
func (s *service) testConnection(ctx context.Context, clubID uuid.UUID, settings types.PayPalSettings) *bool {
	ok := false
	if !settings.HasCredentials() {
		return &ok
	}

	cfg := paypal.ConfigForSettings(clubID, settings)
	if _, err := s.tokens.GetAccessToken(ctx, cfg); err != nil {
		logCtx := s.logger.WithClubID(ctx, clubID.String())
		s.logger.Warn(logCtx, "paypal credential check failed")
		return &ok
	}
	ok = true
	return &ok
}

func (s *service) findClub(ctx context.Context, clubID uuid.UUID) (*models.Club, error) {
	club, err := s.repo.FindByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load club")
	}
	return club, nil
}

func maskedView(club *models.Club) *SettingsView {
	settings := club.PayPalSettings
	return &SettingsView{
		ClientID:     security.MaskSecret(settings.ClientID),
		ClientSecret: security.MaskSecret(settings.ClientSecret),
		WebhookID:    settings.WebhookID,
		IsProduction: settings.IsProduction,
		MonthlyPrice: settings.MonthlyPrice,
		YearlyPrice:  settings.YearlyPrice,
		Currency:     settings.Currency,
		FullySetup:   club.IsFullySetup(),
	}
}
