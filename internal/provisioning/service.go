package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/enums"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

type clubRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Club, error)
	UpdateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type paypalClient interface {
	GetAccessToken(ctx context.Context, cfg paypal.ClientConfig) (string, error)
	CreateProduct(ctx context.Context, cfg paypal.ClientConfig, token string, params paypal.ProductParams) (string, error)
	CreatePlan(ctx context.Context, cfg paypal.ClientConfig, token string, params paypal.PlanParams) (string, error)
}

// SetupParams drives one provisioning run for a club.
type SetupParams struct {
	ClubID       uuid.UUID
	MonthlyPrice string
	YearlyPrice  string
	Currency     string
	Description  string
	// Force re-creates provider objects even when ids already exist.
	Force bool
}

// SetupResult reports the provider ids now stored on the club.
type SetupResult struct {
	ProductID     string `json:"product_id"`
	MonthlyPlanID string `json:"monthly_plan_id"`
	YearlyPlanID  string `json:"yearly_plan_id"`
	// Reused is true when existing ids were returned without provider calls.
	Reused bool `json:"reused"`
}

// Service provisions the per-club product and plan objects at the provider.
type Service interface {
	SetupProducts(ctx context.Context, params SetupParams) (*SetupResult, error)
}

// ServiceParams groups dependencies for the provisioning service.
type ServiceParams struct {
	ClubRepo     clubRepository
	PayPalClient paypalClient
	Logger       *logger.Logger
}

type service struct {
	clubRepo clubRepository
	paypal   paypalClient
	logger   *logger.Logger
}

// NewService builds the provisioning service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ClubRepo == nil {
		return nil, fmt.Errorf("club repo required")
	}
	if params.PayPalClient == nil {
		return nil, fmt.Errorf("paypal client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		clubRepo: params.ClubRepo,
		paypal:   params.PayPalClient,
		logger:   params.Logger,
	}, nil
}

// SetupProducts creates the catalog product and both billing plans in order,
// persisting the three ids on the club. The first provider failure aborts the
// run; objects already created at the provider are left in place and a later
// run with Force simply creates fresh ones.
func (s *service) SetupProducts(ctx context.Context, params SetupParams) (*SetupResult, error) {
	club, err := s.clubRepo.FindByID(ctx, params.ClubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load club")
	}

	if !club.PayPalSettings.HasCredentials() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paypal credentials are not configured")
	}

	monthly, yearly, currency, err := resolvePricing(club, params)
	if err != nil {
		return nil, err
	}

	if !params.Force && club.PayPalProductID != "" && club.PayPalMonthlyPlanID != "" && club.PayPalYearlyPlanID != "" {
		return &SetupResult{
			ProductID:     club.PayPalProductID,
			MonthlyPlanID: club.PayPalMonthlyPlanID,
			YearlyPlanID:  club.PayPalYearlyPlanID,
			Reused:        true,
		}, nil
	}

	cfg := paypal.ConfigForSettings(club.ID, club.PayPalSettings)
	token, err := s.paypal.GetAccessToken(ctx, cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paypal authentication failed")
	}

	logCtx := s.logger.WithClubID(ctx, club.ID.String())

	description := strings.TrimSpace(params.Description)
	if description == "" {
		description = fmt.Sprintf("%s membership subscription", club.Name)
	}
	productID, err := s.paypal.CreateProduct(ctx, cfg, token, paypal.ProductParams{
		Name:        fmt.Sprintf("%s Membership", club.Name),
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	monthlyPlanID, err := s.paypal.CreatePlan(ctx, cfg, token, paypal.PlanParams{
		ProductID:    productID,
		Name:         fmt.Sprintf("%s Monthly Membership", club.Name),
		Price:        monthly,
		Currency:     currency,
		IntervalUnit: "MONTH",
	})
	if err != nil {
		return nil, err
	}

	yearlyPlanID, err := s.paypal.CreatePlan(ctx, cfg, token, paypal.PlanParams{
		ProductID:    productID,
		Name:         fmt.Sprintf("%s Yearly Membership", club.Name),
		Price:        yearly,
		Currency:     currency,
		IntervalUnit: "YEAR",
	})
	if err != nil {
		return nil, err
	}

	err = s.clubRepo.UpdateColumns(ctx, club.ID, map[string]any{
		"paypal_product_id":      productID,
		"paypal_monthly_plan_id": monthlyPlanID,
		"paypal_yearly_plan_id":  yearlyPlanID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store provisioned ids")
	}

	s.logger.Info(logCtx, "paypal products provisioned")
	return &SetupResult{
		ProductID:     productID,
		MonthlyPlanID: monthlyPlanID,
		YearlyPlanID:  yearlyPlanID,
	}, nil
}

// resolvePricing validates the requested prices and currency, falling back
// to the values stored in club settings when the request omits them.
func resolvePricing(club *models.Club, params SetupParams) (monthly, yearly, currency string, err error) {
	monthly = strings.TrimSpace(params.MonthlyPrice)
	if monthly == "" {
		monthly = club.PayPalSettings.MonthlyPrice
	}
	yearly = strings.TrimSpace(params.YearlyPrice)
	if yearly == "" {
		yearly = club.PayPalSettings.YearlyPrice
	}
	currency = strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = club.PayPalSettings.Currency
	}

	if monthly, err = normalizePrice("monthly_price", monthly); err != nil {
		return "", "", "", err
	}
	if yearly, err = normalizePrice("yearly_price", yearly); err != nil {
		return "", "", "", err
	}

	parsed, perr := enums.ParseCurrency(currency)
	if perr != nil {
		return "", "", "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", currency))
	}
	return monthly, yearly, string(parsed), nil
}

func normalizePrice(field, value string) (string, error) {
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
	}
	price, err := decimal.NewFromString(value)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, field+" is not a valid amount")
	}
	if !price.IsPositive() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, field+" must be greater than zero")
	}
	return price.StringFixed(2), nil
}
