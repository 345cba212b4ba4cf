package provisioning

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

type fakeClubRepo struct {
	club    *models.Club
	updates map[string]any
}

func (f *fakeClubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Club, error) {
	if f.club == nil || f.club.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.club
	return &copied, nil
}

func (f *fakeClubRepo) UpdateColumns(_ context.Context, _ uuid.UUID, updates map[string]any) error {
	f.updates = updates
	return nil
}

type fakePayPal struct {
	tokenErr   error
	productErr error
	planErr    error

	plans    []paypal.PlanParams
	products []paypal.ProductParams
}

func (f *fakePayPal) GetAccessToken(_ context.Context, _ paypal.ClientConfig) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "token-123", nil
}

func (f *fakePayPal) CreateProduct(_ context.Context, _ paypal.ClientConfig, _ string, params paypal.ProductParams) (string, error) {
	if f.productErr != nil {
		return "", f.productErr
	}
	f.products = append(f.products, params)
	return "PROD-1", nil
}

func (f *fakePayPal) CreatePlan(_ context.Context, _ paypal.ClientConfig, _ string, params paypal.PlanParams) (string, error) {
	if f.planErr != nil {
		return "", f.planErr
	}
	f.plans = append(f.plans, params)
	return "PLAN-" + params.IntervalUnit, nil
}

func configuredClub() *models.Club {
	return &models.Club{
		ID:   uuid.New(),
		Name: "Riverside Riders",
		PayPalSettings: types.PayPalSettings{
			ClientID:     "client-abc",
			ClientSecret: "secret-xyz",
			Currency:     "USD",
		},
	}
}

func newSetupService(t *testing.T, repo *fakeClubRepo, pp *fakePayPal) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		ClubRepo:     repo,
		PayPalClient: pp,
		Logger:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestSetupProductsHappyPath(t *testing.T) {
	repo := &fakeClubRepo{club: configuredClub()}
	pp := &fakePayPal{}
	svc := newSetupService(t, repo, pp)

	result, err := svc.SetupProducts(context.Background(), SetupParams{
		ClubID:       repo.club.ID,
		MonthlyPrice: "25",
		YearlyPrice:  "250.5",
		Currency:     "usd",
	})
	require.NoError(t, err)

	assert.Equal(t, "PROD-1", result.ProductID)
	assert.Equal(t, "PLAN-MONTH", result.MonthlyPlanID)
	assert.Equal(t, "PLAN-YEAR", result.YearlyPlanID)
	assert.False(t, result.Reused)

	require.Len(t, pp.products, 1)
	assert.Equal(t, "Riverside Riders Membership", pp.products[0].Name)

	require.Len(t, pp.plans, 2)
	assert.Equal(t, "25.00", pp.plans[0].Price)
	assert.Equal(t, "MONTH", pp.plans[0].IntervalUnit)
	assert.Equal(t, "250.50", pp.plans[1].Price)
	assert.Equal(t, "YEAR", pp.plans[1].IntervalUnit)
	assert.Equal(t, "USD", pp.plans[0].Currency)

	require.NotNil(t, repo.updates)
	assert.Equal(t, "PROD-1", repo.updates["paypal_product_id"])
	assert.Equal(t, "PLAN-MONTH", repo.updates["paypal_monthly_plan_id"])
	assert.Equal(t, "PLAN-YEAR", repo.updates["paypal_yearly_plan_id"])
}

func TestSetupProductsReusesExistingIDs(t *testing.T) {
	club := configuredClub()
	club.PayPalProductID = "PROD-OLD"
	club.PayPalMonthlyPlanID = "PLAN-M-OLD"
	club.PayPalYearlyPlanID = "PLAN-Y-OLD"
	repo := &fakeClubRepo{club: club}
	pp := &fakePayPal{}
	svc := newSetupService(t, repo, pp)

	result, err := svc.SetupProducts(context.Background(), SetupParams{
		ClubID:       club.ID,
		MonthlyPrice: "25",
		YearlyPrice:  "250",
	})
	require.NoError(t, err)
	assert.True(t, result.Reused)
	assert.Equal(t, "PROD-OLD", result.ProductID)
	assert.Empty(t, pp.products)
	assert.Nil(t, repo.updates)
}

func TestSetupProductsForceRecreates(t *testing.T) {
	club := configuredClub()
	club.PayPalProductID = "PROD-OLD"
	club.PayPalMonthlyPlanID = "PLAN-M-OLD"
	club.PayPalYearlyPlanID = "PLAN-Y-OLD"
	repo := &fakeClubRepo{club: club}
	pp := &fakePayPal{}
	svc := newSetupService(t, repo, pp)

	result, err := svc.SetupProducts(context.Background(), SetupParams{
		ClubID:       club.ID,
		MonthlyPrice: "25",
		YearlyPrice:  "250",
		Force:        true,
	})
	require.NoError(t, err)
	assert.False(t, result.Reused)
	assert.Equal(t, "PROD-1", result.ProductID)
	require.Len(t, pp.plans, 2)
}

func TestSetupProductsValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.Club, *SetupParams)
	}{
		{"missing credentials", func(c *models.Club, _ *SetupParams) {
			c.PayPalSettings = types.PayPalSettings{}
		}},
		{"non-numeric price", func(_ *models.Club, p *SetupParams) {
			p.MonthlyPrice = "twenty"
		}},
		{"zero price", func(_ *models.Club, p *SetupParams) {
			p.YearlyPrice = "0"
		}},
		{"negative price", func(_ *models.Club, p *SetupParams) {
			p.MonthlyPrice = "-5"
		}},
		{"unknown currency", func(_ *models.Club, p *SetupParams) {
			p.Currency = "XXX"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			club := configuredClub()
			params := SetupParams{ClubID: club.ID, MonthlyPrice: "25", YearlyPrice: "250", Currency: "USD"}
			tc.mutate(club, &params)

			repo := &fakeClubRepo{club: club}
			svc := newSetupService(t, repo, &fakePayPal{})

			_, err := svc.SetupProducts(context.Background(), params)
			var appErr *pkgerrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
			assert.Nil(t, repo.updates)
		})
	}
}

func TestSetupProductsAbortsOnPlanFailure(t *testing.T) {
	repo := &fakeClubRepo{club: configuredClub()}
	pp := &fakePayPal{planErr: pkgerrors.New(pkgerrors.CodeDependency, "paypal create plan failed")}
	svc := newSetupService(t, repo, pp)

	_, err := svc.SetupProducts(context.Background(), SetupParams{
		ClubID:       repo.club.ID,
		MonthlyPrice: "25",
		YearlyPrice:  "250",
	})
	require.Error(t, err)
	assert.Nil(t, repo.updates)
	require.Len(t, pp.products, 1)
}
