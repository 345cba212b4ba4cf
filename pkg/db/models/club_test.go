package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
)

func configuredClub() *Club {
	return &Club{
		PayPalSettings: types.PayPalSettings{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
		},
		PayPalProductID:     "PROD-1",
		PayPalMonthlyPlanID: "PLAN-M",
		PayPalYearlyPlanID:  "PLAN-Y",
	}
}

func TestIsFullySetup(t *testing.T) {
	assert.True(t, configuredClub().IsFullySetup())

	cases := map[string]func(*Club){
		"missing client id":     func(c *Club) { c.PayPalSettings.ClientID = "" },
		"missing client secret": func(c *Club) { c.PayPalSettings.ClientSecret = "" },
		"missing product id":    func(c *Club) { c.PayPalProductID = "" },
		"missing monthly plan":  func(c *Club) { c.PayPalMonthlyPlanID = "" },
		"missing yearly plan":   func(c *Club) { c.PayPalYearlyPlanID = "" },
	}
	for name, clear := range cases {
		t.Run(name, func(t *testing.T) {
			club := configuredClub()
			clear(club)
			assert.False(t, club.IsFullySetup())
		})
	}

	var nilClub *Club
	assert.False(t, nilClub.IsFullySetup())
}
