package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PayPalSettings is the per-club PayPal credential blob stored as JSONB on
// the clubs table. Credentials are tenant-owned; nothing here is shared.
type PayPalSettings struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	WebhookID    string `json:"webhook_id,omitempty"`
	IsProduction bool   `json:"is_production"`
	MonthlyPrice string `json:"monthly_price,omitempty"`
	YearlyPrice  string `json:"yearly_price,omitempty"`
	Currency     string `json:"currency,omitempty"`
}

// HasCredentials reports whether both OAuth credentials are present.
func (s PayPalSettings) HasCredentials() bool {
	return strings.TrimSpace(s.ClientID) != "" && strings.TrimSpace(s.ClientSecret) != ""
}

// Merge applies the provided fields of patch on top of the receiver and
// returns the result. Nil patch fields never clobber stored values,
// matching the partial-update contract of the settings endpoint.
func (s PayPalSettings) Merge(patch PayPalSettingsPatch) PayPalSettings {
	out := s
	if patch.ClientID != nil {
		out.ClientID = strings.TrimSpace(*patch.ClientID)
	}
	if patch.ClientSecret != nil {
		out.ClientSecret = strings.TrimSpace(*patch.ClientSecret)
	}
	if patch.WebhookID != nil {
		out.WebhookID = strings.TrimSpace(*patch.WebhookID)
	}
	if patch.IsProduction != nil {
		out.IsProduction = *patch.IsProduction
	}
	if patch.MonthlyPrice != nil {
		out.MonthlyPrice = strings.TrimSpace(*patch.MonthlyPrice)
	}
	if patch.YearlyPrice != nil {
		out.YearlyPrice = strings.TrimSpace(*patch.YearlyPrice)
	}
	if patch.Currency != nil {
		out.Currency = strings.ToUpper(strings.TrimSpace(*patch.Currency))
	}
	return out
}

// PayPalSettingsPatch is a partial update; nil fields are left untouched.
type PayPalSettingsPatch struct {
	ClientID     *string `json:"client_id,omitempty"`
	ClientSecret *string `json:"client_secret,omitempty"`
	WebhookID    *string `json:"webhook_id,omitempty"`
	IsProduction *bool   `json:"is_production,omitempty"`
	MonthlyPrice *string `json:"monthly_price,omitempty"`
	YearlyPrice  *string `json:"yearly_price,omitempty"`
	Currency     *string `json:"currency,omitempty"`
}

// Value marshals the settings into a JSONB column value.
func (s PayPalSettings) Value() (driver.Value, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("paypal settings: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes the JSONB column value.
func (s *PayPalSettings) Scan(value interface{}) error {
	if value == nil {
		*s = PayPalSettings{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("paypal settings: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*s = PayPalSettings{}
		return nil
	}
	return json.Unmarshal(raw, s)
}
