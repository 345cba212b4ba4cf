package paypal

import "encoding/json"

// Webhook event types the reconciliation engine understands. Unrecognized
// types are acknowledged and ignored; the provider catalog evolves.
const (
	EventSubscriptionActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventSubscriptionCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
	EventPaymentCompleted      = "PAYMENT.SALE.COMPLETED"
	EventPaymentFailed         = "BILLING.SUBSCRIPTION.PAYMENT.FAILED"
)

// Transmission headers PayPal attaches to every webhook delivery.
const (
	HeaderTransmissionID   = "Paypal-Transmission-Id"
	HeaderTransmissionTime = "Paypal-Transmission-Time"
	HeaderTransmissionSig  = "Paypal-Transmission-Sig"
	HeaderCertURL          = "Paypal-Cert-Url"
	HeaderAuthAlgo         = "Paypal-Auth-Algo"
	HeaderWebhookID        = "Paypal-Webhook-Id"
)

// WebhookEvent is the provider envelope. Resource stays raw until the
// dispatcher knows the event type.
type WebhookEvent struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	Summary    string          `json:"summary,omitempty"`
	CreateTime string          `json:"create_time,omitempty"`
	Resource   json.RawMessage `json:"resource"`
}

// SubscriptionResource is the resource payload for BILLING.SUBSCRIPTION.* events.
type SubscriptionResource struct {
	ID          string `json:"id"`
	Status      string `json:"status,omitempty"`
	PlanID      string `json:"plan_id,omitempty"`
	BillingInfo struct {
		NextBillingTime string `json:"next_billing_time,omitempty"`
	} `json:"billing_info"`
	Subscriber struct {
		EmailAddress string `json:"email_address,omitempty"`
	} `json:"subscriber"`
}

// SaleResource is the resource payload for PAYMENT.SALE.* events. The owning
// subscription travels in billing_agreement_id.
type SaleResource struct {
	ID                 string `json:"id"`
	State              string `json:"state,omitempty"`
	BillingAgreementID string `json:"billing_agreement_id,omitempty"`
	Amount             struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"amount"`
	Payer struct {
		PayerInfo struct {
			Email   string `json:"email,omitempty"`
			PayerID string `json:"payer_id,omitempty"`
		} `json:"payer_info"`
	} `json:"payer"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type productResponse struct {
	ID string `json:"id"`
}

type planResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type subscriptionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []link `json:"links"`
}

type verifySignatureRequest struct {
	TransmissionID   string          `json:"transmission_id"`
	TransmissionTime string          `json:"transmission_time"`
	CertURL          string          `json:"cert_url"`
	AuthAlgo         string          `json:"auth_algo"`
	TransmissionSig  string          `json:"transmission_sig"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifySignatureResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// ProductParams describes the catalog product created once per club.
type ProductParams struct {
	Name        string
	Description string
}

// PlanParams describes one billing plan referencing a provisioned product.
type PlanParams struct {
	ProductID    string
	Name         string
	Price        string
	Currency     string
	IntervalUnit string // MONTH or YEAR
}

// SubscriptionParams describes a member subscription awaiting approval.
type SubscriptionParams struct {
	PlanID          string
	SubscriberEmail string
	ReturnURL       string
	CancelURL       string
}

// SubscriptionResult carries the provider id and the redirect the member
// must visit to approve the agreement.
type SubscriptionResult struct {
	ID          string
	Status      string
	ApprovalURL string
}
