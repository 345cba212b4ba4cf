package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/motorclubhq/clubhub-backend/pkg/config"
	"github.com/motorclubhq/clubhub-backend/pkg/db/types"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/metrics"
)

const (
	SandboxBaseURL    = "https://api-m.sandbox.paypal.com"
	ProductionBaseURL = "https://api-m.paypal.com"

	defaultTimeout = 10 * time.Second
)

// ErrNotConfigured signals missing OAuth credentials. Callers treat this as
// an auth failure, not an exception path.
var ErrNotConfigured = errors.New("paypal credentials not configured")

// ClientConfig is the per-call tenant configuration. Credentials are loaded
// from the club record on every call; no ambient global state.
type ClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	ClubID       *uuid.UUID
}

// ConfigForSettings derives the per-call configuration from stored club
// settings, selecting sandbox or production by the is_production flag.
func ConfigForSettings(clubID uuid.UUID, settings types.PayPalSettings) ClientConfig {
	baseURL := SandboxBaseURL
	if settings.IsProduction {
		baseURL = ProductionBaseURL
	}
	id := clubID
	return ClientConfig{
		BaseURL:      baseURL,
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		ClubID:       &id,
	}
}

// ConfigForFallback derives the per-call configuration from the globally
// configured single-tenant fallback credentials.
func ConfigForFallback(cfg config.PayPalConfig) ClientConfig {
	baseURL := SandboxBaseURL
	if cfg.FallbackIsProduction {
		baseURL = ProductionBaseURL
	}
	return ClientConfig{
		BaseURL:      baseURL,
		ClientID:     cfg.FallbackClientID,
		ClientSecret: cfg.FallbackClientSecret,
	}
}

func (c ClientConfig) hasCredentials() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

// CallRecord is the audit entry written for every outbound API call.
type CallRecord struct {
	ClubID     *uuid.UUID
	Operation  string
	Endpoint   string
	StatusCode int
	Success    bool
	Duration   time.Duration
	Detail     string
}

// CallRecorder persists audit entries. The monitoring service implements it.
type CallRecorder interface {
	RecordAPICall(ctx context.Context, record CallRecord)
}

// Client wraps PayPal's REST surface with centralized auth, auditing, and
// error mapping. One instance is shared by all tenants; configuration is
// passed per call.
type Client struct {
	httpClient *http.Client
	recorder   CallRecorder
	metrics    *metrics.PayPalMetrics
	logger     *logger.Logger
}

// NewClient builds the shared PayPal client.
func NewClient(cfg config.PayPalConfig, recorder CallRecorder, m *metrics.PayPalMetrics, logg *logger.Logger) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		recorder:   recorder,
		metrics:    m,
		logger:     logg,
	}
}

// GetAccessToken performs the OAuth client-credentials exchange. Every call
// re-authenticates; tokens are short-lived and never cached.
func (c *Client) GetAccessToken(ctx context.Context, cfg ClientConfig) (string, error) {
	if !cfg.hasCredentials() {
		return "", ErrNotConfigured
	}

	endpoint := cfg.BaseURL + "/v1/oauth2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(cfg.ClientID + ":" + cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token tokenResponse
	status, err := c.do(ctx, cfg, "get_access_token", req, &token)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 || token.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "paypal authentication failed")
	}
	return token.AccessToken, nil
}

// CreateProduct creates one catalog product scoped to a club.
func (c *Client) CreateProduct(ctx context.Context, cfg ClientConfig, token string, params ProductParams) (string, error) {
	payload := map[string]any{
		"name":        params.Name,
		"description": params.Description,
		"type":        "SERVICE",
		"category":    "MEMBERSHIP_CLUBS_AND_ORGANIZATIONS",
	}

	var created productResponse
	if err := c.postJSON(ctx, cfg, "create_product", "/v1/catalogs/products", token, payload, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "paypal returned no product id")
	}
	return created.ID, nil
}

// CreatePlan creates one billing plan against an existing product.
func (c *Client) CreatePlan(ctx context.Context, cfg ClientConfig, token string, params PlanParams) (string, error) {
	payload := map[string]any{
		"product_id": params.ProductID,
		"name":       params.Name,
		"status":     "ACTIVE",
		"billing_cycles": []map[string]any{
			{
				"frequency": map[string]any{
					"interval_unit":  params.IntervalUnit,
					"interval_count": 1,
				},
				"tenure_type": "REGULAR",
				"sequence":    1,
				"total_cycles": 0,
				"pricing_scheme": map[string]any{
					"fixed_price": map[string]string{
						"value":         params.Price,
						"currency_code": params.Currency,
					},
				},
			},
		},
		"payment_preferences": map[string]any{
			"auto_bill_outstanding":     true,
			"payment_failure_threshold": 3,
		},
	}

	var created planResponse
	if err := c.postJSON(ctx, cfg, "create_plan", "/v1/billing/plans", token, payload, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "paypal returned no plan id")
	}
	return created.ID, nil
}

// CreateSubscription starts the redirect-based approval flow. The returned
// subscription stays APPROVAL_PENDING until the member approves and the
// activation webhook lands.
func (c *Client) CreateSubscription(ctx context.Context, cfg ClientConfig, token string, params SubscriptionParams) (*SubscriptionResult, error) {
	payload := map[string]any{
		"plan_id": params.PlanID,
		"subscriber": map[string]any{
			"email_address": params.SubscriberEmail,
		},
		"application_context": map[string]string{
			"return_url": params.ReturnURL,
			"cancel_url": params.CancelURL,
		},
	}

	var created subscriptionResponse
	if err := c.postJSON(ctx, cfg, "create_subscription", "/v1/billing/subscriptions", token, payload, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paypal returned no subscription id")
	}

	return &SubscriptionResult{
		ID:          created.ID,
		Status:      created.Status,
		ApprovalURL: extractApprovalURL(created.Links),
	}, nil
}

// CancelSubscription cancels a subscription; the provider answers 204.
func (c *Client) CancelSubscription(ctx context.Context, cfg ClientConfig, token, subscriptionID, reason string) error {
	if strings.TrimSpace(subscriptionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required")
	}
	path := fmt.Sprintf("/v1/billing/subscriptions/%s/cancel", subscriptionID)
	payload := map[string]string{"reason": reason}
	return c.postJSON(ctx, cfg, "cancel_subscription", path, token, payload, nil)
}

// VerifyWebhookSignature asks the provider to verify the transmission
// signature over the exact raw bytes received. It must be called before the
// event body is parsed or acted upon.
func (c *Client) VerifyWebhookSignature(ctx context.Context, cfg ClientConfig, webhookID string, headers http.Header, rawBody []byte) (bool, error) {
	token, err := c.GetAccessToken(ctx, cfg)
	if err != nil {
		return false, err
	}

	verifyReq := verifySignatureRequest{
		TransmissionID:   headers.Get(HeaderTransmissionID),
		TransmissionTime: headers.Get(HeaderTransmissionTime),
		CertURL:          headers.Get(HeaderCertURL),
		AuthAlgo:         headers.Get(HeaderAuthAlgo),
		TransmissionSig:  headers.Get(HeaderTransmissionSig),
		WebhookID:        webhookID,
		WebhookEvent:     json.RawMessage(rawBody),
	}

	var verified verifySignatureResponse
	if err := c.postJSON(ctx, cfg, "verify_webhook_signature", "/v1/notifications/verify-webhook-signature", token, verifyReq, &verified); err != nil {
		return false, err
	}
	return verified.VerificationStatus == "SUCCESS", nil
}

func (c *Client) postJSON(ctx context.Context, cfg ClientConfig, operation, path, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	status, err := c.do(ctx, cfg, operation, req, out)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("paypal %s failed", strings.ReplaceAll(operation, "_", " ")))
	}
	return nil
}

// do executes the request, records the audit entry, and decodes into out when
// the response carries a body. Full upstream detail goes to the audit log and
// structured logs only, never to callers.
func (c *Client) do(ctx context.Context, cfg ClientConfig, operation string, req *http.Request, out any) (int, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.record(ctx, cfg, operation, req.URL.Path, 0, false, duration, err.Error())
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("paypal %s request", strings.ReplaceAll(operation, "_", " ")))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(ctx, cfg, operation, req.URL.Path, resp.StatusCode, false, duration, err.Error())
		return resp.StatusCode, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read paypal response")
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	detail := ""
	if !success {
		detail = truncate(string(raw), 2048)
		if c.logger != nil {
			logCtx := c.logger.WithFields(ctx, map[string]any{
				"operation": operation,
				"status":    resp.StatusCode,
				"body":      detail,
			})
			c.logger.Warn(logCtx, "paypal api call failed")
		}
	}
	c.record(ctx, cfg, operation, req.URL.Path, resp.StatusCode, success, duration, detail)

	if success && out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode paypal response")
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) record(ctx context.Context, cfg ClientConfig, operation, endpoint string, status int, success bool, duration time.Duration, detail string) {
	if c.metrics != nil {
		c.metrics.ObserveAPICall(operation, success, duration)
	}
	if c.recorder == nil {
		return
	}
	c.recorder.RecordAPICall(ctx, CallRecord{
		ClubID:     cfg.ClubID,
		Operation:  operation,
		Endpoint:   endpoint,
		StatusCode: status,
		Success:    success,
		Duration:   duration,
		Detail:     detail,
	})
}

func extractApprovalURL(links []link) string {
	for _, l := range links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
