package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"coursepay/internal/config"
)

// GatewayClient talks to the external payment provider. The provider is an
// opaque collaborator: we create a checkout session, hand the buyer its
// approval URL, and later learn the outcome through a webhook or by asking
// for the session status.
type GatewayClient interface {
	CreateCheckoutSession(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error)
	GetSessionStatus(ctx context.Context, sessionID string) (string, error)
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error
}

type CreateSessionRequest struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
	// where the gateway sends the buyer after approving payment
	SuccessURL string
	CancelURL  string
}

type CreateSessionResponse struct {
	SessionID  string
	SessionURL string
}

// Session statuses the gateway reports.
const (
	SessionStatusPaid   = "paid"
	SessionStatusFailed = "failed"
	SessionStatusOpen   = "open"
)

type gatewayClientImpl struct {
	httpClient   *http.Client
	baseApiURL   string
	clientID     string
	clientSecret string
	webhookID    string
}

func NewGatewayClient(cfg *config.Gateway) GatewayClient {
	return &gatewayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:   cfg.BaseApiURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		webhookID:    cfg.WebhookID,
	}
}

func (c *gatewayClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

type sessionLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type sessionResult struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Links  []sessionLink `json:"links"`
}

func (c *gatewayClientImpl) CreateCheckoutSession(ctx context.Context, sessionReq *CreateSessionRequest) (*CreateSessionResponse, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get gateway access token: %w", err)
	}

	payload := map[string]interface{}{
		"reference": sessionReq.Reference,
		"amount": map[string]string{
			"currency_code": sessionReq.Currency,
			"value":         sessionReq.Amount.StringFixed(2),
		},
		"application_context": map[string]string{
			"return_url": sessionReq.SuccessURL,
			"cancel_url": sessionReq.CancelURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/checkout/sessions",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway create session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(b))
	}

	var result sessionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	sessionURL := _extractApproveURL(result.Links)
	if sessionURL == "" {
		return nil, fmt.Errorf("gateway session %s has no approval link", result.ID)
	}

	return &CreateSessionResponse{
		SessionID:  result.ID,
		SessionURL: sessionURL,
	}, nil
}

func (c *gatewayClientImpl) GetSessionStatus(ctx context.Context, sessionID string) (string, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("get gateway access token: %w", err)
	}

	url := fmt.Sprintf("%s/v1/checkout/sessions/%s", c.baseApiURL, sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway session status request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf(
			"gateway session status failed: status=%d body=%s",
			resp.StatusCode,
			string(body),
		)
	}

	var result sessionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}

	return result.Status, nil
}

func (c *gatewayClientImpl) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get gateway access token: %w", err)
	}

	payload := map[string]interface{}{
		"webhook_id":      c.webhookID,
		"transmission_id": headers.Get("Gateway-Transmission-Id"),
		"signature":       headers.Get("Gateway-Signature"),
		"webhook_event":   json.RawMessage(body),
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal verify payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/notifications/verify-webhook-signature",
		bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway verify request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}

	if result.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("webhook signature verification failed: %s", result.VerificationStatus)
	}

	return nil
}

func _extractApproveURL(links []sessionLink) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
