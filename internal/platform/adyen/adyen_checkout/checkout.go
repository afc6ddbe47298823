package adyen_checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_notification"
)

const (
	APIVersion = "v71"

	EnvironmentTest = "TEST"
	EnvironmentLive = "LIVE"

	testEndpoint = "https://checkout-test.adyen.com"
	// live endpoints are merchant specific and built from the account's URL prefix.
	liveEndpointFormat = "https://%s-checkout-live.adyenpayments.com/checkout"
)

type ClientOptions struct {
	APIKey        string
	Environment   string
	LiveURLPrefix string
	// BaseURL overrides the endpoint derived from Environment.
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Adyen Checkout API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("adyen api key is empty")
	}
	base := opts.BaseURL
	if base == "" {
		switch strings.ToUpper(opts.Environment) {
		case EnvironmentTest:
			base = testEndpoint
		case EnvironmentLive:
			if opts.LiveURLPrefix == "" {
				return nil, fmt.Errorf("live url prefix is required for the live environment")
			}
			base = fmt.Sprintf(liveEndpointFormat, opts.LiveURLPrefix)
		default:
			return nil, fmt.Errorf("unknown adyen environment: %q", opts.Environment)
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     opts.APIKey,
	}, nil
}

type CreateSessionRequest struct {
	Amount           adyen_notification.Amount `json:"amount"`
	MerchantAccount  string                    `json:"merchantAccount"`
	Reference        string                    `json:"reference"`
	ReturnURL        string                    `json:"returnUrl"`
	CountryCode      string                    `json:"countryCode,omitempty"`
	ShopperReference string                    `json:"shopperReference,omitempty"`
	Channel          string                    `json:"channel,omitempty"`
}

// Session is the raw Adyen session response; the storefront passes it to the Drop-in untouched.
type Session map[string]any

// APIError is returned for non-2xx responses from Adyen.
type APIError struct {
	StatusCode int    `json:"status"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
	ErrorType  string `json:"errorType"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("adyen api error: status=%d code=%s message=%s", e.StatusCode, e.ErrorCode, e.Message)
}

// CreateSession opens a Checkout session for the given amount.
func (c *Client) CreateSession(ctx context.Context, req *CreateSessionRequest) (Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+APIVersion+"/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)
	// Adyen deduplicates retries carrying the same key.
	httpReq.Header.Set("Idempotency-Key", req.Reference)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call adyen sessions: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read adyen response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		apiErr.StatusCode = resp.StatusCode
		return nil, apiErr
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode adyen session: %w", err)
	}
	return session, nil
}
