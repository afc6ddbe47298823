// Package session opens Adyen Checkout sessions for the storefront Drop-in.
package session

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_checkout"
	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_notification"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	"github.com/fatflowers/adyen-bridge/pkg/config"
	"github.com/fatflowers/adyen-bridge/pkg/currency"
	"github.com/fatflowers/adyen-bridge/pkg/logctx"
	"github.com/fatflowers/adyen-bridge/pkg/tool"
)

const returnPath = "/checkout/redirect"

// CheckoutClient is the part of the Adyen Checkout API this service calls.
type CheckoutClient interface {
	CreateSession(ctx context.Context, req *adyen_checkout.CreateSessionRequest) (adyen_checkout.Session, error)
}

type Amount struct {
	// Value is in minor units of Currency.
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

type CreateSessionRequest struct {
	Amount      Amount `json:"amount"`
	CountryCode string `json:"countryCode,omitempty"`
}

type Service struct {
	client          CheckoutClient
	merchantAccount string
	clientKey       string
	environment     string
	returnURL       string
	log             *zap.SugaredLogger
}

func NewService(client CheckoutClient, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{
		client:          client,
		merchantAccount: cfg.Adyen.MerchantAccount,
		clientKey:       cfg.Adyen.ClientKey,
		environment:     strings.ToLower(cfg.Adyen.Environment),
		returnURL:       strings.TrimRight(cfg.HostURL, "/") + returnPath,
		log:             log,
	}
}

// CreateSession returns the session payload for the Drop-in together with the
// generated order reference.
func (s *Service) CreateSession(ctx context.Context, customerID string, req *CreateSessionRequest) (adyen_checkout.Session, string, error) {
	if req == nil || req.Amount.Currency == "" {
		return nil, "", apperr.Validation("amount currency is required", map[string]string{"amount.currency": "required"})
	}
	if !currency.IsSupported(req.Amount.Currency) {
		return nil, "", apperr.Validation("invalid currency: "+req.Amount.Currency, map[string]string{"amount.currency": "unsupported"})
	}
	if req.Amount.Value <= 0 {
		return nil, "", apperr.Validation("amount value must be positive", map[string]string{"amount.value": "invalid"})
	}

	reference := tool.NewID()
	lg := logctx.FromCtx(ctx, s.log).With("reference", reference, "customer_id", customerID)

	session, err := s.client.CreateSession(ctx, &adyen_checkout.CreateSessionRequest{
		Amount:           adyen_notification.Amount{Value: req.Amount.Value, Currency: strings.ToUpper(req.Amount.Currency)},
		MerchantAccount:  s.merchantAccount,
		Reference:        reference,
		ReturnURL:        s.returnURL,
		CountryCode:      req.CountryCode,
		ShopperReference: customerID,
		Channel:          "Web",
	})
	if err != nil {
		var apiErr *adyen_checkout.APIError
		if errors.As(err, &apiErr) {
			lg.Warnw("adyen_session_rejected", "status", apiErr.StatusCode, "error_code", apiErr.ErrorCode)
			return nil, "", apperr.Upstream(apiErr.Message, apiErr.StatusCode, apiErr)
		}
		lg.Errorw("adyen_session_failed", "error", err.Error())
		return nil, "", apperr.Wrap(err)
	}

	session["clientKey"] = s.clientKey
	session["environment"] = s.environment
	lg.Infow("adyen_session_created", "session_id", session["id"])
	return session, reference, nil
}

func newCheckoutClient(cfg *config.Config) (CheckoutClient, error) {
	return adyen_checkout.NewClient(adyen_checkout.ClientOptions{
		APIKey:        cfg.Adyen.APIKey,
		Environment:   cfg.Adyen.Environment,
		LiveURLPrefix: cfg.Adyen.LiveURLPrefix,
	})
}

var Module = fx.Options(
	fx.Provide(newCheckoutClient),
	fx.Provide(NewService),
)
