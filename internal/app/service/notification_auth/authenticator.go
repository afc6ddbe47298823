// Package notification_auth verifies that an inbound webhook call comes from
// Adyen: HTTP Basic credentials on the request and an HMAC signature on every
// notification item.
package notification_auth

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/adyen-bridge/internal/platform/adyen/adyen_notification"
	"github.com/fatflowers/adyen-bridge/pkg/apperr"
	"github.com/fatflowers/adyen-bridge/pkg/config"
)

// AccessDenied is the only message an unauthenticated caller ever sees.
const AccessDenied = "Access Denied!"

type Authenticator struct {
	user     []byte
	password []byte
	hmacKey  []byte
	skipHMAC bool
}

func New(cfg *config.Config, log *zap.SugaredLogger) (*Authenticator, error) {
	a := &Authenticator{
		user:     []byte(cfg.Webhook.User),
		password: []byte(cfg.Webhook.Password),
		skipHMAC: cfg.Webhook.SkipHMAC,
	}
	if !a.skipHMAC {
		key, err := adyen_notification.DecodeHMACKey(cfg.Webhook.HMACKey)
		if err != nil {
			return nil, err
		}
		a.hmacKey = key
	} else {
		log.Warnw("webhook hmac verification disabled", "setting", "webhook.skip_hmac")
	}
	return a, nil
}

// HMACEnabled reports whether item signatures are checked.
func (a *Authenticator) HMACEnabled() bool { return !a.skipHMAC }

// VerifyBasic checks an Authorization header against the configured webhook
// credentials.
func (a *Authenticator) VerifyBasic(header string) error {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return apperr.Auth(AccessDenied)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return apperr.Auth(AccessDenied)
	}
	user, pass, ok := strings.Cut(string(raw), ":")
	if !ok {
		return apperr.Auth(AccessDenied)
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), a.user) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), a.password) == 1
	if !userOK || !passOK {
		return apperr.Auth(AccessDenied)
	}
	return nil
}

// VerifyHMAC checks the signature of every item in req. It passes when HMAC
// verification is switched off.
func (a *Authenticator) VerifyHMAC(req *adyen_notification.NotificationRequest) error {
	if req == nil || len(req.NotificationItems) == 0 {
		return apperr.Parse("notification contains no items", nil)
	}
	if !a.HMACEnabled() {
		return nil
	}
	for _, item := range req.Items() {
		if !adyen_notification.ValidHMAC(item, a.hmacKey) {
			return apperr.Auth(AccessDenied)
		}
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(New),
)
