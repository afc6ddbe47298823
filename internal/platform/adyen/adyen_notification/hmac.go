package adyen_notification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// SigningString builds the payload Adyen signs for a notification item.
func SigningString(item *NotificationRequestItem) string {
	return strings.Join([]string{
		item.PspReference,
		item.OriginalReference,
		item.MerchantAccountCode,
		item.MerchantReference,
		strconv.FormatInt(item.Amount.Value, 10),
		item.Amount.Currency,
		string(item.EventCode),
		item.Success,
	}, ":")
}

// DecodeHMACKey decodes the hex key shown in the Adyen Customer Area.
func DecodeHMACKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid hmac key: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("invalid hmac key: empty")
	}
	return key, nil
}

// CalculateHMAC returns the base64 HMAC-SHA256 signature for item.
func CalculateHMAC(item *NotificationRequestItem, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(SigningString(item)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidHMAC compares the item's signature with the expected one in constant time.
func ValidHMAC(item *NotificationRequestItem, key []byte) bool {
	got := item.Signature()
	if got == "" {
		return false
	}
	return hmac.Equal([]byte(got), []byte(CalculateHMAC(item, key)))
}
