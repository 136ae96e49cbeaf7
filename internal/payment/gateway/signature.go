package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
)

// VerifySignature checks the checkout callback signature: HMAC-SHA256 of
// "order_id|payment_id" keyed with the API secret, hex encoded. An empty
// secret never verifies.
func VerifySignature(orderID, paymentID, signature, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return paymentdomain.ErrConfigMissing
	}
	if orderID == "" || paymentID == "" || signature == "" {
		return paymentdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}
