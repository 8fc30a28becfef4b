// internal/domain/payment/service_test.go
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signedPayload(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	s := &Service{keySecret: "test-secret"}

	sig := signedPayload("test-secret", "gw_order_1", "gw_pay_1")
	assert.True(t, s.verifySignature("gw_order_1", "gw_pay_1", sig))

	// wrong payment id
	assert.False(t, s.verifySignature("gw_order_1", "gw_pay_2", sig))

	// signed with a different secret
	other := signedPayload("other-secret", "gw_order_1", "gw_pay_1")
	assert.False(t, s.verifySignature("gw_order_1", "gw_pay_1", other))

	// malformed hex
	assert.False(t, s.verifySignature("gw_order_1", "gw_pay_1", "not-hex"))
}
