// Package events processes inbound webhook events from the payment gateway
// and publishes outbound settlement events through the outbox.
package events

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// VerifySignature checks the HMAC-SHA512 hex signature computed over the raw
// request body. Verification happens before any parsing so malformed payloads
// with bad signatures are rejected for the signature, not the shape.
func VerifySignature(secret, body []byte, signature string) error {
	if signature == "" {
		return shared.E(shared.KindInvalidSignature, "missing webhook signature")
	}

	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return shared.E(shared.KindInvalidSignature, "webhook signature mismatch")
	}
	return nil
}
