package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "X-Razorpay-Signature"

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw request body. Empty secrets or signatures never verify.
func VerifyWebhookSignature(raw []byte, signature, secret string) bool {
	return verify(raw, signature, secret)
}

// PaymentProof is the message a checkout callback signature covers.
func PaymentProof(orderID, paymentID string) []byte {
	return []byte(orderID + "|" + paymentID)
}

// VerifyPaymentSignature checks a client checkout callback. keySecret is the
// API key secret, not the webhook secret.
func VerifyPaymentSignature(orderID, paymentID, signature, keySecret string) bool {
	if orderID == "" || paymentID == "" {
		return false
	}
	return verify(PaymentProof(orderID, paymentID), signature, keySecret)
}

func verify(payload []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
