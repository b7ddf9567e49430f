package policies

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeWebhookSignature returns the lowercase hex SHA-256 digest of the
// raw request body concatenated with the dealer signing secret. This single
// hash over rawBody||secret is the sole signing contract; no double-hash
// variant is accepted.
func ComputeWebhookSignature(rawBody []byte, secret string) string {
	digest := sha256.New()
	digest.Write(rawBody)
	digest.Write([]byte(secret))
	return hex.EncodeToString(digest.Sum(nil))
}

// VerifyWebhookSignature recomputes the signature over the exact wire bytes
// and compares it to the claimed signature in constant time. The comparison
// is case sensitive: the claimed signature must match the lowercase hex
// encoding byte for byte. Returns false instead of failing on malformed
// input so authentication can never degrade into a crash.
func VerifyWebhookSignature(rawBody []byte, claimedSignature string, secret string) bool {
	if secret == "" || claimedSignature == "" {
		return false
	}

	expected := ComputeWebhookSignature(rawBody, secret)
	return hmac.Equal([]byte(claimedSignature), []byte(expected))
}
