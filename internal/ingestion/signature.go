package ingestion

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"foodcourt/internal/core/domain/model/order"
)

// ErrInvalidSignature is returned when a webhook signature does not match the
// platform's shared secret. Handlers map it to 401.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// SignatureVerifier checks webhook authenticity. Every supported platform
// signs the raw request body with HMAC-SHA256 over a shared secret and sends
// the hex digest in a header.
type SignatureVerifier struct {
	secrets map[order.Platform][]byte
}

// NewSignatureVerifier creates a verifier with per-platform secrets.
func NewSignatureVerifier(secrets map[order.Platform]string) *SignatureVerifier {
	indexed := make(map[order.Platform][]byte, len(secrets))
	for platform, secret := range secrets {
		indexed[platform] = []byte(secret)
	}
	return &SignatureVerifier{secrets: indexed}
}

// Verify checks the hex-encoded HMAC-SHA256 signature of rawBody. The compare
// is constant-time. A platform without a configured secret rejects everything:
// failing closed beats silently accepting unsigned traffic.
func (v *SignatureVerifier) Verify(platform order.Platform, rawBody []byte, signature string) error {
	secret, ok := v.secrets[platform]
	if !ok {
		return fmt.Errorf("%w: no secret configured for %s", ErrInvalidSignature, platform)
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not hex", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(rawBody)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 digest of rawBody with the given secret.
// Used by tests and by local tooling that replays captured webhooks.
func Sign(secret string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
