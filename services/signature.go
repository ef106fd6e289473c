package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks a GitHub webhook signature against the raw request
// body. The signature header carries "sha256=<hex hmac>" computed over the
// exact bytes the sender transmitted, so callers must pass the body before
// any parsing or re-serialization. Returns false for an absent, malformed or
// mismatched signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	// constant-time compare to resist timing side-channels
	return hmac.Equal([]byte(signature), []byte(expected))
}
