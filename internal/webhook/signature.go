package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrMissingSignature = errors.New("webhook: missing signature header")
	ErrBadSignature     = errors.New("webhook: signature mismatch")
)

// SignatureHeader is the GitHub HMAC-SHA256 delivery signature header.
const SignatureHeader = "X-Hub-Signature-256"

// Sign computes the expected signature header value for a payload.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks an X-Hub-Signature-256 value against the payload.
func VerifySignature(secret string, body []byte, header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingSignature
	}
	if !strings.HasPrefix(header, "sha256=") {
		return ErrBadSignature
	}
	expected := Sign(secret, body)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(header)) != 1 {
		return ErrBadSignature
	}
	return nil
}
