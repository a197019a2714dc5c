package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignatureAcceptsValid(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	header := Sign("s3cret", body)
	require.NoError(t, VerifySignature("s3cret", body, header))
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	header := Sign("s3cret", body)
	err := VerifySignature("s3cret", []byte(`{"action":"closed"}`), header)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	body := []byte(`{}`)
	header := Sign("other", body)
	assert.ErrorIs(t, VerifySignature("s3cret", body, header), ErrBadSignature)
}

func TestVerifySignatureRejectsMissingHeader(t *testing.T) {
	assert.ErrorIs(t, VerifySignature("s3cret", []byte(`{}`), ""), ErrMissingSignature)
	assert.ErrorIs(t, VerifySignature("s3cret", []byte(`{}`), "   "), ErrMissingSignature)
}

func TestVerifySignatureRejectsWrongScheme(t *testing.T) {
	assert.ErrorIs(t, VerifySignature("s3cret", []byte(`{}`), "sha1=deadbeef"), ErrBadSignature)
}
