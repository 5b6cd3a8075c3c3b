package line

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	body := []byte(`{"events":[]}`)
	sig := Sign("secret", body)

	assert.True(t, VerifySignature("secret", body, sig))
}

func TestVerifySignatureRejects(t *testing.T) {
	body := []byte(`{"events":[]}`)
	sig := Sign("secret", body)

	assert.False(t, VerifySignature("other-secret", body, sig), "wrong secret")
	assert.False(t, VerifySignature("secret", []byte(`{"events":[1]}`), sig), "tampered body")
	assert.False(t, VerifySignature("secret", body, ""), "empty signature")
	assert.False(t, VerifySignature("", body, sig), "empty secret")
	assert.False(t, VerifySignature("secret", body, "not-base64!!"), "invalid encoding")
}
