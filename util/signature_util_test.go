// util/signature_util_test.go
package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1","type":"checkout.completed"}`)

	t.Run("MatchingSignature", func(t *testing.T) {
		sig := SignPayload(secret, body)
		assert.True(t, VerifySignature(secret, body, sig))
	})

	t.Run("WrongSecret", func(t *testing.T) {
		sig := SignPayload("other-secret", body)
		assert.False(t, VerifySignature(secret, body, sig))
	})

	t.Run("TamperedBody", func(t *testing.T) {
		sig := SignPayload(secret, body)
		assert.False(t, VerifySignature(secret, []byte(`{"id":"evt_2"}`), sig))
	})

	t.Run("EmptySignature", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, body, ""))
	})
}
