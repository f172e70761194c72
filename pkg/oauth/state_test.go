package oauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateSigner_RoundTrip(t *testing.T) {
	signer := NewStateSigner("test-secret", time.Minute)

	state, err := signer.Sign(42, "/mail?connected=1")
	assert.NoError(t, err)
	assert.NotEmpty(t, state)

	claims, err := signer.Verify(state)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserId)
	assert.Equal(t, "/mail?connected=1", claims.RedirectURL)
}

func TestStateSigner_TamperedSignature(t *testing.T) {
	signer := NewStateSigner("test-secret", time.Minute)

	state, err := signer.Sign(42, "")
	assert.NoError(t, err)

	_, err = signer.Verify(state + "x")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateSigner_WrongSecret(t *testing.T) {
	signer := NewStateSigner("test-secret", time.Minute)
	other := NewStateSigner("other-secret", time.Minute)

	state, err := signer.Sign(42, "")
	assert.NoError(t, err)

	_, err = other.Verify(state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateSigner_Expired(t *testing.T) {
	signer := NewStateSigner("test-secret", -time.Minute)

	state, err := signer.Sign(42, "")
	assert.NoError(t, err)

	_, err = signer.Verify(state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateSigner_Garbage(t *testing.T) {
	signer := NewStateSigner("test-secret", 0)

	_, err := signer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidState)
}
