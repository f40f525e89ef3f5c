package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("machine secret"), []byte("stable-salt-0001"))
	require.Len(t, key, 32)

	sealed, err := Seal([]byte("session-token-value"), key)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "session-token-value")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("session-token-value"), plain)
}

func TestOpen_WrongKeyFails(t *testing.T) {
	key := DeriveKey([]byte("machine secret"), []byte("stable-salt-0001"))
	other := DeriveKey([]byte("different"), []byte("stable-salt-0001"))

	sealed, err := Seal([]byte("payload"), key)
	require.NoError(t, err)

	_, err = Open(sealed, other)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestOpen_TruncatedCiphertext(t *testing.T) {
	key := DeriveKey([]byte("machine secret"), []byte("stable-salt-0001"))

	_, err := Open([]byte("short"), key)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDeriveKey_Deterministic(t *testing.T) {
	a := DeriveKey([]byte("s"), []byte("salt"))
	b := DeriveKey([]byte("s"), []byte("salt"))
	c := DeriveKey([]byte("s"), []byte("other"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
