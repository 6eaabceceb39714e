package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundtrip(t *testing.T) {
	issuer := TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour}

	tok, err := issuer.Issue("user-1", "sess-1", time.Now())
	require.NoError(t, err)

	userID, sessionID, err := issuer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "sess-1", sessionID)
}

func TestParseExpiredToken(t *testing.T) {
	issuer := TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour}

	tok, err := issuer.Issue("user-1", "sess-1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, _, err = issuer.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseWrongSecret(t *testing.T) {
	issuer := TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour}
	other := TokenIssuer{Secret: []byte("different-secret"), TTL: time.Hour}

	tok, err := issuer.Issue("user-1", "sess-1", time.Now())
	require.NoError(t, err)

	_, _, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	issuer := TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour}

	_, _, err := issuer.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
