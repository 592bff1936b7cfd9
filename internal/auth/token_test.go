package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuerRoundTrip(t *testing.T) {
	i := NewIssuer("secret", time.Hour)
	token, err := i.Issue("U1", "admin")
	require.NoError(t, err)

	claims, err := i.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "U1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestIssuerRejectsForeignSecret(t *testing.T) {
	token, err := NewIssuer("a", time.Hour).Issue("U1", "member")
	require.NoError(t, err)

	_, err = NewIssuer("b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRejectsExpired(t *testing.T) {
	i := NewIssuer("secret", time.Minute)
	i.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := i.Issue("U1", "member")
	require.NoError(t, err)

	_, err = i.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
