package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return NewIssuer("test-secret", "loanledger", "loanledger-clients", time.Hour)
}

func TestIssueAndValidate(t *testing.T) {
	iss := newTestIssuer()

	token, expiresAt, err := iss.IssueToken(Subject{UserID: 42, Username: "alice", Role: "Manager"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := iss.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Manager", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "loanledger", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejectsExpired(t *testing.T) {
	iss := newTestIssuer()
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := iss.IssueToken(Subject{UserID: 1, Username: "bob", Role: "User"})
	require.NoError(t, err)

	_, err = newTestIssuer().ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := NewIssuer("other-secret", "loanledger", "loanledger-clients", time.Hour).
		IssueToken(Subject{UserID: 1, Username: "bob", Role: "Admin"})
	require.NoError(t, err)

	_, err = newTestIssuer().ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsIssuerAndAudienceMismatch(t *testing.T) {
	sub := Subject{UserID: 1, Username: "bob", Role: "User"}

	token, _, err := NewIssuer("test-secret", "someone-else", "loanledger-clients", time.Hour).IssueToken(sub)
	require.NoError(t, err)
	_, err = newTestIssuer().ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	token, _, err = NewIssuer("test-secret", "loanledger", "other-audience", time.Hour).IssueToken(sub)
	require.NoError(t, err)
	_, err = newTestIssuer().ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   "Admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "loanledger",
			Audience:  jwt.ClaimStrings{"loanledger-clients"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestIssuer().ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := newTestIssuer().ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
