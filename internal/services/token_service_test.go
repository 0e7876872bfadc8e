package services_test

import (
	"strings"
	"testing"
	"time"

	"eartalk/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndValidate(t *testing.T) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)

	tokenString, err := tokens.IssueAccessToken(42)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	userID, err := tokens.Validate(tokenString)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	// The token is HS256 with the id as subject.
	parsed, _, err := new(jwt.Parser).ParseUnverified(tokenString, &jwt.StandardClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Method.Alg())
	assert.Equal(t, "42", parsed.Claims.(*jwt.StandardClaims).Subject)
}

func TestTokenService_Expired(t *testing.T) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)

	tokenString, err := tokens.Issue(1, -time.Minute)
	require.NoError(t, err)

	_, err = tokens.Validate(tokenString)
	assert.ErrorIs(t, err, services.ErrTokenExpired)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := services.NewTokenService("secret-a", time.Hour)
	verifier := services.NewTokenService("secret-b", time.Hour)

	tokenString, err := issuer.IssueAccessToken(1)
	require.NoError(t, err)

	_, err = verifier.Validate(tokenString)
	assert.ErrorIs(t, err, services.ErrTokenSignatureInvalid)
}

func TestTokenService_Tampered(t *testing.T) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)
	other, err := tokens.IssueAccessToken(2)
	require.NoError(t, err)
	mine, err := tokens.IssueAccessToken(1)
	require.NoError(t, err)

	// Swap the payload of one token into the other.
	a, b := strings.Split(mine, "."), strings.Split(other, ".")
	forged := a[0] + "." + b[1] + "." + a[2]

	_, err = tokens.Validate(forged)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestTokenService_Malformed(t *testing.T) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)

	for _, in := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tokens.Validate(in)
		assert.ErrorIs(t, err, services.ErrUnauthenticated, in)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.StandardClaims{Subject: "1", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Validate(tokenString)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestTokenService_RejectsMissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()})
	tokenString, err := token.SignedString([]byte("test_jwt_secret"))
	require.NoError(t, err)

	_, err = services.NewTokenService("test_jwt_secret", time.Hour).Validate(tokenString)
	assert.ErrorIs(t, err, services.ErrTokenMalformed)
}
