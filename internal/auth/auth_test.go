package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industry-console/internal/auth"
)

const secret = "test-secret"

func TestAccessTokenExpiry(t *testing.T) {
	tok, err := auth.MakeToken("test-uid", "Tess", secret)
	require.NoError(t, err)

	claims, err := auth.ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "test-uid", claims.UserID)
	assert.Equal(t, "Tess", claims.Name)

	// ~15 min from now
	diff := time.Until(claims.ExpiresAt.Time)
	assert.True(t, diff > 14*time.Minute && diff <= 15*time.Minute, "got %v", diff)
}

func TestAlgorithmConfusion(t *testing.T) {
	tok, _ := auth.MakeToken("uid", "", secret)
	_, err := auth.ParseToken(tok, secret)
	require.NoError(t, err)

	_, err = auth.ParseToken(tok, "wrong-secret")
	assert.Error(t, err)

	_, err = auth.ParseToken("not.a.token", secret)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{UserID: "uid"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.ParseToken(raw, secret)
	assert.Error(t, err)
}

func TestForeignIssuerRejected(t *testing.T) {
	c := auth.Claims{
		UserID: "uid",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = auth.ParseToken(raw, secret)
	assert.Error(t, err)
}

func TestRefreshTokenGeneration(t *testing.T) {
	raw, hash, err := auth.GenerateRefreshToken()
	require.NoError(t, err)
	assert.Len(t, raw, 43) // 32 bytes, unpadded base64url
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, auth.HashRefreshToken(raw))

	other, _, err := auth.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestOtherHMACAndMissingExpiryRejected(t *testing.T) {
	c := auth.Claims{
		UserID: "uid",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = auth.ParseToken(raw, secret)
	assert.Error(t, err, "only HS256 is accepted")

	c.ExpiresAt = nil
	raw, err = jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = auth.ParseToken(raw, secret)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	h, err := auth.HashPassword("testpass123")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(h, "testpass123"))
	assert.False(t, auth.CheckPassword(h, "wrong"))
}
