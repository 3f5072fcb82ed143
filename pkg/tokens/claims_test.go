package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func TestSign_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	tok, err := Sign(secret, KindAccess, "42", "", now, now.Add(15*time.Minute))
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.WithinDuration(t, now.Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestParse_RejectsWrongKind(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, err := Sign(secret, KindRefresh, "1", "jti", now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	assert.ErrorIs(t, err, ErrWrongKind)

	claims, err := RefreshClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "jti", claims.ID)
}

func TestParse_RejectsExpired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-2 * time.Hour)
	tok, err := Sign(secret, KindAccess, "1", "", past, past.Add(time.Minute))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParse_RejectsBadSignature(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, err := Sign(secret, KindAccess, "1", "", now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, []byte("other"))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	require.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(none, secret)
	require.Error(t, err)
}

func TestSign_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := Sign(nil, KindAccess, "1", "", time.Now(), time.Now().Add(time.Minute))
	assert.ErrorIs(t, err, ErrEmptySecret)
}
