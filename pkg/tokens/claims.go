package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var (
	ErrUnexpectedSignMethod = errors.New("unexpected sign method")
	ErrWrongKind            = errors.New("unexpected token kind")
	ErrEmptySecret          = errors.New("signing secret is empty")
)

type Claims struct {
	Kind string `json:"typ"`
	jwt.RegisteredClaims
}

// Sign produces an HS256 token for the subject. Refresh tokens get a jti so
// that two tokens issued within the same second never collide.
func Sign(secret []byte, kind, subject, jti string, issuedAt, expiresAt time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func Parse(tokenStr string, secret []byte, kind string, opts ...jwt.ParserOption) (*Claims, error) {
	var claims Claims
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrUnexpectedSignMethod
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	return &claims, nil
}

func AccessClaimsFromToken(tokenStr string, accessSecret []byte, opts ...jwt.ParserOption) (*Claims, error) {
	return Parse(tokenStr, accessSecret, KindAccess, opts...)
}

func RefreshClaimsFromToken(tokenStr string, refreshSecret []byte, opts ...jwt.ParserOption) (*Claims, error) {
	return Parse(tokenStr, refreshSecret, KindRefresh, opts...)
}
