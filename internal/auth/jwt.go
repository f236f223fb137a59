package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Mann-lohchab/Portal/internal/model"
)

// Token verification failures, classified for callers. Expired and
// signature-invalid tokens are structurally sound; everything else is
// malformed.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
)

type Claims struct {
	InternalID string     `json:"id"`
	ExternalID string     `json:"external_id"`
	Role       model.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewAccessToken signs the claim set with the process-wide secret. The
// issue time is supplied by the caller so it lines up exactly with the
// session state recorded for the same login. The token's own expiry is
// independent of the server-side session expiry; both are checked on every
// authenticated request.
func NewAccessToken(secret, issuer string, issuedAt time.Time, ttl time.Duration, claims Claims) (string, error) {
	issuedAt = issuedAt.UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.InternalID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature, issuer, and expiry, and returns the claims.
// It is pure: callers needing "is this session currently valid server-side"
// must separately consult the principal's session state.
func ParseToken(secret, issuer, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, classify(err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if !claims.Role.Valid() {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignatureInvalid
	default:
		return ErrTokenMalformed
	}
}
