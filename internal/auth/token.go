package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/userhub/userhub/internal/platform/httpx"
)

// Token verification failures. All wrap httpx.ErrInvalidToken or
// httpx.ErrExpiredToken so handlers map them to 401 uniformly.
var (
	ErrTokenMalformed = fmt.Errorf("%w: malformed", httpx.ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: signature invalid", httpx.ErrInvalidToken)
	ErrTokenExpired   = httpx.ErrExpiredToken
)

// TokenService issues and verifies signed bearer tokens. Tokens are stateless;
// expiry is the only invalidation mechanism.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a TokenService with the given signing secret and
// token lifetime.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue creates an HS256-signed token carrying the user identity and expiry.
func (t *TokenService) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry and returns the user identity
// it carries.
func (t *TokenService) Verify(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, ErrTokenSignature
		default:
			return uuid.Nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return uuid.Nil, ErrTokenMalformed
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}
	return userID, nil
}
