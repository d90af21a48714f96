package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid. Expiry is
// the only cancellation mechanism; there is no revocation list.
const DefaultTokenTTL = 30 * 24 * time.Hour

// ErrInvalidToken is returned for any token that fails verification,
// whether the signature, the expiry, or the claims are at fault. No
// finer-grained cause is exposed to callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService issues and verifies the bearer tokens that prove a
// user's identity. Tokens are HS256-signed JWTs carrying the user ID
// as the subject and an absolute expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService constructs a TokenService signing with the given
// secret. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue returns a signed token identifying the given user, valid from
// now until now plus the service's TTL.
func (s *TokenService) Issue(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token's signature and expiry and returns the user
// ID it was issued to. Every failure mode collapses to ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
