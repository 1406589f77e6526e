package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-waitlist-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the verification-token payload: the subject email plus the
// issued-at and expiry timestamps. The payload is plain base64url(JSON); the
// HS256 signature is what stops anyone from minting a token for an arbitrary
// address or expiry.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 verification tokens.
type Provider struct {
	key []byte
	ttl time.Duration
}

// NewProvider builds a token provider from the signing key and validity
// window. The key must be non-empty; tokens signed with one key are
// unverifiable after a key rotation, which simply forces a fresh signup.
func NewProvider(signingKey string, ttl time.Duration) (*Provider, error) {
	if signingKey == "" {
		return nil, errors.New("token signing key is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Provider{key: []byte(signingKey), ttl: ttl}, nil
}

// Sign issues a self-contained verification token for the given normalized
// email, valid for the configured TTL from now.
func (p *Provider) Sign(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
}

// Verify decodes and validates a token string. Expired tokens map to
// domain.ErrTokenExpired; every other failure (bad base64, bad signature,
// wrong algorithm, missing email) maps to domain.ErrMalformedToken, so the
// expiry check always happens before any store lookup.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("verification link expired: %w", domain.ErrTokenExpired)
		}
		return nil, fmt.Errorf("decode verification token: %w", domain.ErrMalformedToken)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return nil, fmt.Errorf("incomplete verification token: %w", domain.ErrMalformedToken)
	}
	return claims, nil
}
