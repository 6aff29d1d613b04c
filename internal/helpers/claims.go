package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"

	tokenIssuer = "eventhub"
)

// Claims identify the caller. Subject is the registration number for users
// and the admin username for the admin.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c *Claims) HasRole(role string) bool {
	return c.Role == role
}

// RegNumber is the registration number of a user token.
func (c *Claims) RegNumber() string {
	if c.IsAdmin() {
		return ""
	}
	return c.Subject
}

// TokenIssuer signs HS256 tokens and verifies them through a given-key JWKS.
type TokenIssuer struct {
	kid    string
	secret []byte
	ttl    time.Duration
	jwks   *keyfunc.JWKS
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	kid := uuid.NewString()
	jwks := keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		kid: keyfunc.NewGivenHMAC([]byte(secret), keyfunc.GivenKeyOptions{Algorithm: "HS256"}),
	})
	return &TokenIssuer{kid: kid, secret: []byte(secret), ttl: ttl, jwks: jwks}, nil
}

func (ti *TokenIssuer) Issue(subject, role, name string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = ti.kid
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, nil
}

func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

func (ti *TokenIssuer) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, ti.jwks.Keyfunc, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}
