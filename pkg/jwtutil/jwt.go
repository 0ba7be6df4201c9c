// Package jwtutil issues and verifies the signed bearer tokens that carry
// a caller's identity and tenant affiliation across requests.
package jwtutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GBurchell27/Dynamic-subdomains/pkg/config"
)

var (
	// ErrInvalidToken covers bad signatures, malformed structure, and
	// unexpected signing algorithms.
	ErrInvalidToken = errors.New("jwtutil: invalid token")
	// ErrTokenExpired is returned when the token's expiry has passed.
	ErrTokenExpired = errors.New("jwtutil: token expired")
)

// Claims are the verified contents of an access token. TenantID and Role
// are only present for tenant-affiliated users; admin tokens carry neither.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWT signs and verifies access tokens with a symmetric key. Safe for
// concurrent use.
type JWT struct {
	signingKey []byte
	expiration time.Duration
}

// New creates a token codec from the JWT configuration section.
func New(cfg *config.JWTConfig) *JWT {
	return &JWT{
		signingKey: []byte(cfg.SigningKey),
		expiration: cfg.Expiration,
	}
}

// IssueOption customizes a token at issue time.
type IssueOption func(*Claims)

// WithTenant adds a tenant affiliation claim.
func WithTenant(tenantID string) IssueOption {
	return func(c *Claims) { c.TenantID = tenantID }
}

// WithRole adds a role claim.
func WithRole(role string) IssueOption {
	return func(c *Claims) { c.Role = role }
}

// WithTTL overrides the configured validity window.
func WithTTL(ttl time.Duration) IssueOption {
	return func(c *Claims) {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
}

// Issue creates a signed HS256 token for the subject, expiring after the
// configured validity window unless overridden with WithTTL.
func (j *JWT) Issue(subject string, opts ...IssueOption) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiration)),
		},
	}

	for _, opt := range opts {
		opt(claims)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.signingKey)
}

// Verify parses and validates a token. No claim is trusted unless the
// signature checks out first; expired tokens fail with ErrTokenExpired,
// everything else with ErrInvalidToken.
func (j *JWT) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return j.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
