package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tuanvumaihuynh/product-catalogue/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// JWTManager verifies HS256 bearer tokens and, for tooling and tests, signs them.
type JWTManager struct {
	secret     []byte
	issuer     string
	rolesClaim string
}

func NewJWTManager(cfg config.Auth) *JWTManager {
	return &JWTManager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		rolesClaim: cfg.RolesClaim,
	}
}

// Sign issues a token for subject carrying roles under the configured claim name.
func (m *JWTManager) Sign(subject string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        subject,
		"iat":        jwt.NewNumericDate(now),
		"nbf":        jwt.NewNumericDate(now),
		"exp":        jwt.NewNumericDate(now.Add(ttl)),
		m.rolesClaim: roles,
	}
	if m.issuer != "" {
		claims["iss"] = m.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns the identity it carries. Unknown role values are dropped.
func (m *JWTManager) Verify(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return Identity{
		Subject: subject,
		Roles:   rolesFromClaim(claims[m.rolesClaim]),
	}, nil
}

func rolesFromClaim(raw any) []Role {
	var values []string
	switch v := raw.(type) {
	case string:
		values = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	case []string:
		values = v
	}

	roles := make([]Role, 0, len(values))
	for _, v := range values {
		if role, ok := RoleFromClaim(v); ok {
			roles = append(roles, role)
		}
	}
	return roles
}
