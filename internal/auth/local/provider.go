package local

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danhigham/telegrame/internal/auth"
)

// providerClaims is the identity asserted by a sign-in provider.
type providerClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// verifyProviderToken checks an HS256 token issued by provider with the
// configured shared secret.
func verifyProviderToken(keys map[string][]byte, provider, token string, now func() time.Time) (providerClaims, error) {
	key, ok := keys[provider]
	if !ok || len(key) == 0 {
		return providerClaims{}, fmt.Errorf("%w: %q", auth.ErrUnknownProvider, provider)
	}

	var claims providerClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return providerClaims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return providerClaims{}, fmt.Errorf("%w: sub is required", auth.ErrInvalidToken)
	}
	return claims, nil
}
