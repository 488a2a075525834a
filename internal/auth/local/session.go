package local

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTTL = 30 * 24 * time.Hour

type sessionClaims struct {
	jwt.RegisteredClaims
}

// sessionFile persists the signed-in account as an HS256 token.
type sessionFile struct {
	path   string
	secret []byte
	now    func() time.Time
}

// loadSessionSecret returns secret, or the contents of the key file next to
// the session, generating one on first use.
func loadSessionSecret(sessionPath string, secret []byte) ([]byte, error) {
	if len(secret) > 0 {
		return secret, nil
	}
	keyPath := filepath.Join(filepath.Dir(sessionPath), "session.key")
	key, err := os.ReadFile(keyPath)
	if err == nil && len(key) >= 32 {
		return key, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read session key: %w", err)
	}

	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0o600); err != nil {
		return nil, fmt.Errorf("write session key: %w", err)
	}
	return key, nil
}

func (s sessionFile) save(accountID string) error {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(s.path, []byte(signed), 0o600)
}

// load returns the account id of a stored, valid session, or "".
func (s sessionFile) load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(string(data), &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("parse session: %w", err)
	}
	return claims.Subject, nil
}

func (s sessionFile) clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
