// Package auth defines the authentication backend used by the account
// use cases.
package auth

import (
	"context"
	"errors"

	"github.com/danhigham/telegrame/internal/domain"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

var (
	ErrInvalidCredentials = errors.New("the email or password is incorrect")
	ErrEmailInUse         = errors.New("the email address is already in use by another account")
	ErrUserNotFound       = errors.New("there is no user record corresponding to this email")
	ErrNotSignedIn        = errors.New("no user is signed in")
	ErrUnknownProvider    = errors.New("unknown sign-in provider")
	ErrInvalidToken       = errors.New("the provider credential is malformed or has expired")

	// ErrCancelled is returned when the user abandons a provider sign-in.
	// It is never shown as an error.
	ErrCancelled = errors.New("sign-in cancelled")
)

// Authenticator manages accounts and the signed-in session.
type Authenticator interface {
	CreateAccount(ctx context.Context, email, password string) (domain.Account, error)
	SignIn(ctx context.Context, email, password string) (domain.Account, error)
	// SignInWithProvider exchanges a provider-issued token for an account,
	// creating one on first use. An empty token means the user cancelled.
	SignInWithProvider(ctx context.Context, provider, token string) (domain.Account, error)
	SendPasswordReset(ctx context.Context, email string) error
	DeleteCurrentUser(ctx context.Context) error
	SignOut() error
	CurrentUser() (domain.Account, bool)
}
