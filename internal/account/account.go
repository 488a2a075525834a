// Package account implements the sign-up, sign-in and profile use cases on
// top of the auth backend, the user directory and the avatar store.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rivo/uniseg"
	"go.uber.org/zap"

	"github.com/danhigham/telegrame/internal/auth"
	"github.com/danhigham/telegrame/internal/avatar"
	"github.com/danhigham/telegrame/internal/blob"
	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/domain"
)

// ResetSentMessage is shown after a password reset was requested.
const ResetSentMessage = "We have sent you email"

// Destination is where the app goes after a provider sign-in.
type Destination int

const (
	ToMain Destination = iota
	ToProfileSetup
)

// Avatars stores profile images.
type Avatars interface {
	Get(ctx context.Context, userID string) ([]byte, error)
	Put(ctx context.Context, userID string, img []byte) (string, error)
	Forget(ctx context.Context, userID string) error
}

// Profile is a directory record with its picture.
type Profile struct {
	User  domain.User
	Image []byte
}

// Service runs the account use cases.
type Service struct {
	auth    auth.Authenticator
	dir     directory.Directory
	avatars Avatars
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(a auth.Authenticator, dir directory.Directory, avatars Avatars, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		auth:    a,
		dir:     dir,
		avatars: avatars,
		now:     time.Now,
		logger:  logger.Named("account"),
	}
}

// Message returns the text to show for err, or "" when nothing should be
// shown.
func Message(err error) string {
	if err == nil || errors.Is(err, auth.ErrCancelled) || errors.Is(err, context.Canceled) {
		return ""
	}
	return err.Error()
}

// CurrentUser returns the signed-in account.
func (s *Service) CurrentUser() (domain.Account, bool) {
	return s.auth.CurrentUser()
}

// SignUp creates an account and its directory record. A taken username
// fails before anything is written. Later failures are returned as-is; the
// steps already done are kept.
func (s *Service) SignUp(ctx context.Context, displayName, username, email, password string) (domain.User, error) {
	if err := s.checkUsername(ctx, username); err != nil {
		return domain.User{}, err
	}
	acct, err := s.auth.CreateAccount(ctx, email, password)
	if err != nil {
		return domain.User{}, err
	}
	return s.createProfile(ctx, acct, displayName, username)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (domain.Account, error) {
	return s.auth.SignIn(ctx, email, password)
}

// ForgotPassword requests a reset and returns the confirmation to show.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := s.auth.SendPasswordReset(ctx, email); err != nil {
		return "", err
	}
	return ResetSentMessage, nil
}

// ProviderSignIn signs in with a provider token. Accounts without a
// directory record still need a profile.
func (s *Service) ProviderSignIn(ctx context.Context, provider, token string) (Destination, error) {
	acct, err := s.auth.SignInWithProvider(ctx, provider, token)
	if err != nil {
		return ToMain, err
	}
	_, err = s.dir.Get(ctx, acct.ID)
	switch {
	case errors.Is(err, directory.ErrNotFound):
		return ToProfileSetup, nil
	case err != nil:
		return ToMain, err
	}
	return ToMain, nil
}

// CompleteProfile creates the directory record for the signed-in account.
func (s *Service) CompleteProfile(ctx context.Context, displayName, username string) (domain.User, error) {
	acct, ok := s.auth.CurrentUser()
	if !ok {
		return domain.User{}, auth.ErrNotSignedIn
	}
	if err := s.checkUsername(ctx, username); err != nil {
		return domain.User{}, err
	}
	return s.createProfile(ctx, acct, displayName, username)
}

// CancelProfileSetup removes the account that has no profile yet.
func (s *Service) CancelProfileSetup(ctx context.Context) error {
	return s.auth.DeleteCurrentUser(ctx)
}

// DeleteAccount removes the directory record, the profile image and the
// account of the signed-in user.
func (s *Service) DeleteAccount(ctx context.Context) error {
	acct, ok := s.auth.CurrentUser()
	if !ok {
		return auth.ErrNotSignedIn
	}
	if err := s.dir.Delete(ctx, acct.ID); err != nil && !errors.Is(err, directory.ErrNotFound) {
		return err
	}
	if err := s.avatars.Forget(ctx, acct.ID); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.logger.Warn("failed to delete profile image", zap.String("user", acct.ID), zap.Error(err))
	}
	return s.auth.DeleteCurrentUser(ctx)
}

func (s *Service) SignOut() error {
	return s.auth.SignOut()
}

// LoadProfile returns the signed-in user's record and picture.
func (s *Service) LoadProfile(ctx context.Context) (Profile, error) {
	acct, ok := s.auth.CurrentUser()
	if !ok {
		return Profile{}, auth.ErrNotSignedIn
	}
	user, err := s.dir.Get(ctx, acct.ID)
	if err != nil {
		return Profile{}, err
	}
	return s.LoadUser(ctx, user)
}

// LoadUser fetches the picture of a directory record. A missing picture is
// logged and left empty; cancellation is returned.
func (s *Service) LoadUser(ctx context.Context, user domain.User) (Profile, error) {
	img, err := s.avatars.Get(ctx, user.ID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Profile{}, ctxErr
		}
		s.logger.Warn("profile image unavailable", zap.String("user", user.ID), zap.Error(err))
	}
	return Profile{User: user, Image: img}, nil
}

func (s *Service) checkUsername(ctx context.Context, username string) error {
	taken, err := s.dir.Exists(ctx, directory.FieldUsername, username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return directory.ErrUsernameTaken
	}
	return nil
}

func (s *Service) createProfile(ctx context.Context, acct domain.Account, displayName, username string) (domain.User, error) {
	img, err := avatar.Render(Initial(displayName))
	if err != nil {
		return domain.User{}, err
	}
	url, err := s.avatars.Put(ctx, acct.ID, img)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:          acct.ID,
		PhotoURL:    url,
		DisplayName: displayName,
		Username:    username,
		Email:       acct.Email,
		Keywords:    directory.Keywords(displayName, username),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.dir.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("profile created", zap.String("user", user.ID), zap.String("username", username))
	return user, nil
}

// Initial returns the upper-cased first character of name.
func Initial(name string) string {
	first, _, _, _ := uniseg.FirstGraphemeClusterInString(strings.TrimSpace(name), -1)
	return strings.ToUpper(first)
}
